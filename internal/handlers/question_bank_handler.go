package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/study-service/internal/repositories"
	"github.com/SAP-F-2025/study-service/internal/services"
	"github.com/SAP-F-2025/study-service/internal/utils"
)

type QuestionBankHandler struct {
	BaseHandler
	questionBankService services.QuestionBankService
	importExport        services.ImportExportService
}

func NewQuestionBankHandler(questionBankService services.QuestionBankService, importExport services.ImportExportService, logger utils.Logger) *QuestionBankHandler {
	return &QuestionBankHandler{
		BaseHandler:         NewBaseHandler(logger),
		questionBankService: questionBankService,
		importExport:        importExport,
	}
}

// ListQuestionBanks lists banks a test can be started from
// @Summary List question banks
// @Tags question-banks
// @Produce json
// @Param subject query string false "Subject"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} SuccessResponse{data=[]repositories.QuestionBankSummary}
// @Router /question-banks [get]
func (h *QuestionBankHandler) ListQuestionBanks(c *gin.Context) {
	filters := repositories.QuestionBankFilters{
		Subject: c.Query("subject"),
	}
	if !h.parseOptionalInt(c, "limit", c.Query("limit"), &filters.Limit) ||
		!h.parseOptionalInt(c, "offset", c.Query("offset"), &filters.Offset) {
		return
	}

	banks, err := h.questionBankService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Question banks retrieved", banks)
}

func (h *QuestionBankHandler) GetQuestionBank(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	bank, err := h.questionBankService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bank)
}

// ImportQuestionBank creates or replaces a bank from an uploaded .csv or .xlsx
// @Summary Import question bank
// @Tags question-banks
// @Accept multipart/form-data
// @Produce json
// @Param id formData string true "Bank ID"
// @Param title formData string true "Title"
// @Param subject formData string false "Subject"
// @Param duration formData int false "Time limit in seconds"
// @Param file formData file true "Spreadsheet"
// @Success 201 {object} SuccessResponse{data=services.ImportResult}
// @Failure 400 {object} ErrorResponse
// @Router /question-banks/import [post]
func (h *QuestionBankHandler) ImportQuestionBank(c *gin.Context) {
	req := services.ImportBankRequest{
		ID:      c.PostForm("id"),
		Title:   c.PostForm("title"),
		Subject: c.PostForm("subject"),
	}
	if !h.parseOptionalInt(c, "duration", c.PostForm("duration"), &req.Duration) {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "File is required", nil, err.Error())
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Could not read uploaded file", err)
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing question bank", "bank_id", req.ID, "filename", fileHeader.Filename)

	result, err := h.importExport.ImportQuestionBank(c.Request.Context(), &req, fileHeader.Filename, file)
	if err != nil {
		if errors.Is(err, services.ErrImportFailed) && result != nil {
			h.RespondWithError(c, http.StatusBadRequest, "No questions could be imported", err, result)
			return
		}
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Question bank imported", result)
}
