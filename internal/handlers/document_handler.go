package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/study-service/internal/services"
	"github.com/SAP-F-2025/study-service/internal/utils"
)

type DocumentHandler struct {
	BaseHandler
	documentService services.DocumentService
}

func NewDocumentHandler(documentService services.DocumentService, logger utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     NewBaseHandler(logger),
		documentService: documentService,
	}
}

// ListDocuments lists the library, optionally filtered by ?search=
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	var filter services.DocumentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query", nil, err.Error())
		return
	}

	docs, err := h.documentService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, docs)
}

func (h *DocumentHandler) GetSelected(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"selected": h.documentService.Selected(c.Request.Context())})
}

func (h *DocumentHandler) ToggleSelect(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	selected, err := h.documentService.ToggleSelect(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"selected": selected})
}

// RequestDelete stages a document; nothing is removed until confirmed
func (h *DocumentHandler) RequestDelete(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	doc, err := h.documentService.RequestDelete(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusAccepted, "Deletion pending confirmation", doc)
}

func (h *DocumentHandler) ConfirmDelete(c *gin.Context) {
	doc, err := h.documentService.ConfirmDelete(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Document deleted", "document_id", doc.ID)
	h.RespondWithSuccess(c, http.StatusOK, "Document deleted", doc)
}

func (h *DocumentHandler) CancelDelete(c *gin.Context) {
	if err := h.documentService.CancelDelete(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
