package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/study-service/internal/cache"
	"github.com/SAP-F-2025/study-service/internal/events"
	"github.com/SAP-F-2025/study-service/internal/metrics"
	"github.com/SAP-F-2025/study-service/internal/models"
	"github.com/SAP-F-2025/study-service/internal/repositories/memory"
	"github.com/SAP-F-2025/study-service/internal/services"
	"github.com/SAP-F-2025/study-service/internal/utils"
	"github.com/SAP-F-2025/study-service/internal/validator"
)

func setupRouter(t *testing.T) (*gin.Engine, services.ServiceManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger := utils.NewSlogLogger(slogger)
	m := metrics.New()

	manager := services.NewServiceManager(services.Dependencies{
		Banks:     memory.NewQuestionBankMemory(memory.DefaultQuestionBank()),
		Results:   cache.NewMemoryResultsStore(0),
		Publisher: events.NewMockEventPublisher(slogger),
		Metrics:   m,
		Validator: validator.New(),
		Logger:    slogger,
		Attempts:  services.AttemptConfig{DefaultDuration: 1200, TimeWarning: 300},
	})

	router := gin.New()
	router.Use(utils.ContextLogger(logger), m.MetricsMiddleware())
	NewHandlerManager(manager, m, logger).SetupRoutes(router)
	return router, manager
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(utils.RequestIDHeader))
	health := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, float64(0), health["active_attempts"])

	w = doJSON(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestAttemptFlow(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/attempts", map[string]any{"bank_id": memory.DefaultBankID})
	require.Equal(t, http.StatusCreated, w.Code)
	view := decode[services.AttemptView](t, w)
	assert.Equal(t, "Question 1 of 4", view.Progress)
	assert.Equal(t, "20:00", view.TimeLabel)
	require.NotNil(t, view.Question)
	id := view.AttemptID

	w = doJSON(t, router, http.MethodPut, "/api/v1/attempts/"+id+"/answer", map[string]any{"answer": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[services.AttemptView](t, w).AnsweredCount)

	w = doJSON(t, router, http.MethodPost, "/api/v1/attempts/"+id+"/previous", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[services.AttemptView](t, w).CurrentIndex)

	for i := 0; i < 3; i++ {
		w = doJSON(t, router, http.MethodPost, "/api/v1/attempts/"+id+"/next", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	view = decode[services.AttemptView](t, w)
	assert.True(t, view.IsLast)
	assert.Equal(t, "Submit Test", view.NextLabel)

	w = doJSON(t, router, http.MethodGet, "/api/v1/results/"+id, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/attempts/"+id+"/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/attempts/"+id+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[services.AttemptView](t, w)
	assert.Equal(t, models.AttemptStatusSubmitted, view.Status)
	assert.Equal(t, models.AttemptEndReasonCompleted, view.EndReason)

	w = doJSON(t, router, http.MethodPut, "/api/v1/attempts/"+id+"/answer", map[string]any{"answer": 0})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/attempts/"+id+"/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snapshot := decode[services.AttemptSnapshot](t, w)
	assert.Equal(t, models.AttemptStatusSubmitted, snapshot.Status)
	assert.Equal(t, 3, snapshot.CurrentIndex)
	assert.Len(t, snapshot.Answers, 1)

	w = doJSON(t, router, http.MethodGet, "/api/v1/results/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	results := decode[models.AttemptResults](t, w)
	assert.Equal(t, 1, results.AnsweredCount)
	assert.Len(t, results.Questions, 4)

	w = doJSON(t, router, http.MethodGet, "/api/v1/results/"+id+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "results-"+id+".xlsx")
	book, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer book.Close()

	w = doJSON(t, router, http.MethodPost, "/api/v1/results/"+id+"/retake", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	retake := decode[services.AttemptView](t, w)
	assert.NotEqual(t, id, retake.AttemptID)
	assert.Equal(t, 0, retake.AnsweredCount)
}

func TestAttemptErrors(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"missing bank id", http.MethodPost, "/api/v1/attempts", map[string]any{}, http.StatusBadRequest},
		{"unknown bank", http.MethodPost, "/api/v1/attempts", map[string]any{"bank_id": "nope"}, http.StatusNotFound},
		{"negative duration", http.MethodPost, "/api/v1/attempts", map[string]any{"bank_id": memory.DefaultBankID, "duration_seconds": -5}, http.StatusBadRequest},
		{"unknown attempt", http.MethodGet, "/api/v1/attempts/missing", nil, http.StatusNotFound},
		{"malformed body", http.MethodPut, "/api/v1/attempts/missing/answer", "not an object", http.StatusBadRequest},
		{"missing answer", http.MethodPut, "/api/v1/attempts/missing/answer", map[string]any{}, http.StatusBadRequest},
		{"null answer", http.MethodPut, "/api/v1/attempts/missing/answer", map[string]any{"answer": nil}, http.StatusBadRequest},
		{"unknown results", http.MethodGet, "/api/v1/results/missing", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, decode[ErrorResponse](t, w).Message)
		})
	}
}

func TestQuestionBankRoutes(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/question-banks?subject=Psychology", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[SuccessResponse](t, w)
	assert.Len(t, list.Data, 1)

	w = doJSON(t, router, http.MethodGet, "/api/v1/question-banks?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/question-banks/"+memory.DefaultBankID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	bank := decode[models.QuestionBank](t, w)
	assert.Len(t, bank.Questions, 4)

	w = doJSON(t, router, http.MethodGet, "/api/v1/question-banks/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func uploadBank(t *testing.T, router *gin.Engine, fields map[string]string, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.Copy(part, strings.NewReader(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/question-banks/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportQuestionBank(t *testing.T) {
	router, _ := setupRouter(t)
	fields := map[string]string{"id": "arith", "title": "Arithmetic", "duration": "300"}

	csv := "question_type,question_text,option_a,option_b,correct_answer\nmultiple_choice,1 + 1 = ?,1,2,B\n"
	w := uploadBank(t, router, fields, "arith.csv", csv)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/attempts", map[string]any{"bank_id": "arith"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "5:00", decode[services.AttemptView](t, w).TimeLabel)

	w = uploadBank(t, router, fields, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadBank(t, router, map[string]string{"id": "x", "title": "X", "duration": "soon"}, "x.csv", csv)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadBank(t, router, fields, "bad.csv", "question_type,question_text\nmatching,Pair these\n")
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[ErrorResponse](t, w)
	details, ok := resp.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(0), details["imported_count"])
}

func TestChatRoutes(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/chat/c1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.ChatMessage](t, w), 1)

	w = doJSON(t, router, http.MethodPost, "/api/v1/chat/c1/messages", SendMessageRequest{Text: "What is encoding?"})
	require.Equal(t, http.StatusOK, w.Code)
	messages := decode[[]models.ChatMessage](t, w)
	require.Len(t, messages, 3)
	assert.Equal(t, models.SenderUser, messages[1].Sender)
	assert.Equal(t, models.SenderAssistant, messages[2].Sender)

	w = doJSON(t, router, http.MethodPost, "/api/v1/chat/c1/messages", SendMessageRequest{Text: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/v1/chat/c1/documents/active", SetActiveDocumentRequest{DocumentID: "2"})
	require.Equal(t, http.StatusOK, w.Code)
	for _, doc := range decode[[]models.ChatDocument](t, w) {
		assert.Equal(t, doc.ID == "2", doc.Active)
	}

	w = doJSON(t, router, http.MethodPut, "/api/v1/chat/c1/documents/active", SetActiveDocumentRequest{DocumentID: "99"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/chat/c2/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	docs := decode[[]models.ChatDocument](t, w)
	assert.True(t, docs[0].Active)
}

func TestDocumentRoutes(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/documents?search=project", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]services.DocumentView](t, w), 2)

	w = doJSON(t, router, http.MethodPost, "/api/v1/documents/4/select", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"1", "2", "3", "4"}, decode[map[string]any](t, w)["selected"])

	w = doJSON(t, router, http.MethodPost, "/api/v1/documents/delete/confirm", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/documents/1/delete", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/documents/delete/cancel", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/documents/1/delete", nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/v1/documents/delete/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/documents/selected", nil)
	assert.Equal(t, []any{"2", "3", "4"}, decode[map[string]any](t, w)["selected"])

	w = doJSON(t, router, http.MethodGet, "/api/v1/documents", nil)
	assert.Len(t, decode[[]services.DocumentView](t, w), 4)

	w = doJSON(t, router, http.MethodPost, "/api/v1/documents/99/select", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
