package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/study-service/internal/metrics"
	"github.com/SAP-F-2025/study-service/internal/services"
	"github.com/SAP-F-2025/study-service/internal/utils"
)

type HandlerManager struct {
	attemptHandler      *AttemptHandler
	questionBankHandler *QuestionBankHandler
	chatHandler         *ChatHandler
	documentHandler     *DocumentHandler

	attempts services.AttemptService
	metrics  *metrics.Metrics
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	m *metrics.Metrics,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		attemptHandler:      NewAttemptHandler(serviceManager.Attempt(), serviceManager.ImportExport(), logger),
		questionBankHandler: NewQuestionBankHandler(serviceManager.QuestionBank(), serviceManager.ImportExport(), logger),
		chatHandler:         NewChatHandler(serviceManager.Chat(), logger),
		documentHandler:     NewDocumentHandler(serviceManager.Document(), logger),
		attempts:            serviceManager.Attempt(),
		metrics:             m,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)
	if hm.metrics != nil {
		router.GET("/metrics", hm.metrics.PrometheusHandler())
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Question Bank routes
		questionBanks := v1.Group("/question-banks")
		{
			questionBanks.GET("", hm.questionBankHandler.ListQuestionBanks)
			questionBanks.POST("/import", hm.questionBankHandler.ImportQuestionBank)
			questionBanks.GET("/:id", hm.questionBankHandler.GetQuestionBank)
		}

		// Attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.POST("", hm.attemptHandler.StartAttempt)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.PUT("/:id/answer", hm.attemptHandler.RecordAnswer)
			attempts.POST("/:id/next", hm.attemptHandler.NextQuestion)
			attempts.POST("/:id/previous", hm.attemptHandler.PreviousQuestion)
			attempts.GET("/:id/snapshot", hm.attemptHandler.GetSnapshot)
		}

		// Results routes
		results := v1.Group("/results")
		{
			results.GET("/:id", hm.attemptHandler.GetResults)
			results.GET("/:id/export", hm.attemptHandler.ExportResults)
			results.POST("/:id/retake", hm.attemptHandler.RetakeAttempt)
		}

		// Chat routes
		chat := v1.Group("/chat/:conversation_id")
		{
			chat.GET("", hm.chatHandler.GetTranscript)
			chat.POST("/messages", hm.chatHandler.SendMessage)
			chat.GET("/documents", hm.chatHandler.GetContextDocuments)
			chat.PUT("/documents/active", hm.chatHandler.SetActiveDocument)
		}

		// Document library routes
		documents := v1.Group("/documents")
		{
			documents.GET("", hm.documentHandler.ListDocuments)
			documents.GET("/selected", hm.documentHandler.GetSelected)
			documents.POST("/delete/confirm", hm.documentHandler.ConfirmDelete)
			documents.POST("/delete/cancel", hm.documentHandler.CancelDelete)
			documents.POST("/:id/select", hm.documentHandler.ToggleSelect)
			documents.POST("/:id/delete", hm.documentHandler.RequestDelete)
		}
	}
}

func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"service":         "study-service",
		"active_attempts": hm.attempts.ActiveCount(),
	})
}
