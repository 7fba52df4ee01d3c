package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/study-service/internal/services"
	"github.com/SAP-F-2025/study-service/internal/utils"
)

type SendMessageRequest struct {
	Text string `json:"text"`
}

type SetActiveDocumentRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
}

type ChatHandler struct {
	BaseHandler
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService, logger utils.Logger) *ChatHandler {
	return &ChatHandler{
		BaseHandler: NewBaseHandler(logger),
		chatService: chatService,
	}
}

func (h *ChatHandler) GetTranscript(c *gin.Context) {
	id := ParseStringIDParam(c, "conversation_id")
	if id == "" {
		return
	}

	messages, err := h.chatService.Transcript(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// SendMessage appends a user message and the assistant reply
func (h *ChatHandler) SendMessage(c *gin.Context) {
	id := ParseStringIDParam(c, "conversation_id")
	if id == "" {
		return
	}

	var req SendMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	messages, err := h.chatService.Send(c.Request.Context(), id, req.Text)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *ChatHandler) GetContextDocuments(c *gin.Context) {
	id := ParseStringIDParam(c, "conversation_id")
	if id == "" {
		return
	}

	docs, err := h.chatService.ContextDocuments(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, docs)
}

func (h *ChatHandler) SetActiveDocument(c *gin.Context) {
	id := ParseStringIDParam(c, "conversation_id")
	if id == "" {
		return
	}

	var req SetActiveDocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	docs, err := h.chatService.SetActiveDocument(c.Request.Context(), id, req.DocumentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, docs)
}
