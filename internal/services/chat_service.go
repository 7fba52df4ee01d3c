package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/study-service/internal/metrics"
	"github.com/SAP-F-2025/study-service/internal/models"
)

const chatGreeting = "Hello! I've analyzed your recent documents. I can help clarify anything from your Psychology or Calculus notes. What's on your mind?"

// Responder produces the assistant's reply to a user message.
type Responder interface {
	Reply(ctx context.Context, transcript []models.ChatMessage, active *models.ChatDocument) (string, error)
}

// CannedResponder answers every message with a fixed line citing the active document.
type CannedResponder struct{}

func (CannedResponder) Reply(ctx context.Context, transcript []models.ChatMessage, active *models.ChatDocument) (string, error) {
	if active == nil {
		return "I don't have a document in context yet. Pick one from your library and ask again.", nil
	}
	title := strings.TrimSuffix(active.Title, fileExtension(active.Title))
	return fmt.Sprintf("Based on '%s', here is what your notes say about that. Would you like an example?", title), nil
}

func fileExtension(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[i:]
	}
	return ""
}

// DefaultChatDocuments is the sidebar a new conversation starts with.
func DefaultChatDocuments() []models.ChatDocument {
	return []models.ChatDocument{
		{ID: "1", Title: "Introduction to Psychology.pdf", Type: "PDF", Active: true},
		{ID: "2", Title: "Advanced Calculus Notes.docx", Type: "DOCX", Active: false},
		{ID: "3", Title: "Marketing 101 Slides.ppt", Type: "PPT", Active: false},
		{ID: "4", Title: "Organic Chemistry Lab.pdf", Type: "PDF", Active: false},
	}
}

type conversation struct {
	mu        sync.Mutex
	messages  []models.ChatMessage
	documents []models.ChatDocument
}

type chatService struct {
	mu            sync.Mutex
	conversations map[string]*conversation

	responder Responder
	documents func() []models.ChatDocument
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewChatService(responder Responder, m *metrics.Metrics, logger *slog.Logger) ChatService {
	if responder == nil {
		responder = CannedResponder{}
	}
	return &chatService{
		conversations: make(map[string]*conversation),
		responder:     responder,
		documents:     DefaultChatDocuments,
		metrics:       m,
		logger:        logger.With("component", "chat"),
		now:           time.Now,
	}
}

func (s *chatService) Transcript(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	conv := s.conversation(conversationID)

	conv.mu.Lock()
	defer conv.mu.Unlock()
	return append([]models.ChatMessage(nil), conv.messages...), nil
}

// Send appends the user's message and the assistant's reply, in that order,
// and returns the whole transcript.
func (s *chatService) Send(ctx context.Context, conversationID, text string) ([]models.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	conv := s.conversation(conversationID)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	conv.messages = append(conv.messages, s.message(text, models.SenderUser))
	s.metrics.ChatMessages.Inc()

	reply, err := s.responder.Reply(ctx, append([]models.ChatMessage(nil), conv.messages...), activeDocument(conv.documents))
	if err != nil {
		s.logger.ErrorContext(ctx, "Assistant reply failed", "conversation_id", conversationID, "error", err)
		return nil, fmt.Errorf("failed to generate reply: %w", err)
	}
	conv.messages = append(conv.messages, s.message(reply, models.SenderAssistant))

	return append([]models.ChatMessage(nil), conv.messages...), nil
}

func (s *chatService) ContextDocuments(ctx context.Context, conversationID string) ([]models.ChatDocument, error) {
	conv := s.conversation(conversationID)

	conv.mu.Lock()
	defer conv.mu.Unlock()
	return append([]models.ChatDocument(nil), conv.documents...), nil
}

// SetActiveDocument makes documentID the only document in context.
func (s *chatService) SetActiveDocument(ctx context.Context, conversationID, documentID string) ([]models.ChatDocument, error) {
	conv := s.conversation(conversationID)

	conv.mu.Lock()
	defer conv.mu.Unlock()

	found := false
	for _, doc := range conv.documents {
		if doc.ID == documentID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrDocumentNotFound
	}

	for i := range conv.documents {
		conv.documents[i].Active = conv.documents[i].ID == documentID
	}
	return append([]models.ChatDocument(nil), conv.documents...), nil
}

// conversation returns the conversation, opening it with the greeting on first use.
func (s *chatService) conversation(id string) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		conv = &conversation{
			messages:  []models.ChatMessage{s.message(chatGreeting, models.SenderAssistant)},
			documents: s.documents(),
		}
		s.conversations[id] = conv
	}
	return conv
}

func (s *chatService) message(text string, sender models.MessageSender) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		CreatedAt: s.now(),
	}
}

func activeDocument(docs []models.ChatDocument) *models.ChatDocument {
	for i := range docs {
		if docs[i].Active {
			doc := docs[i]
			return &doc
		}
	}
	return nil
}
