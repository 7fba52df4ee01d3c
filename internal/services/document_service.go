package services

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/SAP-F-2025/study-service/internal/models"
)

// DefaultDocuments is the library a fresh service starts with.
func DefaultDocuments() []models.StudyDocument {
	doc := func(id, title, subject, fileType, size string) models.StudyDocument {
		return models.StudyDocument{
			ID:         id,
			UserID:     "u1",
			Title:      title,
			Subject:    subject,
			FileType:   fileType,
			UploadDate: "12.07.2019",
			Status:     models.DocumentStatusReady,
			Size:       size,
		}
	}
	return []models.StudyDocument{
		doc("1", "Shopping_list", "Psychology", "doc", "1 MB"),
		doc("2", "Design_brief", "Mathematics", "doc", "150 KB"),
		doc("3", "Prices", "Business", "xls", "1 MB"),
		doc("4", "01_project_description", "Engineering", "pdf", "150 MB"),
		doc("5", "02_project_description", "Engineering", "pdf", "150 MB"),
	}
}

type documentService struct {
	mu        sync.Mutex
	documents []models.StudyDocument
	selected  []string
	pending   *models.StudyDocument
	logger    *slog.Logger
}

func NewDocumentService(documents []models.StudyDocument, selected []string, logger *slog.Logger) DocumentService {
	return &documentService{
		documents: append([]models.StudyDocument(nil), documents...),
		selected:  append([]string(nil), selected...),
		logger:    logger.With("component", "documents"),
	}
}

// List returns documents whose title or subject contains the search term.
func (s *documentService) List(ctx context.Context, filter DocumentFilter) ([]DocumentView, error) {
	term := strings.ToLower(strings.TrimSpace(filter.Search))

	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]DocumentView, 0, len(s.documents))
	for _, doc := range s.documents {
		if term != "" &&
			!strings.Contains(strings.ToLower(doc.Title), term) &&
			!strings.Contains(strings.ToLower(doc.Subject), term) {
			continue
		}
		views = append(views, DocumentView{
			StudyDocument: doc,
			Category:      doc.Category(),
			Selected:      slices.Contains(s.selected, doc.ID),
		})
	}
	return views, nil
}

func (s *documentService) ToggleSelect(ctx context.Context, documentID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(documentID) < 0 {
		return nil, ErrDocumentNotFound
	}

	if i := slices.Index(s.selected, documentID); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
	} else {
		s.selected = append(s.selected, documentID)
	}
	return append([]string(nil), s.selected...), nil
}

func (s *documentService) Selected(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.selected...)
}

// RequestDelete stages a document for removal. A later request replaces the
// staged one.
func (s *documentService) RequestDelete(ctx context.Context, documentID string) (*models.StudyDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(documentID)
	if i < 0 {
		return nil, ErrDocumentNotFound
	}
	doc := s.documents[i]
	s.pending = &doc
	return &doc, nil
}

func (s *documentService) ConfirmDelete(ctx context.Context) (*models.StudyDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return nil, ErrNoPendingDeletion
	}
	doc := *s.pending
	s.pending = nil

	if i := s.indexOf(doc.ID); i >= 0 {
		s.documents = slices.Delete(s.documents, i, i+1)
	}
	if i := slices.Index(s.selected, doc.ID); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
	}

	s.logger.InfoContext(ctx, "Document deleted", "document_id", doc.ID, "title", doc.Title)
	return &doc, nil
}

func (s *documentService) CancelDelete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return ErrNoPendingDeletion
	}
	s.pending = nil
	return nil
}

func (s *documentService) indexOf(id string) int {
	return slices.IndexFunc(s.documents, func(d models.StudyDocument) bool { return d.ID == id })
}
