package services

import (
	"log/slog"

	"github.com/SAP-F-2025/study-service/internal/cache"
	"github.com/SAP-F-2025/study-service/internal/events"
	"github.com/SAP-F-2025/study-service/internal/metrics"
	"github.com/SAP-F-2025/study-service/internal/repositories"
	"github.com/SAP-F-2025/study-service/internal/validator"
)

// ServiceManager gives handlers access to every service
type ServiceManager interface {
	Attempt() AttemptService
	QuestionBank() QuestionBankService
	ImportExport() ImportExportService
	Chat() ChatService
	Document() DocumentService
}

// Dependencies are the infrastructure pieces services are built from
type Dependencies struct {
	Banks     repositories.QuestionBankRepository
	Results   cache.ResultsStore
	Publisher events.EventPublisher
	Metrics   *metrics.Metrics
	Validator *validator.Validator
	Logger    *slog.Logger
	Attempts  AttemptConfig
	Responder Responder
}

type serviceManager struct {
	attempt      AttemptService
	questionBank QuestionBankService
	importExport ImportExportService
	chat         ChatService
	document     DocumentService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	attempt := NewAttemptService(deps.Banks, deps.Results, deps.Publisher, deps.Metrics, deps.Validator, deps.Logger, deps.Attempts)

	return &serviceManager{
		attempt:      attempt,
		questionBank: NewQuestionBankService(deps.Banks, deps.Logger),
		importExport: NewImportExportService(deps.Banks, attempt, deps.Logger, deps.Validator),
		chat:         NewChatService(deps.Responder, deps.Metrics, deps.Logger),
		document:     NewDocumentService(DefaultDocuments(), []string{"1", "2", "3"}, deps.Logger),
	}
}

func (m *serviceManager) Attempt() AttemptService           { return m.attempt }
func (m *serviceManager) QuestionBank() QuestionBankService { return m.questionBank }
func (m *serviceManager) ImportExport() ImportExportService { return m.importExport }
func (m *serviceManager) Chat() ChatService                 { return m.chat }
func (m *serviceManager) Document() DocumentService         { return m.document }
