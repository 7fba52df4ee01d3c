package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/study-service/internal/models"
	"github.com/SAP-F-2025/study-service/internal/repositories"
	"github.com/SAP-F-2025/study-service/internal/session"
	"github.com/SAP-F-2025/study-service/internal/validator"
)

const (
	defaultImportPoints = 1
	maxImportOptions    = 6
)

type importExportService struct {
	banks     repositories.QuestionBankRepository
	attempts  AttemptService
	logger    *ServiceLogger
	validator *validator.Validator
}

func NewImportExportService(banks repositories.QuestionBankRepository, attempts AttemptService, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		banks:     banks,
		attempts:  attempts,
		logger:    NewServiceLogger(logger, LogConfig{Service: "study", Component: "import_export"}),
		validator: validator,
	}
}

// ===== IMPORT =====

// ImportQuestionBank reads one question per row from a .csv or .xlsx file.
// Rows that fail to parse are reported and skipped; the remaining questions
// replace the bank with the requested ID.
func (s *importExportService) ImportQuestionBank(ctx context.Context, req *ImportBankRequest, filename string, reader io.Reader) (*ImportResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var rows [][]string
	var err error
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		rows, err = readCSVRows(reader)
	case ".xlsx":
		rows, err = readExcelRows(reader)
	default:
		return nil, ValidationErrors{*NewValidationError("file", "unsupported file format", ext)}
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, ValidationErrors{*NewValidationError("file", "must have a header row and at least one data row", len(rows))}
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range []string{"question_type", "question_text"} {
		if _, ok := headerMap[col]; !ok {
			return nil, ValidationErrors{*NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)}
		}
	}

	result := &ImportResult{BankID: req.ID}
	bank := &models.QuestionBank{
		ID:       req.ID,
		Title:    req.Title,
		Subject:  req.Subject,
		Duration: req.Duration,
	}

	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		result.TotalRows++

		rowNum := i + 2
		question, rowErrors := s.parseRow(row, headerMap, rowNum)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			continue
		}
		bank.Questions = append(bank.Questions, *question)
	}

	if len(bank.Questions) == 0 {
		s.logger.Logger().WarnContext(ctx, "Import produced no questions", "bank_id", req.ID, "row_errors", len(result.Errors))
		return result, fmt.Errorf("%w: no valid rows", ErrImportFailed)
	}

	if err := s.validator.ValidateBank(bank); err != nil {
		var errs ValidationErrors
		if errors.As(err, &errs) {
			s.logger.LogValidationError(ctx, "import_question_bank", errs)
		}
		return result, err
	}

	if err := s.banks.SaveBank(ctx, bank); err != nil {
		return nil, fmt.Errorf("failed to save question bank: %w", err)
	}
	result.ImportedCount = len(bank.Questions)

	s.logger.Logger().InfoContext(ctx, "Question bank imported",
		"bank_id", bank.ID,
		"total_rows", result.TotalRows,
		"imported", result.ImportedCount,
		"row_errors", len(result.Errors))

	return result, nil
}

func readCSVRows(reader io.Reader) ([][]string, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, ValidationErrors{*NewValidationError("file", fmt.Sprintf("invalid CSV: %v", err), nil)}
	}
	return rows, nil
}

func readExcelRows(reader io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, ValidationErrors{*NewValidationError("file", fmt.Sprintf("invalid Excel file: %v", err), nil)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ValidationErrors{*NewValidationError("file", "Excel file has no sheets", nil)}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	return rows, nil
}

func (s *importExportService) parseRow(record []string, headerMap map[string]int, rowNum int) (*models.Question, []ImportRowError) {
	getColumn := func(name string) string {
		if index, exists := headerMap[name]; exists && index < len(record) {
			return strings.TrimSpace(record[index])
		}
		return ""
	}
	rowError := func(field, message string) []ImportRowError {
		return []ImportRowError{{Row: rowNum, Field: field, Message: message}}
	}

	questionType := models.QuestionType(strings.ToLower(getColumn("question_type")))
	if !questionType.IsValid() {
		return nil, rowError("question_type", fmt.Sprintf("unknown question type %q", getColumn("question_type")))
	}

	question := &models.Question{
		ID:          getColumn("question_id"),
		Type:        questionType,
		Text:        getColumn("question_text"),
		Points:      defaultImportPoints,
		Explanation: getColumn("explanation"),
	}
	if question.ID == "" {
		question.ID = strconv.Itoa(rowNum - 1)
	}

	if raw := getColumn("points"); raw != "" {
		points, err := strconv.Atoi(raw)
		if err != nil || points <= 0 {
			return nil, rowError("points", "must be a positive whole number")
		}
		question.Points = points
	}

	// Options keep their column letter, so a blank column may only trail.
	blank := ""
	for i := 0; i < maxImportOptions; i++ {
		column := fmt.Sprintf("option_%c", 'a'+i)
		option := getColumn(column)
		if option == "" {
			if blank == "" {
				blank = column
			}
			continue
		}
		if blank != "" {
			return nil, rowError("options", fmt.Sprintf("%s is blank but %s is set", blank, column))
		}
		question.Options = append(question.Options, option)
	}

	answer, err := parseCorrectAnswer(question, getColumn("correct_answer"))
	if err != nil {
		return nil, rowError("correct_answer", err.Error())
	}
	question.CorrectAnswer = answer

	if errs := s.validator.Question().ValidateQuestion(question); len(errs) > 0 {
		rowErrors := make([]ImportRowError, 0, len(errs))
		for _, e := range errs {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: e.Field, Message: e.Message})
		}
		return nil, rowErrors
	}
	return question, nil
}

// parseCorrectAnswer turns the spreadsheet cell into the reference answer shape
// of the question type: an option index, a bool or text.
func parseCorrectAnswer(question *models.Question, raw string) (any, error) {
	switch question.Type {
	case models.MultipleChoice:
		if raw == "" {
			return nil, fmt.Errorf("required for %s", question.Type)
		}
		if len(raw) == 1 {
			letter := strings.ToUpper(raw)[0]
			if letter >= 'A' && int(letter-'A') < len(question.Options) {
				return int(letter - 'A'), nil
			}
		}
		for i, option := range question.Options {
			if strings.EqualFold(option, raw) {
				return i, nil
			}
		}
		return nil, fmt.Errorf("%q does not name an option", raw)
	case models.TrueFalse:
		switch strings.ToLower(raw) {
		case "true", "t", "yes", "y":
			return true, nil
		case "false", "f", "no", "n":
			return false, nil
		}
		return nil, fmt.Errorf("%q is not true or false", raw)
	case models.ShortAnswer:
		if raw == "" {
			return nil, fmt.Errorf("required for %s", question.Type)
		}
		return raw, nil
	default:
		if raw == "" {
			return nil, nil
		}
		return raw, nil
	}
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ===== EXPORT =====

// ExportResults writes a submitted attempt's review sheet as .xlsx.
func (s *importExportService) ExportResults(ctx context.Context, attemptID string, writer io.Writer) error {
	results, err := s.attempts.GetResults(ctx, attemptID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Results"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	summary := [][]any{
		{"Test", results.BankTitle},
		{"Attempt", results.AttemptID},
		{"Status", string(results.EndReason)},
		{"Answered", fmt.Sprintf("%d of %d", results.AnsweredCount, results.QuestionCount)},
		{"Total Points", results.TotalPoints},
		{"Time Remaining", session.FormatTime(results.TimeRemaining)},
	}
	for i, row := range summary {
		if err := setRow(f, sheetName, 1, i+1, row); err != nil {
			return err
		}
	}

	headerRow := len(summary) + 2
	headers := []any{"#", "Type", "Question", "Your Answer", "Reference Answer", "Points", "Explanation"}
	if err := setRow(f, sheetName, 1, headerRow, headers); err != nil {
		return err
	}

	for i, q := range results.Questions {
		row := []any{
			q.Position + 1,
			q.Type.DisplayName(),
			q.Text,
			formatAnswer(q, q.Answer, q.Answered),
			formatAnswer(q, q.ReferenceAnswer, q.ReferenceAnswer != nil),
			q.Points,
			q.Explanation,
		}
		if err := setRow(f, sheetName, 1, headerRow+1+i, row); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	if _, err := buf.WriteTo(writer); err != nil {
		return fmt.Errorf("failed to send Excel file: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, col, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// formatAnswer renders an answer for people: option letters with their text,
// True/False, or the raw text.
func formatAnswer(q models.QuestionResult, value any, present bool) string {
	if !present || value == nil {
		return ""
	}
	switch q.Type {
	case models.MultipleChoice:
		if idx, ok := validator.OptionIndex(value); ok && idx >= 0 && idx < len(q.Options) {
			return fmt.Sprintf("%c. %s", 'A'+idx, q.Options[idx])
		}
	case models.TrueFalse:
		if b, ok := value.(bool); ok {
			if b {
				return "True"
			}
			return "False"
		}
	}
	return fmt.Sprint(value)
}
