package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/study-service/internal/models"
	"github.com/SAP-F-2025/study-service/internal/repositories/memory"
	"github.com/SAP-F-2025/study-service/internal/validator"
)

func newImportFixture(t *testing.T) (ImportExportService, *memory.QuestionBankMemory, *attemptFixture) {
	t.Helper()
	f := newAttemptFixture(t, defaultAttemptConfig())
	banks := f.service.banks.(*memory.QuestionBankMemory)
	svc := NewImportExportService(banks, f.service, testLogger(), validator.New())
	return svc, banks, f
}

func excelFile(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var importHeader = []any{"question_id", "question_type", "question_text", "option_a", "option_b", "option_c", "correct_answer", "points", "explanation"}

func TestImportQuestionBank_Excel(t *testing.T) {
	svc, banks, _ := newImportFixture(t)
	ctx := context.Background()

	file := excelFile(t, [][]any{
		importHeader,
		{"q1", "multiple_choice", "2 + 2 = ?", "3", "4", "5", "B", 5, "Basic arithmetic"},
		{"q2", "true_false", "The earth is round.", "", "", "", "yes", 2, ""},
		{"q3", "short_answer", "Capital of France?", "", "", "", "Paris", "", ""},
		{"q4", "essay", "Describe your study routine.", "", "", "", "", 10, ""},
		{"q5", "matching", "Match these", "", "", "", "", "", ""},
		{"q6", "multiple_choice", "Pick one", "a", "b", "", "Z", "", ""},
	})

	result, err := svc.ImportQuestionBank(ctx, &ImportBankRequest{ID: "general", Title: "General Knowledge", Duration: 600}, "bank.xlsx", file)
	require.NoError(t, err)

	assert.Equal(t, 6, result.TotalRows)
	assert.Equal(t, 4, result.ImportedCount)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 6, result.Errors[0].Row)
	assert.Equal(t, "question_type", result.Errors[0].Field)
	assert.Equal(t, 7, result.Errors[1].Row)
	assert.Equal(t, "correct_answer", result.Errors[1].Field)

	bank, err := banks.GetBank(ctx, "general")
	require.NoError(t, err)
	require.Len(t, bank.Questions, 4)
	assert.Equal(t, 1, bank.Questions[0].CorrectAnswer)
	assert.Equal(t, true, bank.Questions[1].CorrectAnswer)
	assert.Equal(t, 1, bank.Questions[2].Points)
	assert.Nil(t, bank.Questions[3].CorrectAnswer)
}

func TestImportQuestionBank_CSV(t *testing.T) {
	svc, banks, _ := newImportFixture(t)
	ctx := context.Background()

	csv := strings.Join([]string{
		"question_type,question_text,option_a,option_b,correct_answer",
		"multiple_choice,Which is larger?,one,two,two",
		"true_false,Water boils at 100C at sea level.,,,true",
	}, "\n")

	result, err := svc.ImportQuestionBank(ctx, &ImportBankRequest{ID: "csv-bank", Title: "CSV"}, "bank.CSV", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.ImportedCount)
	assert.Empty(t, result.Errors)

	bank, err := banks.GetBank(ctx, "csv-bank")
	require.NoError(t, err)
	assert.Equal(t, "1", bank.Questions[0].ID)
	assert.Equal(t, 1, bank.Questions[0].CorrectAnswer)
}

func TestImportQuestionBank_OptionGap(t *testing.T) {
	svc, banks, _ := newImportFixture(t)
	ctx := context.Background()

	csv := strings.Join([]string{
		"question_id,question_type,question_text,option_a,option_b,option_c,correct_answer",
		"gap,multiple_choice,Pick the third,first,,third,C",
		"trailing,multiple_choice,Pick the second,first,second,,B",
	}, "\n")

	result, err := svc.ImportQuestionBank(ctx, &ImportBankRequest{ID: "gaps", Title: "Gaps"}, "bank.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, "options", result.Errors[0].Field)
	assert.Contains(t, result.Errors[0].Message, "option_b")

	bank, err := banks.GetBank(ctx, "gaps")
	require.NoError(t, err)
	require.Len(t, bank.Questions, 1)
	assert.Equal(t, "trailing", bank.Questions[0].ID)
	assert.Equal(t, []string{"first", "second"}, bank.Questions[0].Options)
	assert.Equal(t, 1, bank.Questions[0].CorrectAnswer)
}

func TestImportQuestionBank_Rejects(t *testing.T) {
	svc, _, _ := newImportFixture(t)
	ctx := context.Background()
	req := &ImportBankRequest{ID: "bad", Title: "Bad"}

	_, err := svc.ImportQuestionBank(ctx, req, "bank.pdf", strings.NewReader(""))
	assert.True(t, IsValidation(err))

	_, err = svc.ImportQuestionBank(ctx, &ImportBankRequest{}, "bank.csv", strings.NewReader(""))
	assert.True(t, IsValidation(err))

	_, err = svc.ImportQuestionBank(ctx, req, "bank.csv", strings.NewReader("question_text\nHello"))
	assert.True(t, IsValidation(err))

	result, err := svc.ImportQuestionBank(ctx, req, "bank.csv", strings.NewReader("question_type,question_text\nmatching,Hello"))
	assert.ErrorIs(t, err, ErrImportFailed)
	assert.Len(t, result.Errors, 1)

	_, err = svc.ImportQuestionBank(ctx, req, "bank.csv", strings.NewReader(
		"question_id,question_type,question_text,correct_answer\n1,short_answer,A,x\n1,short_answer,B,y"))
	assert.True(t, IsValidation(err))
}

func TestExportResults(t *testing.T) {
	svc, _, f := newImportFixture(t)
	ctx := context.Background()

	view, err := f.service.Start(ctx, &StartAttemptRequest{BankID: memory.DefaultBankID})
	require.NoError(t, err)
	id := view.AttemptID

	var buf bytes.Buffer
	err = svc.ExportResults(ctx, id, &buf)
	assert.True(t, IsBusinessRule(err))

	_, err = f.service.RecordAnswer(ctx, id, &RecordAnswerRequest{Answer: 1})
	require.NoError(t, err)
	_, err = f.service.Next(ctx, id)
	require.NoError(t, err)
	_, err = f.service.RecordAnswer(ctx, id, &RecordAnswerRequest{Answer: false})
	require.NoError(t, err)
	f.service.TickAll(ctx, 1200)

	require.NoError(t, svc.ExportResults(ctx, id, &buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Results")
	require.NoError(t, err)
	assert.Equal(t, []string{"Test", "Introduction to Psychology"}, rows[0])
	assert.Equal(t, []string{"Status", string(models.AttemptEndReasonTimeExpired)}, rows[2])
	assert.Equal(t, []string{"Answered", "2 of 4"}, rows[3])

	header := rows[7]
	assert.Equal(t, "Your Answer", header[3])
	assert.Equal(t, "B. Encoding", rows[8][3])
	assert.Equal(t, "B. Encoding", rows[8][4])
	assert.Equal(t, "False", rows[9][3])
	assert.Equal(t, "True", rows[9][4])
	assert.Equal(t, "Synapse", rows[10][4])

	err = svc.ExportResults(ctx, "missing", &buf)
	assert.ErrorIs(t, err, ErrResultsNotFound)
}

func TestFormatAnswer(t *testing.T) {
	mc := models.QuestionResult{Type: models.MultipleChoice, Options: []string{"a", "b"}}
	assert.Equal(t, "A. a", formatAnswer(mc, 0, true))
	assert.Equal(t, "B. b", formatAnswer(mc, float64(1), true))
	assert.Equal(t, "7", formatAnswer(mc, 7, true))
	assert.Equal(t, "", formatAnswer(mc, nil, false))

	essay := models.QuestionResult{Type: models.Essay}
	assert.Equal(t, "Some text", formatAnswer(essay, "Some text", true))
}
