package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/study-service/internal/models"
	"github.com/SAP-F-2025/study-service/internal/validator"
)

func TestRecordRoundTrip(t *testing.T) {
	bank := &models.QuestionBank{
		ID:       "bank",
		Title:    "Psychology",
		Subject:  "Psychology",
		Duration: 600,
		Questions: []models.Question{
			{ID: "1", Type: models.MultipleChoice, Text: "Pick", Options: []string{"a", "b"}, CorrectAnswer: 1, Points: 5},
			{ID: "2", Type: models.TrueFalse, Text: "True?", CorrectAnswer: true, Points: 2},
			{ID: "3", Type: models.Essay, Text: "Discuss", Points: 20},
		},
	}

	record, err := toRecord(bank)
	require.NoError(t, err)
	require.Len(t, record.Questions, 3)
	assert.Equal(t, 2, record.Questions[2].Position)
	assert.Equal(t, "bank", record.Questions[0].BankID)

	back, err := fromRecord(record)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, back.Questions[0].Options)
	assert.Equal(t, true, back.Questions[1].CorrectAnswer)
	assert.Nil(t, back.Questions[2].CorrectAnswer)

	// JSON numbers come back as float64 and still resolve to an option index.
	idx, ok := validator.OptionIndex(back.Questions[0].CorrectAnswer)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestFromRecord_InvalidOptions(t *testing.T) {
	_, err := fromRecord(&QuestionBankRecord{
		ID:        "bank",
		Questions: []QuestionRecord{{ID: "1", Options: []byte("{not json")}},
	})
	assert.Error(t, err)
}
