package models

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	Essay          QuestionType = "essay"
)

// QuestionTypes lists every supported question type in display order.
var QuestionTypes = []QuestionType{MultipleChoice, TrueFalse, ShortAnswer, Essay}

// DisplayName returns the label shown above a question while it is being answered.
func (t QuestionType) DisplayName() string {
	switch t {
	case MultipleChoice:
		return "Multiple Choice"
	case TrueFalse:
		return "True / False"
	case ShortAnswer:
		return "Short Answer"
	case Essay:
		return "Essay Type"
	default:
		return "Question"
	}
}

// IsValid reports whether t is one of the supported question types.
func (t QuestionType) IsValid() bool {
	for _, qt := range QuestionTypes {
		if qt == t {
			return true
		}
	}
	return false
}

// Question is an immutable unit of assessment content.
//
// CorrectAnswer holds an option index for multiple choice, a bool for true/false
// and a string for short answer. It is nil for essays.
type Question struct {
	ID            string       `json:"id" validate:"required"`
	Type          QuestionType `json:"type" validate:"required,question_type"`
	Text          string       `json:"text" validate:"required"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer any          `json:"correct_answer,omitempty"`
	Points        int          `json:"points" validate:"required,min=1"`
	Explanation   string       `json:"explanation,omitempty"`
}

// QuestionBank is a named, ordered set of questions a test can be started from.
type QuestionBank struct {
	ID        string     `json:"id" validate:"required"`
	Title     string     `json:"title" validate:"required,max=200"`
	Subject   string     `json:"subject,omitempty"`
	Duration  int        `json:"duration"` // seconds, 0 means use the configured default
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
}

// TotalPoints sums the weight of every question in the bank.
func (b *QuestionBank) TotalPoints() int {
	total := 0
	for _, q := range b.Questions {
		total += q.Points
	}
	return total
}
