package memory

import "github.com/SAP-F-2025/study-service/internal/models"

const DefaultBankID = "cognitive-psychology"

// DefaultQuestionBank is the multi-format practice test shipped with the service.
func DefaultQuestionBank() *models.QuestionBank {
	return &models.QuestionBank{
		ID:       DefaultBankID,
		Title:    "Introduction to Psychology",
		Subject:  "Psychology",
		Duration: 1200,
		Questions: []models.Question{
			{
				ID:   "1",
				Type: models.MultipleChoice,
				Text: "In the context of Cognitive Psychology, which process refers to the mental act of transforming sensory input into a usable mental representation?",
				Options: []string{
					"Retrieval",
					"Encoding",
					"Storage",
					"Sensation",
				},
				CorrectAnswer: 1,
				Points:        5,
				Explanation:   "Encoding turns sensory input into a representation memory can store; retrieval and storage happen afterwards.",
			},
			{
				ID:            "2",
				Type:          models.TrueFalse,
				Text:          "Neuroplasticity is the brain's ability to reorganize itself by forming new neural connections throughout life.",
				CorrectAnswer: true,
				Points:        2,
				Explanation:   "The brain keeps forming and pruning connections in adulthood, not only during development.",
			},
			{
				ID:            "3",
				Type:          models.ShortAnswer,
				Text:          "What is the term for the gap between two neurons where chemical signals are transmitted?",
				CorrectAnswer: "Synapse",
				Points:        5,
				Explanation:   "Neurotransmitters cross the synaptic cleft between the presynaptic and postsynaptic neuron.",
			},
			{
				ID:     "4",
				Type:   models.Essay,
				Text:   "Discuss the impact of sleep deprivation on cognitive performance and emotional regulation. Provide at least two specific examples of how missing sleep affects the prefrontal cortex.",
				Points: 20,
			},
		},
	}
}
