package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "20:00", FormatTime(1200))
	assert.Equal(t, "1:05", FormatTime(65))
	assert.Equal(t, "0:00", FormatTime(0))
	assert.Equal(t, "0:00", FormatTime(-3))
}

func TestLabels(t *testing.T) {
	s := newSession(t, 1200)

	assert.Equal(t, "Question 1 of 4", s.ProgressLabel())
	assert.Equal(t, "Next Question", s.NextLabel())

	for i := 0; i < 3; i++ {
		_, err := s.Advance()
		require.NoError(t, err)
	}
	assert.Equal(t, "Question 4 of 4", s.ProgressLabel())
	assert.Equal(t, "Submit Test", s.NextLabel())
}
