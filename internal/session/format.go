package session

import "fmt"

// FormatTime renders seconds as m:ss for the countdown display.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ProgressLabel renders the "Question i of N" header for the current position.
func (s *Session) ProgressLabel() string {
	return fmt.Sprintf("Question %d of %d", s.currentIndex+1, len(s.questions))
}

// NextLabel is the caption of the forward button: the last question submits.
func (s *Session) NextLabel() string {
	if s.IsLast() {
		return "Submit Test"
	}
	return "Next Question"
}
