package quiz

import "math"

// Result is the end-of-quiz summary shown to the player.
type Result struct {
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Stars      int    `json:"stars"`
	Message    string `json:"message"`
	Points     int    `json:"points"`
	Reported   bool   `json:"reported"`
	// ReportError is a non-fatal notice; the score above stands regardless.
	ReportError string `json:"reportError,omitempty"`
}

// NewResult summarizes score out of total.
func NewResult(score, total, pointsPerCorrect int) Result {
	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(score) / float64(total) * 100))
	}
	return Result{
		Score:      score,
		Total:      total,
		Percentage: pct,
		Stars:      starsFor(pct),
		Message:    messageFor(pct),
		Points:     score * pointsPerCorrect,
	}
}

func starsFor(pct int) int {
	switch {
	case pct == 100:
		return 3
	case pct >= 60:
		return 2
	default:
		return 1
	}
}

func messageFor(pct int) string {
	switch {
	case pct == 100:
		return "Perfect! You're a star!"
	case pct >= 80:
		return "Excellent work!"
	case pct >= 60:
		return "Great job! Keep it up!"
	default:
		return "Good try! Practice makes perfect!"
	}
}
