package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"kidlingo-service/internal/auth"
	"kidlingo-service/internal/domain"
	"kidlingo-service/internal/quiz"
)

type errorPayload struct {
	Message string `json:"message"`
}

// questionView hides the correct answer from the player.
type questionView struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

type startedView struct {
	SessionID     string `json:"sessionId"`
	Category      string `json:"category"`
	Total         int    `json:"total"`
	Authenticated bool   `json:"authenticated"`
}

type answerView struct {
	Accepted      bool         `json:"accepted"`
	Correct       bool         `json:"correct"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	State         quiz.State   `json:"state"`
	Result        *quiz.Result `json:"result,omitempty"`
}

type emptyView struct {
	Empty    bool   `json:"empty"`
	Category string `json:"category"`
}

func newQuestionView(q domain.Question, index, total int) questionView {
	return questionView{Index: index, Total: total, Prompt: q.Prompt, Options: q.Options}
}

func newStartedView(session *quiz.Session, caller auth.Identity) startedView {
	st := session.Snapshot()
	return startedView{
		SessionID:     session.ID(),
		Category:      session.Category(),
		Total:         st.Total,
		Authenticated: caller.Authenticated(),
	}
}

func newAnswerView(o quiz.Outcome) answerView {
	v := answerView{Accepted: o.Accepted, Correct: o.Correct, State: o.State, Result: o.Result}
	if o.Accepted {
		v.CorrectAnswer = o.CorrectAnswer
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrWordNotFound), errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidProfile), errors.Is(err, domain.ErrInvalidReward),
		errors.Is(err, domain.ErrInvalidRole), errors.Is(err, domain.ErrInvalidScore):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, domain.ErrDuplicateWord):
		return http.StatusConflict
	case errors.Is(err, domain.ErrVerificationFailed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// messageFor keeps internal failures out of responses.
func messageFor(err error, status int) string {
	if errors.Is(err, domain.ErrVerificationFailed) {
		return domain.ErrVerificationFailed.Error()
	}
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
