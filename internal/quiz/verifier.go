package quiz

import (
	"context"

	"kidlingo-service/internal/domain"
)

// Verifier decides whether an option answers a question.
type Verifier interface {
	Verify(ctx context.Context, q domain.Question, option string) (bool, error)
}

// AnswerChecker is the backend's authoritative answer check.
type AnswerChecker interface {
	CheckQuizAnswer(ctx context.Context, word, translation string) (bool, error)
}

// LocalVerifier compares against the question's own answer key. Guests only.
type LocalVerifier struct{}

func (LocalVerifier) Verify(_ context.Context, q domain.Question, option string) (bool, error) {
	return option == q.CorrectAnswer, nil
}

// RemoteVerifier asks the backend and ignores the local answer key.
type RemoteVerifier struct {
	Checker AnswerChecker
}

func (v RemoteVerifier) Verify(ctx context.Context, q domain.Question, option string) (bool, error) {
	return v.Checker.CheckQuizAnswer(ctx, q.Prompt, option)
}

// NewVerifier picks the verifier for a session once, at creation.
func NewVerifier(authenticated bool, checker AnswerChecker) Verifier {
	if authenticated && checker != nil {
		return RemoteVerifier{Checker: checker}
	}
	return LocalVerifier{}
}
