package quiz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kidlingo-service/internal/domain"

	"go.uber.org/zap"
)

// LessonReporter receives the points of a finished session. Authenticated players only.
type LessonReporter interface {
	CompleteLesson(ctx context.Context, points int) error
}

// Options configures a new Session.
type Options struct {
	ID            string
	Category      string
	Owner         string
	Authenticated bool
	Questions     []domain.Question
	Verifier      Verifier
	Reporter      LessonReporter
	Settings      Settings
	Logger        *zap.Logger
	Now           func() time.Time
}

// State is a read-only snapshot of a session.
type State struct {
	ID            string    `json:"id"`
	Category      string    `json:"category"`
	Index         int       `json:"index"`
	Total         int       `json:"total"`
	Score         int       `json:"score"`
	Authenticated bool      `json:"authenticated"`
	Completed     bool      `json:"completed"`
	Pending       bool      `json:"pending"`
	AwaitingAck   bool      `json:"awaitingAck"`
	StartedAt     time.Time `json:"startedAt"`
}

// Outcome describes what a Submit call did.
type Outcome struct {
	// Accepted is false when the submission was ignored (completed, closed,
	// pending verification, or feedback not yet acknowledged).
	Accepted      bool
	Correct       bool
	CorrectAnswer string
	State         State
	// Result is set on the submission that completed the session.
	Result *Result
}

// Session is one playthrough of a quiz for one category. The index only moves
// forward, one step per accepted answer, and a completed session never changes.
type Session struct {
	id            string
	category      string
	owner         string
	authenticated bool
	questions     []domain.Question
	verifier      Verifier
	reporter      LessonReporter
	settings      Settings
	log           *zap.Logger
	startedAt     time.Time

	mu          sync.Mutex
	index       int
	score       int
	completed   bool
	pending     bool
	awaitingAck bool
	closed      bool
	result      *Result

	finalizeOnce sync.Once
}

func NewSession(opts Options) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	verifier := opts.Verifier
	if verifier == nil {
		verifier = LocalVerifier{}
	}
	return &Session{
		id:            opts.ID,
		category:      opts.Category,
		owner:         opts.Owner,
		authenticated: opts.Authenticated,
		questions:     opts.Questions,
		verifier:      verifier,
		reporter:      opts.Reporter,
		settings:      opts.Settings.withDefaults(),
		log:           log.With(zap.String("session_id", opts.ID), zap.String("category", opts.Category)),
		startedAt:     now(),
	}
}

func (s *Session) ID() string       { return s.id }
func (s *Session) Category() string { return s.category }
func (s *Session) Owner() string    { return s.owner }

// Submit evaluates option against the current question and advances the session.
func (s *Session) Submit(ctx context.Context, option string) (Outcome, error) {
	s.mu.Lock()
	if !s.readyLocked() {
		st := s.snapshotLocked()
		s.mu.Unlock()
		return Outcome{State: st}, nil
	}
	question := s.questions[s.index]
	s.pending = true
	s.mu.Unlock()

	correct, err := s.verifier.Verify(ctx, question, option)

	s.mu.Lock()
	s.pending = false
	if s.closed {
		s.mu.Unlock()
		return Outcome{}, domain.ErrSessionClosed
	}
	if err != nil {
		st := s.snapshotLocked()
		s.mu.Unlock()
		s.log.Warn("answer verification failed", zap.Int("index", st.Index), zap.Error(err))
		return Outcome{State: st}, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}

	if correct {
		s.score++
	}
	s.index++
	finished := s.index == len(s.questions)
	var provisional Result
	if finished {
		// the unreported result is visible as soon as the quiz is completed
		provisional = NewResult(s.score, len(s.questions), s.settings.PointsPerCorrect)
		s.result = &provisional
		s.completed = true
	} else {
		s.awaitingAck = true
	}
	st := s.snapshotLocked()
	s.mu.Unlock()

	outcome := Outcome{
		Accepted:      true,
		Correct:       correct,
		CorrectAnswer: question.CorrectAnswer,
		State:         st,
	}
	if finished {
		res := s.finalize(ctx, provisional)
		outcome.Result = &res
	}
	return outcome, nil
}

// finalize runs once, on the transition to completed, and reports res.
func (s *Session) finalize(ctx context.Context, res Result) Result {
	s.finalizeOnce.Do(func() {
		if s.authenticated && s.reporter != nil {
			if err := s.reporter.CompleteLesson(ctx, res.Points); err != nil {
				s.log.Warn("lesson report failed", zap.Int("points", res.Points), zap.Error(err))
				res.ReportError = "Your score couldn't be saved this time."
			} else {
				res.Reported = true
			}
		}
		s.mu.Lock()
		s.result = &res
		s.mu.Unlock()
	})
	res, _ = s.Result()
	return res
}

// Acknowledge ends the feedback pause and returns the question that is now answerable.
func (s *Session) Acknowledge() (domain.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.completed || s.index >= len(s.questions) {
		return domain.Question{}, false
	}
	s.awaitingAck = false
	return s.questions[s.index], true
}

// Current returns the question at the current index.
func (s *Session) Current() (domain.Question, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.completed || s.index >= len(s.questions) {
		return domain.Question{}, s.index, false
	}
	return s.questions[s.index], s.index, true
}

// Ready reports whether a submission would be evaluated right now.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readyLocked()
}

func (s *Session) readyLocked() bool {
	return !s.closed && !s.completed && !s.pending && !s.awaitingAck && s.index < len(s.questions)
}

// Result returns the summary once the session completed.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	return State{
		ID:            s.id,
		Category:      s.category,
		Index:         s.index,
		Total:         len(s.questions),
		Score:         s.score,
		Authenticated: s.authenticated,
		Completed:     s.completed,
		Pending:       s.pending,
		AwaitingAck:   s.awaitingAck,
		StartedAt:     s.startedAt,
	}
}

// Close tears the session down. A verification still in flight is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
