package app

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"kidlingo-service/internal/auth"
	"kidlingo-service/internal/client"
	"kidlingo-service/internal/domain"
	"kidlingo-service/internal/learning"
	"kidlingo-service/internal/querycache"
	"kidlingo-service/internal/quiz"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRepository abstracts how live quiz sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Add(session *quiz.Session)
	Get(id string) (*quiz.Session, bool)
	// Touch marks the session active and persists its latest state where the store keeps one.
	// Sessions left untouched for the store's TTL are evicted and closed.
	Touch(session *quiz.Session)
	Remove(id string)
}

// QuizService contains the play use cases: start a quiz, answer, acknowledge, finish.
type QuizService struct {
	sessions SessionRepository
	backend  *learning.Service
	cache    querycache.Store
	settings quiz.Settings
	log      *zap.Logger
	newID    func() string

	rndMu sync.Mutex
	rnd   *rand.Rand
}

type Options struct {
	Settings quiz.Settings
	Logger   *zap.Logger
	// Rand drives question and option shuffling; seeded from the clock when nil.
	Rand *rand.Rand
	// NewID generates session IDs; uuid.NewString when nil.
	NewID func() string
}

func NewQuizService(store SessionRepository, backend *learning.Service, cache querycache.Store, opts Options) *QuizService {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &QuizService{
		sessions: store,
		backend:  backend,
		cache:    cache,
		settings: opts.Settings,
		log:      log,
		newID:    newID,
		rnd:      rnd,
	}
}

// Client returns the remote service client bound to caller.
func (s *QuizService) Client(caller auth.Identity) *client.Client {
	return client.New(s.backend, s.cache, caller)
}

// Start builds a quiz for category. An empty category yields domain.ErrNoWords and no session.
// The verifier is picked here, once, from the caller's identity.
func (s *QuizService) Start(ctx context.Context, caller auth.Identity, category string) (*quiz.Session, error) {
	c := s.Client(caller)
	words, err := c.WordsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	s.rndMu.Lock()
	questions, err := quiz.BuildQuestions(words, s.settings, s.rnd)
	s.rndMu.Unlock()
	if err != nil {
		return nil, err
	}

	authenticated := caller.Authenticated()
	opts := quiz.Options{
		ID:            s.newID(),
		Category:      category,
		Owner:         caller.Principal,
		Authenticated: authenticated,
		Questions:     questions,
		Verifier:      quiz.NewVerifier(authenticated, c),
		Settings:      s.settings,
		Logger:        s.log,
	}
	if authenticated {
		opts.Reporter = c
	}
	session := quiz.NewSession(opts)
	s.sessions.Add(session)

	s.log.Info("quiz started",
		zap.String("session_id", session.ID()),
		zap.String("category", category),
		zap.Bool("authenticated", authenticated),
		zap.Int("questions", len(questions)),
	)
	return session, nil
}

// Session returns the caller's live session.
func (s *QuizService) Session(caller auth.Identity, id string) (*quiz.Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.Owner() != caller.Principal {
		return nil, domain.ErrForbidden
	}
	return session, nil
}

// Submit answers the current question. Submissions while not ready are ignored (Accepted=false).
func (s *QuizService) Submit(ctx context.Context, caller auth.Identity, id, option string) (quiz.Outcome, error) {
	session, err := s.Session(caller, id)
	if err != nil {
		return quiz.Outcome{}, err
	}
	outcome, err := session.Submit(ctx, option)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionClosed) {
			s.sessions.Touch(session)
		}
		return outcome, err
	}
	if outcome.Accepted {
		s.sessions.Touch(session)
	}
	if outcome.Result != nil {
		s.log.Info("quiz completed",
			zap.String("session_id", id),
			zap.Int("score", outcome.Result.Score),
			zap.Int("total", outcome.Result.Total),
			zap.Bool("reported", outcome.Result.Reported),
		)
	}
	return outcome, nil
}

// Acknowledge ends the feedback pause and returns the next question.
func (s *QuizService) Acknowledge(caller auth.Identity, id string) (domain.Question, bool, error) {
	session, err := s.Session(caller, id)
	if err != nil {
		return domain.Question{}, false, err
	}
	q, ok := session.Acknowledge()
	if ok {
		s.sessions.Touch(session)
	}
	return q, ok, nil
}

// Result returns the completion summary; ok is false while the quiz is still running.
func (s *QuizService) Result(caller auth.Identity, id string) (quiz.Result, bool, error) {
	session, err := s.Session(caller, id)
	if err != nil {
		return quiz.Result{}, false, err
	}
	res, ok := session.Result()
	return res, ok, nil
}

// Abandon closes and forgets the session. A verification still in flight is discarded.
func (s *QuizService) Abandon(caller auth.Identity, id string) error {
	if _, err := s.Session(caller, id); err != nil {
		return err
	}
	s.sessions.Remove(id)
	s.log.Debug("quiz abandoned", zap.String("session_id", id))
	return nil
}
