package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"kidlingo-service/internal/infra/memory"
	"kidlingo-service/internal/quiz"

	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions stay in a local store because verification callbacks run in-process;
// it evicts idle sessions after ttl, the same lifetime as the Redis snapshot.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	local  *memory.SessionStore
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
		local:  memory.NewSessionStore(ttl),
	}
}

// WithClock replaces the local eviction clock, for tests.
func (s *SessionStore) WithClock(clock func() time.Time) *SessionStore {
	s.local.WithClock(clock)
	return s
}

func (s *SessionStore) Add(session *quiz.Session) {
	s.local.Add(session)
	s.writeSnapshot(session)
}

func (s *SessionStore) Get(id string) (*quiz.Session, bool) {
	return s.local.Get(id)
}

// Touch writes the current snapshot and refreshes the liveness TTL (best-effort).
func (s *SessionStore) Touch(session *quiz.Session) {
	s.local.Touch(session)
	s.writeSnapshot(session)
}

func (s *SessionStore) writeSnapshot(session *quiz.Session) {
	raw, err := json.Marshal(session.Snapshot())
	if err != nil {
		return
	}
	_ = s.client.Set(context.Background(), s.key(session.ID()), raw, s.ttl).Err()
}

func (s *SessionStore) Remove(id string) {
	s.local.Remove(id)
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

// Snapshot reads the last stored state, which outlives the local map after a restart.
func (s *SessionStore) Snapshot(ctx context.Context, id string) (quiz.State, bool, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return quiz.State{}, false, nil
	}
	if err != nil {
		return quiz.State{}, false, err
	}
	var state quiz.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return quiz.State{}, false, err
	}
	return state, true, nil
}

func (s *SessionStore) key(id string) string {
	return "kidlingo:session:" + id
}
