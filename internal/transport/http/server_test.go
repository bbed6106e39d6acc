package http

import (
	"context"
	"math/rand"
	"net/http/httptest"
	"testing"
	"time"

	"kidlingo-service/internal/app"
	"kidlingo-service/internal/auth"
	"kidlingo-service/internal/infra/memory"
	"kidlingo-service/internal/learning"
	"kidlingo-service/internal/querycache"

	"go.uber.org/zap"
)

type testEnv struct {
	server *httptest.Server
	tokens *auth.Tokens
	store  *memory.LearningStore
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	return newTestEnvWithDelay(t, 10*time.Millisecond)
}

func newTestEnvWithDelay(t *testing.T, delay time.Duration) testEnv {
	t.Helper()
	store := memory.NewLearningStore()
	dict := memory.NewDictionary()
	queries := querycache.NewMemoryStore()
	backend := learning.NewService(store, dict, memory.NewVocabularyRepository(dict, time.Minute), queries, []string{"coach"}, zap.NewNop())
	if err := backend.SeedVocabulary(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	service := app.NewQuizService(memory.NewSessionStore(time.Minute), backend, queries, app.Options{
		Rand: rand.New(rand.NewSource(1)),
	})
	tokens := auth.NewTokens("test-secret", "kidlingo", time.Hour)
	ws := NewWSHandler(service, delay, zap.NewNop())

	server := httptest.NewServer(NewRouter(service, tokens, ws, zap.NewNop()))
	t.Cleanup(server.Close)
	return testEnv{server: server, tokens: tokens, store: store}
}

func (e testEnv) token(t *testing.T, principal string) string {
	t.Helper()
	raw, err := e.tokens.Issue(principal)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return raw
}

// translations maps each seeded prompt to its answer.
func translations() map[string]string {
	out := make(map[string]string)
	for _, w := range learning.DefaultVocabulary() {
		out[w.Text] = w.Translation
	}
	return out
}
