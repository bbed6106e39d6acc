package app_test

import (
	"context"
	"math/rand"
	"strconv"
	"testing"
	"time"

	"kidlingo-service/internal/app"
	"kidlingo-service/internal/auth"
	"kidlingo-service/internal/domain"
	"kidlingo-service/internal/infra/memory"
	"kidlingo-service/internal/learning"
	"kidlingo-service/internal/querycache"
	"kidlingo-service/internal/quiz"

	"go.uber.org/zap"
)

var kid = auth.Identity{Principal: "kid-1"}

func TestGuestPlaysWithoutReporting(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)

	session, err := service.Start(ctx, auth.Guest, "Animals")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	outcome := playAllCorrect(t, service, auth.Guest, session)
	if outcome.Result == nil || outcome.Result.Score != 5 || outcome.Result.Reported {
		t.Fatalf("expected unreported 5/5 result, got %+v", outcome.Result)
	}

	progress, _ := store.Progress(ctx, "")
	if progress.CompletedLessons != 0 {
		t.Fatalf("guest play must not be recorded, got %+v", progress)
	}
}

func TestAuthenticatedPlayReportsPoints(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)

	session, err := service.Start(ctx, kid, "Animals")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	outcome := playAllCorrect(t, service, kid, session)
	if outcome.Result == nil || !outcome.Result.Reported || outcome.Result.Points != 50 {
		t.Fatalf("expected reported 50 points, got %+v", outcome.Result)
	}

	progress, _ := store.Progress(ctx, kid.Principal)
	if progress.TotalScore != 50 || progress.CompletedLessons != 1 || progress.Stars != 1 {
		t.Fatalf("unexpected progress %+v", progress)
	}
	res, ok, err := service.Result(kid, session.ID())
	if err != nil || !ok || res.Score != 5 {
		t.Fatalf("expected stored result, got %+v ok=%v err=%v", res, ok, err)
	}
}

func TestStartEmptyCategoryCreatesNoSession(t *testing.T) {
	service, _ := newTestService(t)
	if _, err := service.Start(context.Background(), kid, "Planets"); err != domain.ErrNoWords {
		t.Fatalf("expected ErrNoWords, got %v", err)
	}
	if _, err := service.Session(kid, "session-1"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected no session, got %v", err)
	}
}

func TestSeedingReplacesCachedEmptyWordList(t *testing.T) {
	ctx := context.Background()
	service, backend, _, _ := newUnseededService(t)

	if _, err := service.Start(ctx, auth.Guest, "Animals"); err != domain.ErrNoWords {
		t.Fatalf("expected ErrNoWords before seeding, got %v", err)
	}
	if err := backend.SeedVocabulary(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	session, err := service.Start(ctx, auth.Guest, "Animals")
	if err != nil {
		t.Fatalf("start after seeding: %v", err)
	}
	if session.Snapshot().Total == 0 {
		t.Fatalf("expected questions after seeding")
	}
}

func TestUnknownCategoriesAreNotCached(t *testing.T) {
	ctx := context.Background()
	service, backend, _, queries := newUnseededService(t)
	if err := backend.SeedVocabulary(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for i := 0; i < 50; i++ {
		category := "junk-" + strconv.Itoa(i)
		if _, err := service.Start(ctx, auth.Guest, category); err != domain.ErrNoWords {
			t.Fatalf("expected ErrNoWords for %s, got %v", category, err)
		}
		if _, err := queries.Get(ctx, querycache.Key("words", category)); err != querycache.ErrMiss {
			t.Fatalf("expected no cache entry for %s, got %v", category, err)
		}
	}
	if _, err := service.Start(ctx, auth.Guest, "Animals"); err != nil {
		t.Fatalf("start known category: %v", err)
	}
	if _, err := queries.Get(ctx, querycache.Key("words", "Animals")); err != nil {
		t.Fatalf("expected known category cached, got %v", err)
	}
}

func TestSessionOwnership(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	session, err := service.Start(ctx, kid, "Colors")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	intruder := auth.Identity{Principal: "kid-2"}
	if _, err := service.Submit(ctx, intruder, session.ID(), "Rojo"); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := service.Abandon(intruder, session.ID()); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden on abandon, got %v", err)
	}
}

func TestSubmitBeforeAcknowledgeIsIgnored(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	session, _ := service.Start(ctx, auth.Guest, "Numbers")
	q, _, _ := session.Current()
	first, err := service.Submit(ctx, auth.Guest, session.ID(), q.CorrectAnswer)
	if err != nil || !first.Accepted {
		t.Fatalf("expected first answer accepted, got %+v (%v)", first, err)
	}
	second, err := service.Submit(ctx, auth.Guest, session.ID(), "Uno")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if second.Accepted || second.State.Index != 1 {
		t.Fatalf("expected ignored submit, got %+v", second)
	}
}

func TestAbandonRemovesSession(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	session, _ := service.Start(ctx, kid, "Food")
	if err := service.Abandon(kid, session.ID()); err != nil {
		t.Fatalf("abandon failed: %v", err)
	}
	if !session.Closed() {
		t.Fatalf("expected session closed")
	}
	if _, err := service.Submit(ctx, kid, session.ID(), "Pan"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func playAllCorrect(t *testing.T, service *app.QuizService, caller auth.Identity, session *quiz.Session) quiz.Outcome {
	t.Helper()
	ctx := context.Background()
	var outcome quiz.Outcome
	for {
		q, _, ok := session.Current()
		if !ok {
			t.Fatalf("no current question")
		}
		var err error
		outcome, err = service.Submit(ctx, caller, session.ID(), q.CorrectAnswer)
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if !outcome.Accepted || !outcome.Correct {
			t.Fatalf("expected accepted correct answer, got %+v", outcome)
		}
		if outcome.Result != nil {
			return outcome
		}
		if _, ok, err := service.Acknowledge(caller, session.ID()); err != nil || !ok {
			t.Fatalf("acknowledge failed: ok=%v err=%v", ok, err)
		}
	}
}

func newTestService(t *testing.T) (*app.QuizService, *memory.LearningStore) {
	t.Helper()
	service, backend, store, _ := newUnseededService(t)
	if err := backend.SeedVocabulary(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return service, store
}

func newUnseededService(t *testing.T) (*app.QuizService, *learning.Service, *memory.LearningStore, *querycache.MemoryStore) {
	t.Helper()
	store := memory.NewLearningStore()
	dict := memory.NewDictionary()
	queries := querycache.NewMemoryStore()
	backend := learning.NewService(store, dict, memory.NewVocabularyRepository(dict, time.Minute), queries, nil, zap.NewNop())
	seq := 0
	service := app.NewQuizService(memory.NewSessionStore(time.Minute), backend, queries, app.Options{
		Rand: rand.New(rand.NewSource(7)),
		NewID: func() string {
			seq++
			return "session-" + strconv.Itoa(seq)
		},
	})
	return service, backend, store, queries
}
