package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"kidlingo-service/internal/app"
	"kidlingo-service/internal/auth"
	"kidlingo-service/internal/domain"
	pgstore "kidlingo-service/internal/infra/postgres"
	pgmigrations "kidlingo-service/internal/infra/postgres/migrations"
	infraredis "kidlingo-service/internal/infra/redis"
	"kidlingo-service/internal/learning"
	"kidlingo-service/internal/querycache"
	"kidlingo-service/internal/quiz"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

func TestAuthenticatedQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := migrateDB(t, ctx, pgURL)
	defer db.Close()

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	dict := pgstore.NewDictionary(pool)
	store := pgstore.NewLearningStore(db)
	vocab := infraredis.NewVocabularyRepository(redisClient, dict, 5*time.Minute)
	queries := querycache.NewRedisStore(redisClient, time.Minute)
	backend := learning.NewService(store, dict, vocab, queries, []string{"coach"}, zap.NewNop())

	admin := auth.Identity{Principal: "coach"}
	if err := backend.InitializeVocabulary(ctx, admin); err != nil {
		t.Fatalf("initialize vocabulary: %v", err)
	}
	// seeding twice keeps one row per word
	if err := backend.InitializeVocabulary(ctx, admin); err != nil {
		t.Fatalf("initialize vocabulary again: %v", err)
	}
	err = dict.SaveWords(ctx, []domain.Word{{Text: "Dog", Translation: "Perro", Category: "Food"}})
	if !errors.Is(err, domain.ErrDuplicateWord) {
		t.Fatalf("expected ErrDuplicateWord for a term in two categories, got %v", err)
	}

	service := app.NewQuizService(
		infraredis.NewSessionStore(redisClient, 5*time.Minute),
		backend,
		queries,
		app.Options{},
	)

	kid := auth.Identity{Principal: "kid-1"}
	session, err := service.Start(ctx, kid, "Animals")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.Snapshot().Total != 5 {
		t.Fatalf("expected 5 questions, got %d", session.Snapshot().Total)
	}

	var result *quiz.Result
	for result == nil {
		q, _, ok := session.Current()
		if !ok {
			t.Fatalf("no current question")
		}
		outcome, err := service.Submit(ctx, kid, session.ID(), q.CorrectAnswer)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if !outcome.Correct {
			t.Fatalf("expected remote check to accept %q for %q", q.CorrectAnswer, q.Prompt)
		}
		result = outcome.Result
		if result == nil {
			_, _, _ = service.Acknowledge(kid, session.ID())
		}
	}
	if !result.Reported || result.Points != 50 {
		t.Fatalf("expected reported 50 points, got %+v", result)
	}

	progress, err := store.Progress(ctx, kid.Principal)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.TotalScore != 50 || progress.CompletedLessons != 1 || progress.Stars != 1 {
		t.Fatalf("unexpected progress %+v", progress)
	}
	rewards, err := store.Rewards(ctx, kid.Principal)
	if err != nil || len(rewards) != 1 || rewards[0] != domain.RewardGoldStar {
		t.Fatalf("unexpected rewards %v (%v)", rewards, err)
	}

	words, err := dict.LoadWords(ctx, "Animals")
	if err != nil {
		t.Fatalf("load words: %v", err)
	}
	if len(words) != 6 || words[0].Text != "Dog" {
		t.Fatalf("expected 6 animals starting with Dog, got %v", words)
	}
	if n, _ := redisClient.Exists(ctx, "kidlingo:session:"+session.ID()).Result(); n != 1 {
		t.Fatalf("expected session snapshot in redis")
	}
}

func TestLearningStoreProfilesAndRoles(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	db := migrateDB(t, ctx, pgURL)
	defer db.Close()

	store := pgstore.NewLearningStore(db)
	if _, err := store.Profile(ctx, "kid-1"); err != domain.ErrProfileNotFound {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	age := 7
	if err := store.SaveProfile(ctx, "kid-1", domain.UserProfile{Name: "Ana", PreferredLanguage: "Spanish", Age: &age}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if err := store.SaveProfile(ctx, "kid-1", domain.UserProfile{Name: "Ana B", PreferredLanguage: "French"}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	profile, err := store.Profile(ctx, "kid-1")
	if err != nil || profile.Name != "Ana B" || profile.Age != nil {
		t.Fatalf("unexpected profile %+v (%v)", profile, err)
	}

	if _, ok, _ := store.Role(ctx, "kid-1"); ok {
		t.Fatalf("expected no role")
	}
	if err := store.SetRole(ctx, "kid-1", domain.RoleAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if role, ok, _ := store.Role(ctx, "kid-1"); !ok || role != domain.RoleAdmin {
		t.Fatalf("unexpected role %q", role)
	}

	if err := store.AddReward(ctx, "kid-1", domain.RewardBronzeStar); err != nil {
		t.Fatalf("add reward: %v", err)
	}
	progress, _ := store.Progress(ctx, "kid-1")
	if progress.Stars != 1 || progress.CompletedLessons != 0 {
		t.Fatalf("unexpected progress %+v", progress)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "kidlingo", "POSTGRES_PASSWORD": "kidlingo", "POSTGRES_DB": "kidlingo"},
		ExposedPorts: []string{"5432/tcp"},
		// postgres restarts once after init; wait for the second ready line
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://kidlingo:kidlingo@%s:%s/kidlingo?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
