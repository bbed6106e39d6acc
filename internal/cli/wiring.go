package cli

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kidlingo-service/internal/app"
	"kidlingo-service/internal/config"
	"kidlingo-service/internal/infra/memory"
	pgstore "kidlingo-service/internal/infra/postgres"
	redisstore "kidlingo-service/internal/infra/redis"
	"kidlingo-service/internal/learning"
	"kidlingo-service/internal/querycache"
	"kidlingo-service/internal/quiz"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"
)

// deps holds the wired backends. Postgres and Redis are optional; without them
// everything runs in memory with the default vocabulary.
type deps struct {
	backend  *learning.Service
	sessions app.SessionRepository
	cache    querycache.Store
	persist  bool
	closers  []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func openBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func buildDeps(ctx context.Context, cfg config.Config, log *zap.Logger) (*deps, error) {
	d := &deps{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			d.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		d.closers = append(d.closers, func() { _ = redisClient.Close() })
	}

	var (
		store  learning.Store
		dict   learning.Dictionary
		loader memory.VocabularyLoader
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.closers = append(d.closers, pool.Close)
		db := openBun(cfg.Postgres.URL)
		d.closers = append(d.closers, func() { _ = db.Close() })

		pgDict := pgstore.NewDictionary(pool)
		dict, loader = pgDict, pgDict
		store = pgstore.NewLearningStore(db)
		d.persist = true
	} else {
		memDict := memory.NewDictionary()
		dict, loader = memDict, memDict
		store = memory.NewLearningStore()
	}

	vocabTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	sessionTTL := config.TTLDuration(cfg.Quiz.SessionTTL, 30*time.Minute)

	var vocab learning.VocabularyRepository
	if redisClient != nil {
		vocab = redisstore.NewVocabularyRepository(redisClient, loader, vocabTTL)
		d.cache = querycache.NewRedisStore(redisClient, redisTTL)
		d.sessions = redisstore.NewSessionStore(redisClient, sessionTTL)
	} else {
		vocab = memory.NewVocabularyRepository(loader, vocabTTL)
		d.cache = querycache.NewMemoryStore()
		d.sessions = memory.NewSessionStore(sessionTTL)
	}

	d.backend = learning.NewService(store, dict, vocab, d.cache, cfg.Auth.Admins, log)
	return d, nil
}

func quizSettings(cfg config.Config) quiz.Settings {
	return quiz.Settings{
		QuestionLimit:    cfg.Quiz.QuestionLimit,
		PointsPerCorrect: cfg.Quiz.PointsPerCorrect,
		MaxOptions:       cfg.Quiz.MaxOptions,
	}
}
