package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"kidlingo-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// VocabularyLoader fetches a category's words from the dictionary.
type VocabularyLoader interface {
	LoadWords(ctx context.Context, category string) ([]domain.Word, error)
}

// VocabularyRepository caches category word lists in Redis and falls back to a loader on miss.
// Words are stored in source order as: RPUSH kidlingo:vocab:{category} {json word}
type VocabularyRepository struct {
	client *redis.Client
	loader VocabularyLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewVocabularyRepository(client *redis.Client, loader VocabularyLoader, ttl time.Duration) *VocabularyRepository {
	return &VocabularyRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *VocabularyRepository) WordsByCategory(ctx context.Context, category string) ([]domain.Word, error) {
	key := r.key(category)
	if words, ok := r.fromCache(ctx, key); ok {
		return words, nil
	}

	result, err, _ := r.sf.Do(category, func() (interface{}, error) {
		// Another caller may have filled the list meanwhile.
		if words, ok := r.fromCache(ctx, key); ok {
			return words, nil
		}

		words, err := r.loader.LoadWords(ctx, category)
		if err != nil {
			return nil, err
		}
		if len(words) == 0 {
			return words, nil
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, key)
		for _, w := range words {
			raw, err := json.Marshal(w)
			if err != nil {
				return nil, err
			}
			pipe.RPush(ctx, key, raw)
		}
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return words, nil
	})
	if err != nil {
		return nil, err
	}
	words := result.([]domain.Word)
	out := make([]domain.Word, len(words))
	copy(out, words)
	return out, nil
}

// Invalidate removes the cached list so the next read reloads it.
func (r *VocabularyRepository) Invalidate(ctx context.Context, category string) error {
	r.sf.Forget(category)
	return r.client.Del(ctx, r.key(category)).Err()
}

func (r *VocabularyRepository) fromCache(ctx context.Context, key string) ([]domain.Word, bool) {
	raw, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	words := make([]domain.Word, 0, len(raw))
	for _, item := range raw {
		var w domain.Word
		if err := json.Unmarshal([]byte(item), &w); err != nil {
			return nil, false
		}
		words = append(words, w)
	}
	return words, true
}

func (r *VocabularyRepository) key(category string) string {
	return "kidlingo:vocab:" + category
}

func (r *VocabularyRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
