package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"kidlingo-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// VocabularyLoader fetches a category's words from a backing store.
type VocabularyLoader interface {
	LoadWords(ctx context.Context, category string) ([]domain.Word, error)
}

// VocabularyRepository caches category word lists with TTL to avoid repeated DB hits.
type VocabularyRepository struct {
	loader VocabularyLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedWords
}

type cachedWords struct {
	words     []domain.Word
	expiresAt time.Time
}

func NewVocabularyRepository(loader VocabularyLoader, ttl time.Duration) *VocabularyRepository {
	return &VocabularyRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedWords),
	}
}

func (r *VocabularyRepository) WordsByCategory(ctx context.Context, category string) ([]domain.Word, error) {
	if words, ok := r.lookup(category); ok {
		return words, nil
	}

	result, err, _ := r.sf.Do(category, func() (interface{}, error) {
		if words, ok := r.lookup(category); ok {
			return words, nil
		}

		words, err := r.loader.LoadWords(ctx, category)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[category] = cachedWords{
			words:     words,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return words, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneWords(result.([]domain.Word)), nil
}

// Invalidate drops the cached list so the next read goes to the loader.
func (r *VocabularyRepository) Invalidate(_ context.Context, category string) error {
	r.mu.Lock()
	delete(r.cache, category)
	r.mu.Unlock()
	r.sf.Forget(category)
	return nil
}

func (r *VocabularyRepository) lookup(category string) ([]domain.Word, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[category]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return cloneWords(entry.words), true
}

func (r *VocabularyRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter spreads expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func cloneWords(words []domain.Word) []domain.Word {
	out := make([]domain.Word, len(words))
	copy(out, words)
	return out
}
