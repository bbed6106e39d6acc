package memory

import (
	"context"
	"fmt"
	"sync"

	"kidlingo-service/internal/domain"
)

// Dictionary is an in-memory vocabulary (useful for tests/demos). It serves as
// both the cache loader and the authoritative translation lookup.
type Dictionary struct {
	mu         sync.RWMutex
	byCategory map[string][]domain.Word
}

func NewDictionary(words ...domain.Word) *Dictionary {
	d := &Dictionary{byCategory: make(map[string][]domain.Word)}
	_ = d.SaveWords(context.Background(), words)
	return d
}

// LoadWords returns the category's words in insertion order; unknown categories are empty.
func (d *Dictionary) LoadWords(_ context.Context, category string) ([]domain.Word, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneWords(d.byCategory[category]), nil
}

// TranslationOf looks a term up by text alone, which SaveWords keeps unique.
func (d *Dictionary) TranslationOf(_ context.Context, text string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, words := range d.byCategory {
		for _, w := range words {
			if w.Text == text {
				return w.Translation, nil
			}
		}
	}
	return "", domain.ErrWordNotFound
}

// SaveWords upserts by (category, text), keeping the original position of existing words.
// A term already filed under another category fails the whole batch with domain.ErrDuplicateWord.
func (d *Dictionary) SaveWords(_ context.Context, words []domain.Word) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	owner := make(map[string]string)
	for category, list := range d.byCategory {
		for _, w := range list {
			owner[w.Text] = category
		}
	}
	for _, w := range words {
		if category, ok := owner[w.Text]; ok && category != w.Category {
			return fmt.Errorf("%w: %q in %s and %s", domain.ErrDuplicateWord, w.Text, category, w.Category)
		}
		owner[w.Text] = w.Category
	}

	for _, w := range words {
		list := d.byCategory[w.Category]
		replaced := false
		for i := range list {
			if list[i].Text == w.Text {
				list[i] = w
				replaced = true
				break
			}
		}
		if !replaced {
			list = append(list, w)
		}
		d.byCategory[w.Category] = list
	}
	return nil
}
