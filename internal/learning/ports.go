package learning

import (
	"context"

	"kidlingo-service/internal/domain"
)

// Store persists per-user learning data.
type Store interface {
	// Profile returns domain.ErrProfileNotFound when the user has none yet.
	Profile(ctx context.Context, principal string) (domain.UserProfile, error)
	SaveProfile(ctx context.Context, principal string, profile domain.UserProfile) error
	// Role reports the stored role; ok is false when none was assigned.
	Role(ctx context.Context, principal string) (role domain.UserRole, ok bool, err error)
	SetRole(ctx context.Context, principal string, role domain.UserRole) error
	Progress(ctx context.Context, principal string) (domain.UserProgress, error)
	Rewards(ctx context.Context, principal string) ([]domain.Reward, error)
	// RecordLesson adds points and one completed lesson, plus reward when non-nil, atomically.
	RecordLesson(ctx context.Context, principal string, points int, reward *domain.Reward) (domain.UserProgress, error)
	AddReward(ctx context.Context, principal string, reward domain.Reward) error
}

// Dictionary is the authoritative vocabulary.
type Dictionary interface {
	// TranslationOf returns domain.ErrWordNotFound for unknown terms.
	TranslationOf(ctx context.Context, text string) (string, error)
	SaveWords(ctx context.Context, words []domain.Word) error
}

// VocabularyRepository serves category word lists, usually from a cache.
type VocabularyRepository interface {
	WordsByCategory(ctx context.Context, category string) ([]domain.Word, error)
	Invalidate(ctx context.Context, category string) error
}
