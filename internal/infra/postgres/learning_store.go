package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kidlingo-service/internal/domain"

	"github.com/uptrace/bun"
)

type profileRow struct {
	bun.BaseModel `bun:"table:user_profiles"`

	Principal         string `bun:"principal,pk"`
	Name              string `bun:"name,notnull"`
	PreferredLanguage string `bun:"preferred_language,notnull"`
	Age               *int   `bun:"age"`
}

type roleRow struct {
	bun.BaseModel `bun:"table:user_roles"`

	Principal string `bun:"principal,pk"`
	Role      string `bun:"role,notnull"`
}

type progressRow struct {
	bun.BaseModel `bun:"table:user_progress,alias:up"`

	Principal        string `bun:"principal,pk"`
	TotalScore       int    `bun:"total_score,notnull"`
	Stars            int    `bun:"stars,notnull"`
	CompletedLessons int    `bun:"completed_lessons,notnull"`
}

type rewardRow struct {
	bun.BaseModel `bun:"table:user_rewards"`

	ID        int64  `bun:"id,pk,autoincrement"`
	Principal string `bun:"principal,notnull"`
	Reward    string `bun:"reward,notnull"`
}

// LearningStore persists profiles, roles, progress and rewards with bun.
type LearningStore struct {
	db *bun.DB
}

func NewLearningStore(db *bun.DB) *LearningStore {
	return &LearningStore{db: db}
}

func (s *LearningStore) Profile(ctx context.Context, principal string) (domain.UserProfile, error) {
	var row profileRow
	err := s.db.NewSelect().Model(&row).Where("principal = ?", principal).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProfile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("select profile: %w", err)
	}
	return domain.UserProfile{Name: row.Name, PreferredLanguage: row.PreferredLanguage, Age: row.Age}, nil
}

func (s *LearningStore) SaveProfile(ctx context.Context, principal string, profile domain.UserProfile) error {
	row := profileRow{
		Principal:         principal,
		Name:              profile.Name,
		PreferredLanguage: profile.PreferredLanguage,
		Age:               profile.Age,
	}
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (principal) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("preferred_language = EXCLUDED.preferred_language").
		Set("age = EXCLUDED.age").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *LearningStore) Role(ctx context.Context, principal string) (domain.UserRole, bool, error) {
	var row roleRow
	err := s.db.NewSelect().Model(&row).Where("principal = ?", principal).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select role: %w", err)
	}
	return domain.UserRole(row.Role), true, nil
}

func (s *LearningStore) SetRole(ctx context.Context, principal string, role domain.UserRole) error {
	row := roleRow{Principal: principal, Role: string(role)}
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (principal) DO UPDATE").
		Set("role = EXCLUDED.role").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save role: %w", err)
	}
	return nil
}

func (s *LearningStore) Progress(ctx context.Context, principal string) (domain.UserProgress, error) {
	var row progressRow
	err := s.db.NewSelect().Model(&row).Where("principal = ?", principal).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProgress{}, nil
	}
	if err != nil {
		return domain.UserProgress{}, fmt.Errorf("select progress: %w", err)
	}
	return row.toDomain(), nil
}

func (s *LearningStore) Rewards(ctx context.Context, principal string) ([]domain.Reward, error) {
	var rows []rewardRow
	err := s.db.NewSelect().Model(&rows).Where("principal = ?", principal).OrderExpr("id ASC").Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("select rewards: %w", err)
	}
	out := make([]domain.Reward, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Reward(r.Reward))
	}
	return out, nil
}

// RecordLesson bumps progress and stores the reward in one transaction.
func (s *LearningStore) RecordLesson(ctx context.Context, principal string, points int, reward *domain.Reward) (domain.UserProgress, error) {
	row := progressRow{Principal: principal, TotalScore: points, CompletedLessons: 1}
	if reward != nil {
		row.Stars = 1
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&row).
			On("CONFLICT (principal) DO UPDATE").
			Set("total_score = up.total_score + EXCLUDED.total_score").
			Set("stars = up.stars + EXCLUDED.stars").
			Set("completed_lessons = up.completed_lessons + EXCLUDED.completed_lessons").
			Returning("*").
			Exec(ctx)
		if err != nil {
			return err
		}
		if reward == nil {
			return nil
		}
		_, err = tx.NewInsert().Model(&rewardRow{Principal: principal, Reward: string(*reward)}).Exec(ctx)
		return err
	})
	if err != nil {
		return domain.UserProgress{}, fmt.Errorf("record lesson: %w", err)
	}
	return row.toDomain(), nil
}

func (s *LearningStore) AddReward(ctx context.Context, principal string, reward domain.Reward) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&rewardRow{Principal: principal, Reward: string(reward)}).Exec(ctx); err != nil {
			return fmt.Errorf("insert reward: %w", err)
		}
		_, err := tx.NewInsert().Model(&progressRow{Principal: principal, Stars: 1}).
			On("CONFLICT (principal) DO UPDATE").
			Set("stars = up.stars + 1").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("bump stars: %w", err)
		}
		return nil
	})
}

func (r progressRow) toDomain() domain.UserProgress {
	return domain.UserProgress{
		TotalScore:       r.TotalScore,
		Stars:            r.Stars,
		CompletedLessons: r.CompletedLessons,
	}
}
