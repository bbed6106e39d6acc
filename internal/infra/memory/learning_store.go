package memory

import (
	"context"
	"sync"

	"kidlingo-service/internal/domain"
)

// LearningStore keeps profiles, roles, progress and rewards in process.
type LearningStore struct {
	mu    sync.Mutex
	users map[string]*userRecord
}

type userRecord struct {
	profile  *domain.UserProfile
	role     domain.UserRole
	progress domain.UserProgress
	rewards  []domain.Reward
}

func NewLearningStore() *LearningStore {
	return &LearningStore{users: make(map[string]*userRecord)}
}

func (s *LearningStore) user(principal string) *userRecord {
	rec, ok := s.users[principal]
	if !ok {
		rec = &userRecord{}
		s.users[principal] = rec
	}
	return rec
}

func (s *LearningStore) Profile(_ context.Context, principal string) (domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[principal]
	if !ok || rec.profile == nil {
		return domain.UserProfile{}, domain.ErrProfileNotFound
	}
	return *rec.profile, nil
}

func (s *LearningStore) SaveProfile(_ context.Context, principal string, profile domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(principal).profile = &profile
	return nil
}

func (s *LearningStore) Role(_ context.Context, principal string) (domain.UserRole, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[principal]
	if !ok || rec.role == "" {
		return "", false, nil
	}
	return rec.role, true, nil
}

func (s *LearningStore) SetRole(_ context.Context, principal string, role domain.UserRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(principal).role = role
	return nil
}

func (s *LearningStore) Progress(_ context.Context, principal string) (domain.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.users[principal]; ok {
		return rec.progress, nil
	}
	return domain.UserProgress{}, nil
}

func (s *LearningStore) Rewards(_ context.Context, principal string) ([]domain.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Reward{}
	if rec, ok := s.users[principal]; ok {
		out = append(out, rec.rewards...)
	}
	return out, nil
}

func (s *LearningStore) RecordLesson(_ context.Context, principal string, points int, reward *domain.Reward) (domain.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.user(principal)
	rec.progress.TotalScore += points
	rec.progress.CompletedLessons++
	if reward != nil {
		rec.rewards = append(rec.rewards, *reward)
		rec.progress.Stars++
	}
	return rec.progress, nil
}

func (s *LearningStore) AddReward(_ context.Context, principal string, reward domain.Reward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.user(principal)
	rec.rewards = append(rec.rewards, reward)
	rec.progress.Stars++
	return nil
}
