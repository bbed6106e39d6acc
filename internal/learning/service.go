package learning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kidlingo-service/internal/auth"
	"kidlingo-service/internal/domain"
	"kidlingo-service/internal/querycache"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const defaultLanguage = "Spanish"

// Service implements the backend operations behind the quiz: profiles, roles,
// vocabulary, answer checks, lesson completion, progress and rewards.
type Service struct {
	store    Store
	dict     Dictionary
	vocab    VocabularyRepository
	queries  querycache.Store
	admins   map[string]struct{}
	validate *validator.Validate
	log      *zap.Logger
}

// NewService wires the backend. queries is the client-side query cache whose
// word lists are dropped on seeding; nil when no client caches reads.
func NewService(store Store, dict Dictionary, vocab VocabularyRepository, queries querycache.Store, admins []string, log *zap.Logger) *Service {
	set := make(map[string]struct{}, len(admins))
	for _, a := range admins {
		set[a] = struct{}{}
	}
	return &Service{
		store:    store,
		dict:     dict,
		vocab:    vocab,
		queries:  queries,
		admins:   set,
		validate: validator.New(),
		log:      log,
	}
}

func (s *Service) Categories(context.Context) []domain.Category {
	out := make([]domain.Category, len(Categories))
	copy(out, Categories)
	return out
}

// GetWordsByCategory returns an empty list for anything outside Categories.
func (s *Service) GetWordsByCategory(ctx context.Context, category string) ([]domain.Word, error) {
	if !IsCategory(category) {
		return []domain.Word{}, nil
	}
	words, err := s.vocab.WordsByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("words for %q: %w", category, err)
	}
	return words, nil
}

// CheckQuizAnswer is the authoritative correctness check. Unknown words are never correct.
func (s *Service) CheckQuizAnswer(ctx context.Context, caller auth.Identity, word, translation string) (bool, error) {
	if !caller.Authenticated() {
		return false, domain.ErrUnauthorized
	}
	want, err := s.dict.TranslationOf(ctx, word)
	if errors.Is(err, domain.ErrWordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check answer: %w", err)
	}
	return want == translation, nil
}

// CompleteLesson books a finished quiz and issues the matching reward.
func (s *Service) CompleteLesson(ctx context.Context, caller auth.Identity, points int) error {
	if !caller.Authenticated() {
		return domain.ErrUnauthorized
	}
	if points < 0 {
		return domain.ErrInvalidScore
	}
	var reward *domain.Reward
	if r, ok := RewardFor(points); ok {
		reward = &r
	}
	progress, err := s.store.RecordLesson(ctx, caller.Principal, points, reward)
	if err != nil {
		return fmt.Errorf("complete lesson: %w", err)
	}
	fields := []zap.Field{
		zap.String("principal", caller.Principal),
		zap.Int("points", points),
		zap.Int("total_score", progress.TotalScore),
	}
	if reward != nil {
		fields = append(fields, zap.String("reward", string(*reward)))
	}
	s.log.Info("lesson completed", fields...)
	return nil
}

// RewardFor maps lesson points to a reward; low scores earn none.
func RewardFor(points int) (domain.Reward, bool) {
	switch {
	case points >= 50:
		return domain.RewardGoldStar, true
	case points >= 30:
		return domain.RewardSilverStar, true
	case points >= 10:
		return domain.RewardBronzeStar, true
	}
	return "", false
}

func (s *Service) GetProgress(ctx context.Context, caller auth.Identity) (domain.UserProgress, error) {
	if !caller.Authenticated() {
		return domain.UserProgress{}, domain.ErrUnauthorized
	}
	return s.store.Progress(ctx, caller.Principal)
}

func (s *Service) GetRewards(ctx context.Context, caller auth.Identity) ([]domain.Reward, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	return s.store.Rewards(ctx, caller.Principal)
}

func (s *Service) GetUserProgress(ctx context.Context, caller auth.Identity, user string) (domain.UserProgress, error) {
	if err := s.requireSelfOrAdmin(ctx, caller, user); err != nil {
		return domain.UserProgress{}, err
	}
	return s.store.Progress(ctx, user)
}

func (s *Service) GetUserRewards(ctx context.Context, caller auth.Identity, user string) ([]domain.Reward, error) {
	if err := s.requireSelfOrAdmin(ctx, caller, user); err != nil {
		return nil, err
	}
	return s.store.Rewards(ctx, user)
}

// GetCallerUserProfile returns nil when the caller has not set up a profile.
func (s *Service) GetCallerUserProfile(ctx context.Context, caller auth.Identity) (*domain.UserProfile, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	return s.profile(ctx, caller.Principal)
}

func (s *Service) GetUserProfile(ctx context.Context, caller auth.Identity, user string) (*domain.UserProfile, error) {
	if err := s.requireSelfOrAdmin(ctx, caller, user); err != nil {
		return nil, err
	}
	return s.profile(ctx, user)
}

func (s *Service) profile(ctx context.Context, principal string) (*domain.UserProfile, error) {
	p, err := s.store.Profile(ctx, principal)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) SaveCallerUserProfile(ctx context.Context, caller auth.Identity, profile domain.UserProfile) error {
	if !caller.Authenticated() {
		return domain.ErrUnauthorized
	}
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.PreferredLanguage == "" {
		profile.PreferredLanguage = defaultLanguage
	}
	if err := s.validate.Struct(profile); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidProfile, err)
	}
	return s.store.SaveProfile(ctx, caller.Principal, profile)
}

func (s *Service) GetCallerUserRole(ctx context.Context, caller auth.Identity) (domain.UserRole, error) {
	if !caller.Authenticated() {
		return domain.RoleGuest, nil
	}
	if _, ok := s.admins[caller.Principal]; ok {
		return domain.RoleAdmin, nil
	}
	role, ok, err := s.store.Role(ctx, caller.Principal)
	if err != nil {
		return "", err
	}
	if !ok {
		return domain.RoleUser, nil
	}
	return role, nil
}

func (s *Service) IsCallerAdmin(ctx context.Context, caller auth.Identity) (bool, error) {
	role, err := s.GetCallerUserRole(ctx, caller)
	if err != nil {
		return false, err
	}
	return role == domain.RoleAdmin, nil
}

func (s *Service) AssignCallerUserRole(ctx context.Context, caller auth.Identity, user string, role domain.UserRole) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	if !role.Valid() || user == "" {
		return domain.ErrInvalidRole
	}
	return s.store.SetRole(ctx, user, role)
}

func (s *Service) AwardReward(ctx context.Context, caller auth.Identity, user string, reward domain.Reward) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	if !reward.Valid() || user == "" {
		return domain.ErrInvalidReward
	}
	return s.store.AddReward(ctx, user, reward)
}

// InitializeVocabulary seeds the default words. Admins only.
func (s *Service) InitializeVocabulary(ctx context.Context, caller auth.Identity) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	return s.SeedVocabulary(ctx)
}

// SeedVocabulary writes the default words and drops cached category lists. Idempotent.
func (s *Service) SeedVocabulary(ctx context.Context) error {
	words := DefaultVocabulary()
	if err := s.dict.SaveWords(ctx, words); err != nil {
		return fmt.Errorf("seed vocabulary: %w", err)
	}
	keys := make([]string, 0, len(Categories))
	for _, c := range Categories {
		if err := s.vocab.Invalidate(ctx, c.ID); err != nil {
			s.log.Warn("vocabulary cache invalidation failed", zap.String("category", c.ID), zap.Error(err))
		}
		keys = append(keys, WordsKey(c.ID))
	}
	if s.queries != nil {
		if err := s.queries.Invalidate(ctx, keys...); err != nil {
			s.log.Warn("query cache invalidation failed", zap.Error(err))
		}
	}
	s.log.Info("vocabulary initialized", zap.Int("words", len(words)))
	return nil
}

func (s *Service) requireAdmin(ctx context.Context, caller auth.Identity) error {
	if !caller.Authenticated() {
		return domain.ErrUnauthorized
	}
	admin, err := s.IsCallerAdmin(ctx, caller)
	if err != nil {
		return err
	}
	if !admin {
		return domain.ErrForbidden
	}
	return nil
}

func (s *Service) requireSelfOrAdmin(ctx context.Context, caller auth.Identity, user string) error {
	if !caller.Authenticated() {
		return domain.ErrUnauthorized
	}
	if caller.Principal == user {
		return nil
	}
	return s.requireAdmin(ctx, caller)
}
