// Package client binds the learning service to a single caller and fronts its
// reads with a query cache that is invalidated after writes.
package client

import (
	"context"

	"kidlingo-service/internal/auth"
	"kidlingo-service/internal/domain"
	"kidlingo-service/internal/learning"
	"kidlingo-service/internal/querycache"

	"golang.org/x/sync/errgroup"
)

// Client is the remote service client for one identity.
type Client struct {
	svc    *learning.Service
	cache  querycache.Store
	caller auth.Identity
}

func New(svc *learning.Service, cache querycache.Store, caller auth.Identity) *Client {
	return &Client{svc: svc, cache: cache, caller: caller}
}

func (c *Client) Caller() auth.Identity { return c.caller }

func (c *Client) Categories(ctx context.Context) []domain.Category {
	return c.svc.Categories(ctx)
}

// WordsByCategory caches known categories only; anything else is empty and never stored.
func (c *Client) WordsByCategory(ctx context.Context, category string) ([]domain.Word, error) {
	if !learning.IsCategory(category) {
		return []domain.Word{}, nil
	}
	return querycache.Fetch(ctx, c.cache, learning.WordsKey(category), func(ctx context.Context) ([]domain.Word, error) {
		return c.svc.GetWordsByCategory(ctx, category)
	})
}

func (c *Client) Progress(ctx context.Context) (domain.UserProgress, error) {
	if !c.caller.Authenticated() {
		return domain.UserProgress{}, domain.ErrUnauthorized
	}
	return querycache.Fetch(ctx, c.cache, querycache.Key("progress", c.caller.Principal), func(ctx context.Context) (domain.UserProgress, error) {
		return c.svc.GetProgress(ctx, c.caller)
	})
}

func (c *Client) Rewards(ctx context.Context) ([]domain.Reward, error) {
	if !c.caller.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	return querycache.Fetch(ctx, c.cache, querycache.Key("rewards", c.caller.Principal), func(ctx context.Context) ([]domain.Reward, error) {
		return c.svc.GetRewards(ctx, c.caller)
	})
}

// Profile returns nil when the caller has no profile yet.
func (c *Client) Profile(ctx context.Context) (*domain.UserProfile, error) {
	if !c.caller.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	return querycache.Fetch(ctx, c.cache, querycache.Key("currentUserProfile", c.caller.Principal), func(ctx context.Context) (*domain.UserProfile, error) {
		return c.svc.GetCallerUserProfile(ctx, c.caller)
	})
}

func (c *Client) SaveProfile(ctx context.Context, profile domain.UserProfile) error {
	if err := c.svc.SaveCallerUserProfile(ctx, c.caller, profile); err != nil {
		return err
	}
	c.invalidate(ctx, querycache.Key("currentUserProfile", c.caller.Principal))
	return nil
}

func (c *Client) Role(ctx context.Context) (domain.UserRole, error) {
	return c.svc.GetCallerUserRole(ctx, c.caller)
}

// CheckQuizAnswer asks the service; results are never cached.
func (c *Client) CheckQuizAnswer(ctx context.Context, word, translation string) (bool, error) {
	return c.svc.CheckQuizAnswer(ctx, c.caller, word, translation)
}

// CompleteLesson reports a finished quiz and drops the caller's progress and rewards.
func (c *Client) CompleteLesson(ctx context.Context, points int) error {
	if err := c.svc.CompleteLesson(ctx, c.caller, points); err != nil {
		return err
	}
	c.invalidateUser(ctx, c.caller.Principal)
	return nil
}

func (c *Client) UserProgress(ctx context.Context, user string) (domain.UserProgress, error) {
	return c.svc.GetUserProgress(ctx, c.caller, user)
}

func (c *Client) UserRewards(ctx context.Context, user string) ([]domain.Reward, error) {
	return c.svc.GetUserRewards(ctx, c.caller, user)
}

func (c *Client) UserProfile(ctx context.Context, user string) (*domain.UserProfile, error) {
	return c.svc.GetUserProfile(ctx, c.caller, user)
}

func (c *Client) AssignRole(ctx context.Context, user string, role domain.UserRole) error {
	return c.svc.AssignCallerUserRole(ctx, c.caller, user, role)
}

func (c *Client) AwardReward(ctx context.Context, user string, reward domain.Reward) error {
	if err := c.svc.AwardReward(ctx, c.caller, user, reward); err != nil {
		return err
	}
	c.invalidateUser(ctx, user)
	return nil
}

// InitializeVocabulary seeds the dictionary; the service drops the cached word lists.
func (c *Client) InitializeVocabulary(ctx context.Context) error {
	return c.svc.InitializeVocabulary(ctx, c.caller)
}

type Dashboard struct {
	Categories []domain.Category    `json:"categories"`
	Role       domain.UserRole      `json:"role"`
	Profile    *domain.UserProfile  `json:"profile,omitempty"`
	Progress   *domain.UserProgress `json:"progress,omitempty"`
	Rewards    []domain.Reward      `json:"rewards,omitempty"`
}

// Dashboard loads the caller's home screen. Guests only get categories and role.
func (c *Client) Dashboard(ctx context.Context) (Dashboard, error) {
	d := Dashboard{Categories: c.Categories(ctx), Role: domain.RoleGuest}
	if !c.caller.Authenticated() {
		return d, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		role, err := c.Role(gctx)
		d.Role = role
		return err
	})
	g.Go(func() error {
		profile, err := c.Profile(gctx)
		d.Profile = profile
		return err
	})
	g.Go(func() error {
		progress, err := c.Progress(gctx)
		d.Progress = &progress
		return err
	})
	g.Go(func() error {
		rewards, err := c.Rewards(gctx)
		d.Rewards = rewards
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

func (c *Client) invalidateUser(ctx context.Context, principal string) {
	c.invalidate(ctx,
		querycache.Key("progress", principal),
		querycache.Key("rewards", principal),
	)
}

// invalidate is best-effort: the write already succeeded and cached entries expire on their own.
func (c *Client) invalidate(ctx context.Context, keys ...string) {
	_ = c.cache.Invalidate(ctx, keys...)
}
