package billing

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pichasafi/internal/domain"
)

// Usage is a point-in-time quota snapshot derived from a user record.
type Usage struct {
	Allowed   bool
	Used      int
	Limit     int
	Remaining int
	Tier      domain.SubscriptionTier
}

// Evaluate computes the usage snapshot for a user record. A nil user (no
// account) is never allowed and reports the "none" tier.
func Evaluate(user *domain.User) Usage {
	if user == nil {
		return Usage{Tier: domain.TierNone}
	}
	used := user.ImagesThisMonth
	limit := user.MonthlyLimit
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Usage{
		Allowed:   used < limit,
		Used:      used,
		Limit:     limit,
		Remaining: remaining,
		Tier:      user.Tier,
	}
}

// Service answers quota questions against the user store.
type Service struct {
	users domain.UserRepository
}

// NewService creates a billing Service.
func NewService(users domain.UserRepository) *Service {
	return &Service{users: users}
}

// Check loads the user by phone and evaluates their quota. A missing user
// yields the nil-user snapshot instead of an error.
func (s *Service) Check(ctx context.Context, phone string) (Usage, error) {
	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Evaluate(nil), nil
		}
		return Usage{}, fmt.Errorf("billing: load user: %w", err)
	}
	return Evaluate(user), nil
}

// Record increments the monthly image counter by exactly one. It is called
// only after a successful enhancement; there is no rollback if delivery of
// the result fails afterwards.
func (s *Service) Record(ctx context.Context, phone string) error {
	if _, err := s.users.IncrementImageCount(ctx, phone); err != nil {
		return fmt.Errorf("billing: record usage: %w", err)
	}
	return nil
}

var titleCaser = cases.Title(language.English)

// UsageMessage renders a human-readable usage status.
func UsageMessage(u Usage) string {
	if u.Tier == domain.TierNone {
		return "No account found. Send any message to get started!"
	}
	return fmt.Sprintf(
		"*Usage this month:*\n"+
			"Images created: %d/%d\n"+
			"Remaining: %d\n"+
			"Plan: %s",
		u.Used, u.Limit, u.Remaining, titleCaser.String(string(u.Tier)),
	)
}

// LimitReachedMessage is shown when a user hits their monthly limit.
func LimitReachedMessage() string {
	return "You've used all your free images this month!\n\n" +
		"Upgrade to continue creating:\n" +
		"*Starter* — 30 images/month — TZS 15,000\n" +
		"*Pro* — 100 images/month — TZS 35,000\n" +
		"*Business* — Unlimited — TZS 75,000\n\n" +
		"Type *subscribe* to upgrade."
}
