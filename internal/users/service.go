package users

import (
	"context"
	"errors"
	"strings"

	"resume-scorer/internal/shared/telemetry"
)

var (
	ErrNotConfigured = errors.New("users service not configured")
	ErrInvalidUser   = errors.New("user id and email are required")
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth records the identity returned by the OAuth provider. The id
// is the owner key for resume history and quota.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return ErrNotConfigured
	}
	user.ID = strings.TrimSpace(user.ID)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.ID == "" || user.Email == "" {
		return ErrInvalidUser
	}
	if user.FullName == "" {
		user.FullName = user.DisplayName()
	}
	if err := s.Repo.Upsert(ctx, user); err != nil {
		telemetry.Error("users.upsert_failed", map[string]any{"user_id": user.ID, "error": err})
		return err
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, ErrNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}
