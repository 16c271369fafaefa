package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/shared"
)

// Service wraps authentication and role-resolution rules.
type Service struct {
	repo      Repository
	logger    *slog.Logger
	allowList map[string]struct{}
}

// NewService constructs a Service. adminEmails is the configured
// allow-list of addresses that always resolve to the admin role.
func NewService(repo Repository, logger *slog.Logger, adminEmails []string) *Service {
	allow := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			allow[email] = struct{}{}
		}
	}
	return &Service{repo: repo, logger: logger, allowList: allow}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// ResolveRole determines the effective role for a signed-in user.
// Allow-listed emails are admin without a store lookup. Otherwise the
// role comes from the user record; a missing record or a failed lookup
// degrades to RoleNone and is logged, never surfaced as fatal.
func (s *Service) ResolveRole(ctx context.Context, userID, email string) Role {
	if s.IsAllowListed(email) {
		return RoleAdmin
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("role lookup failed", slog.String("user_id", userID), slog.Any("error", err))
		}
		return RoleNone
	}
	if s.IsAllowListed(user.Email) {
		return RoleAdmin
	}
	return user.Role
}

// IsAllowListed reports whether the email is on the configured admin
// allow-list.
func (s *Service) IsAllowListed(email string) bool {
	_, ok := s.allowList[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// RegisterSession persists the session metadata for auditing.
func (s *Service) RegisterSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
