package users

import (
	"context"
	"fmt"
)

// RepositoryPort defines data access methods for user management.
type RepositoryPort interface {
	List(ctx context.Context, req ListUsersRequest) ([]User, int, error)
	Get(ctx context.Context, id string) (*User, error)
	SetRole(ctx context.Context, id, role string) error
	SetActive(ctx context.Context, id string, active bool) error
}

var validRoles = map[string]struct{}{
	"admin":    {},
	"standard": {},
	"":         {},
}

// Service handles user management logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns users matching the request.
func (s *Service) List(ctx context.Context, req ListUsersRequest) ([]User, int, error) {
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	return s.repo.List(ctx, req)
}

// Get fetches one user.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.Get(ctx, id)
}

// SetRole updates a user's stored role. Allow-listed emails resolve to
// admin in the guard regardless of what is stored here.
func (s *Service) SetRole(ctx context.Context, id, role string) (*User, error) {
	if _, ok := validRoles[role]; !ok {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	if err := s.repo.SetRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// SetActive enables or disables a user account.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (*User, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
