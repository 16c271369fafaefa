package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/shared"
)

type stubRepo struct {
	byEmail map[string]*User
	byID    map[string]*User
	findErr error
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	u, ok := s.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id string) (*User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	u, ok := s.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthenticate(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*User{
		"active@test.local":   {ID: "u1", Email: "active@test.local", PasswordHash: hashFor(t, "correcthorse"), IsActive: true},
		"inactive@test.local": {ID: "u2", Email: "inactive@test.local", PasswordHash: hashFor(t, "correcthorse"), IsActive: false},
	}}
	svc := NewService(repo, nil, nil)

	user, err := svc.Authenticate(context.Background(), "active@test.local", "correcthorse")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = svc.Authenticate(context.Background(), "active@test.local", "wrongpass")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "missing@test.local", "correcthorse")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	// Deactivated accounts fail the same way as bad credentials.
	_, err = svc.Authenticate(context.Background(), "inactive@test.local", "correcthorse")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestResolveRoleAllowList(t *testing.T) {
	repo := &stubRepo{byID: map[string]*User{
		"u1": {ID: "u1", Email: "boss@test.local", Role: RoleStandard},
	}}
	svc := NewService(repo, nil, []string{" Boss@Test.Local "})

	// The allow-list wins regardless of the stored role, and matching
	// is case-insensitive.
	assert.Equal(t, RoleAdmin, svc.ResolveRole(context.Background(), "u1", "boss@test.local"))
	assert.Equal(t, RoleAdmin, svc.ResolveRole(context.Background(), "u1", "BOSS@TEST.LOCAL"))
}

func TestResolveRoleFromRecord(t *testing.T) {
	repo := &stubRepo{byID: map[string]*User{
		"admin":    {ID: "admin", Email: "a@test.local", Role: RoleAdmin},
		"standard": {ID: "standard", Email: "s@test.local", Role: RoleStandard},
	}}
	svc := NewService(repo, nil, nil)

	assert.Equal(t, RoleAdmin, svc.ResolveRole(context.Background(), "admin", "a@test.local"))
	assert.Equal(t, RoleStandard, svc.ResolveRole(context.Background(), "standard", "s@test.local"))
}

func TestResolveRoleMissingRecord(t *testing.T) {
	svc := NewService(&stubRepo{}, nil, nil)

	assert.Equal(t, RoleNone, svc.ResolveRole(context.Background(), "ghost", "ghost@test.local"))
}

func TestResolveRoleLookupFailureDegrades(t *testing.T) {
	repo := &stubRepo{findErr: errors.New("connection refused")}
	svc := NewService(repo, nil, nil)

	// A store outage must not panic or grant access.
	assert.Equal(t, RoleNone, svc.ResolveRole(context.Background(), "u1", "u1@test.local"))
}

func TestResolveRoleAllowListSurvivesLookupFailure(t *testing.T) {
	repo := &stubRepo{findErr: errors.New("connection refused")}
	svc := NewService(repo, nil, []string{"boss@test.local"})

	assert.Equal(t, RoleAdmin, svc.ResolveRole(context.Background(), "u1", "boss@test.local"))
}
