package auth

import "time"

// Role classifies what a signed-in user may do in the dashboard.
type Role string

const (
	// RoleAdmin grants access to every management screen.
	RoleAdmin Role = "admin"
	// RoleStandard is a regular app user with no dashboard access.
	RoleStandard Role = "standard"
	// RoleNone means no role record exists, or the lookup failed.
	RoleNone Role = ""
)

// User represents an account known to the dashboard.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PhotoURL     string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
