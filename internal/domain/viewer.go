package domain

import (
	"context"
	"strings"
)

// Role is the signed-in user's application role.
type Role string

const (
	RoleStudent  Role = "Student"
	RoleLecturer Role = "Lecturer"
	RoleAdmin    Role = "Admin"
)

// ParseRole parses a role name case-insensitively. Unknown names are rejected.
func ParseRole(s string) (Role, bool) {
	for _, r := range []Role{RoleStudent, RoleLecturer, RoleAdmin} {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, true
		}
	}
	return "", false
}

// CanReviewBookings reports whether the role may approve or reject bookings.
func (r Role) CanReviewBookings() bool {
	return r == RoleLecturer || r == RoleAdmin
}

// Viewer is the signed-in user the console acts for.
type Viewer struct {
	UserID string
	Name   string
	Role   Role
}

// TokenSource supplies bearer tokens. Storage of tokens lives outside this module.
type TokenSource interface {
	// Token returns the current access token.
	Token(ctx context.Context) (string, error)
	// Refresh obtains a new access token, e.g. by exchanging a refresh token.
	Refresh(ctx context.Context) (string, error)
}
