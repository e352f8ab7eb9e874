package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"labbooking/internal/domain"
)

// Claim names issued by the ASP.NET identity stack behind the booking API, alongside the short JWT names.
const (
	claimRoleURI   = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
	claimNameIDURI = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	claimNameURI   = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
)

// ErrNoRole is returned when the token carries no recognizable role claim.
var ErrNoRole = errors.New("token has no known role")

// ViewerFromToken reads the signed-in user's identity from a bearer token.
// The signature is not verified: the backend verifies every request, the console only
// needs the claims to pick role-specific behavior.
func ViewerFromToken(token string) (domain.Viewer, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(token), claims); err != nil {
		return domain.Viewer{}, fmt.Errorf("failed to parse token: %w", err)
	}

	userID := firstString(claims, "sub", "nameid", claimNameIDURI, "userId")
	if userID == "" {
		return domain.Viewer{}, fmt.Errorf("failed to parse token: no subject")
	}
	role, ok := roleFrom(claims)
	if !ok {
		return domain.Viewer{}, ErrNoRole
	}
	return domain.Viewer{
		UserID: userID,
		Name:   firstString(claims, "name", "unique_name", claimNameURI, "email"),
		Role:   role,
	}, nil
}

func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if s, ok := claims[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// roleFrom accepts a single role or a role list; the most privileged known role wins.
func roleFrom(claims jwt.MapClaims) (domain.Role, bool) {
	var names []string
	for _, k := range []string{"role", "roles", claimRoleURI} {
		switch v := claims[k].(type) {
		case string:
			names = append(names, v)
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					names = append(names, s)
				}
			}
		}
	}
	found := map[domain.Role]bool{}
	for _, n := range names {
		if r, ok := domain.ParseRole(n); ok {
			found[r] = true
		}
	}
	for _, r := range []domain.Role{domain.RoleAdmin, domain.RoleLecturer, domain.RoleStudent} {
		if found[r] {
			return r, true
		}
	}
	return "", false
}
