package auth

import (
	"fmt"
	"strings"

	"project-tracker/internal/entities"
)

// Verifier decodes a session token.
type Verifier interface {
	Verify(token string) (entities.Identity, error)
}

// Authenticate extracts the bearer token from an Authorization header value and verifies it.
func Authenticate(v Verifier, header string) (entities.Identity, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return entities.Identity{}, entities.ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return entities.Identity{}, fmt.Errorf("%w: authorization header format must be Bearer {token}", entities.ErrAuthentication)
	}
	return v.Verify(strings.TrimSpace(token))
}

// RequireRole fails with ErrForbidden unless id has role.
func RequireRole(id entities.Identity, role entities.Role) error {
	if id.Role != role {
		return fmt.Errorf("%w: role %s required", entities.ErrForbidden, role)
	}
	return nil
}

// RequireAnyRole fails with ErrForbidden unless id has one of roles.
func RequireAnyRole(id entities.Identity, roles ...entities.Role) error {
	for _, r := range roles {
		if id.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s is not allowed", entities.ErrForbidden, id.Role)
}
