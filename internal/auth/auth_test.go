package auth

import (
	"testing"
	"time"

	"project-tracker/internal/entities"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret")
	id := entities.Identity{ID: "u1", Role: entities.RoleManager, EmailDomain: "manager.com"}

	token, err := issuer.Issue(id, time.Hour)
	require.NoError(t, err)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestVerifyRejects(t *testing.T) {
	issuer := NewTokenIssuer("secret")
	id := entities.Identity{ID: "u1", Role: entities.RoleTeamMember}

	_, err := issuer.Verify("")
	require.ErrorIs(t, err, entities.ErrMissingToken)

	_, err = issuer.Verify("not-a-token")
	require.ErrorIs(t, err, entities.ErrAuthentication)

	other, err := NewTokenIssuer("other").Issue(id, time.Hour)
	require.NoError(t, err)
	_, err = issuer.Verify(other)
	require.ErrorIs(t, err, entities.ErrInvalidToken)

	past := NewTokenIssuer("secret")
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := past.Issue(id, time.Hour)
	require.NoError(t, err)
	_, err = issuer.Verify(expired)
	require.ErrorIs(t, err, entities.ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ID: "u1", Role: entities.RoleManager}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Verify(none)
	require.ErrorIs(t, err, entities.ErrInvalidToken)

	_, err = issuer.Issue(id, 0)
	require.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	issuer := NewTokenIssuer("secret")
	token, err := issuer.Issue(entities.Identity{ID: "u1", Role: entities.RoleTeamMember}, time.Hour)
	require.NoError(t, err)

	id, err := Authenticate(issuer, "Bearer "+token)
	require.NoError(t, err)
	require.Equal(t, "u1", id.ID)

	_, err = Authenticate(issuer, "")
	require.ErrorIs(t, err, entities.ErrMissingToken)

	_, err = Authenticate(issuer, "Token "+token)
	require.ErrorIs(t, err, entities.ErrAuthentication)

	_, err = Authenticate(issuer, "Bearer ")
	require.ErrorIs(t, err, entities.ErrAuthentication)
}

func TestRolePredicates(t *testing.T) {
	manager := entities.Identity{ID: "m", Role: entities.RoleManager}
	member := entities.Identity{ID: "u", Role: entities.RoleTeamMember}

	require.NoError(t, RequireRole(manager, entities.RoleManager))
	require.ErrorIs(t, RequireRole(member, entities.RoleManager), entities.ErrForbidden)

	require.NoError(t, RequireAnyRole(member, entities.RoleManager, entities.RoleTeamMember))
	require.ErrorIs(t, RequireAnyRole(member, entities.RoleManager), entities.ErrForbidden)
	require.ErrorIs(t, RequireAnyRole(member), entities.ErrForbidden)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)

	digest, err := h.Hash("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", digest)
	require.True(t, h.Verify("s3cret", digest))
	require.False(t, h.Verify("wrong", digest))

	require.Equal(t, 10, NewBcryptHasher(100).cost)
}
