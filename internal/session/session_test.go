package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestRoundTrip(t *testing.T) {
	m := &Manager{Secret: []byte("test-secret")}
	g, tok, err := m.IssueGuest()
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	id, err := m.Parse(tok)
	require.NoError(t, err)
	got, ok := id.(GuestSession)
	require.True(t, ok)
	assert.Equal(t, g.SessionID, got.SessionID)
	assert.Equal(t, "guest:"+g.SessionID, string(got.CartOwner()))
}

func TestParseUserToken(t *testing.T) {
	m := &Manager{Secret: []byte("test-secret")}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UID: "u-1", Admin: true, Typ: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(m.Secret)
	require.NoError(t, err)

	id, err := m.Parse(tok)
	require.NoError(t, err)
	u, ok := id.(AuthenticatedUser)
	require.True(t, ok)
	assert.Equal(t, "u-1", u.UserID)
	assert.True(t, u.Admin)
	assert.Equal(t, "user:u-1", string(u.CartOwner()))
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := &Manager{Secret: []byte("a")}
	_, tok, err := issuer.IssueGuest()
	require.NoError(t, err)

	verifier := &Manager{Secret: []byte("b")}
	_, err = verifier.Parse(tok)
	assert.Error(t, err)
}
