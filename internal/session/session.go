// Package session resolves the caller's identity from a JWT: a signed-in
// user (possibly admin) or a guest session. Requests without a usable
// token get a fresh guest identity so cart operations always have an
// owner.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nishkarsh/go-shop-api/internal/cart"
)

type Identity interface {
	CartOwner() cart.Owner
	isIdentity()
}

type AuthenticatedUser struct {
	UserID string
	Admin  bool
}

func (u AuthenticatedUser) CartOwner() cart.Owner { return cart.UserOwner(u.UserID) }
func (AuthenticatedUser) isIdentity()             {}

type GuestSession struct {
	SessionID string
}

func (g GuestSession) CartOwner() cart.Owner { return cart.GuestOwner(g.SessionID) }
func (GuestSession) isIdentity()             {}

type claims struct {
	UID   string `json:"uid"`
	Admin bool   `json:"admin,omitempty"`
	Typ   string `json:"typ"` // user | guest
	jwt.RegisteredClaims
}

type Manager struct {
	Secret []byte
}

// Parse validates the token and returns the identity it carries.
func (m *Manager) Parse(token string) (Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if c.Typ == "guest" {
		return GuestSession{SessionID: c.UID}, nil
	}
	return AuthenticatedUser{UserID: c.UID, Admin: c.Admin}, nil
}

// IssueGuest mints a guest identity and its token.
func (m *Manager) IssueGuest() (GuestSession, string, error) {
	g := GuestSession{SessionID: uuid.NewString()}
	c := claims{
		UID: g.SessionID,
		Typ: "guest",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.Secret)
	return g, tok, err
}
