// Package token constructs the bearer values embedded in session cookies.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTSigner produces HS256-signed bearer tokens with the claims
// {user: <opaque id>, expired: <unix seconds>}. The signature makes the
// token unguessable; the session store remains the source of truth for
// which tokens are live.
type JWTSigner struct {
	secret []byte
}

func NewJWTSigner(secret string) *JWTSigner {
	return &JWTSigner{secret: []byte(secret)}
}

func (s *JWTSigner) Sign(opaqueUserID string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user":    opaqueUserID,
		"expired": expiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}
