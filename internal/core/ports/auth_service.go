package ports

import (
	"context"
	"time"
)

// LoginResult is what a successful login hands back to the HTTP layer:
// the user's public identifier, the bearer token, and the cookie expiry.
type LoginResult struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// AuthService implements the register/login/logout flows.
type AuthService interface {
	Register(ctx context.Context, name, password string) error
	Login(ctx context.Context, name, password string, remember bool) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
}
