package domain

import (
	"errors"
	"regexp"
	"time"
)

// User models a registered account. ID is the numeric primary key; it never
// leaves the service unencoded (see pkg/opaqueid).
type User struct {
	ID           int64     `json:"-"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

var ErrInvalidName = errors.New("invalid name")
var ErrInvalidPassword = errors.New("invalid password")
var ErrNameExists = errors.New("name already exists")
var ErrUnauthorized = errors.New("unauthorized")
var ErrUserNotFound = errors.New("user not found")
var ErrTooManyAttempts = errors.New("too many login attempts")
var ErrInternal = errors.New("internal error")

var (
	nameRe = regexp.MustCompile(`^[0-9a-zA-Z_-]{3,100}$`)
	// Clients pre-hash the raw password into a 64-digit hex string before
	// transmission; that digest is what the server hashes and stores.
	passwordRe = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)
)

// ValidName reports whether name satisfies the registration pattern:
// 3–100 characters from [0-9a-zA-Z_-].
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

// ValidPasswordDigest reports whether s is a 64-digit hexadecimal string.
func ValidPasswordDigest(s string) bool {
	return passwordRe.MatchString(s)
}
