package domain

import "time"

// MaxActiveTokens caps how many session tokens one user may hold. Issuing a
// new token evicts the oldest ones beyond the cap.
const MaxActiveTokens = 5

// SessionToken is one active login session. Seq is the insertion sequence
// number; eviction keeps the highest Seq values.
type SessionToken struct {
	Seq       int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
}

// Audit action names recorded by the auth flows.
const (
	AuditRegistered  = "registered"
	AuditLoginOK     = "login_ok"
	AuditLoginFailed = "login_failed"
	AuditLogout      = "logout"
)

// AuditEvent is one entry in the authentication audit trail.
type AuditEvent struct {
	Name       string
	Action     string
	OccurredAt time.Time
}
