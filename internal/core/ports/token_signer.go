package ports

import (
	"context"
	"time"

	"github.com/destru/catalog-api/internal/core/domain"
)

// TokenSigner constructs the unguessable bearer value embedded in the
// session cookie. The signing scheme lives at the infrastructure boundary;
// the core only decides which identity and expiry to embed.
type TokenSigner interface {
	Sign(opaqueUserID string, expiresAt time.Time) (string, error)
}

// LoginLimiter throttles repeated login attempts per account name.
type LoginLimiter interface {
	// Allow reports whether another attempt for name is permitted.
	Allow(ctx context.Context, name string) (bool, error)
	// Reset clears the attempt counter after a successful login.
	Reset(ctx context.Context, name string) error
}

// AuditRecorder accepts audit events for asynchronous persistence. Record
// must not block the calling request.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event domain.AuditEvent) error
}
