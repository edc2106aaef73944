package ports

import (
	"context"
	"time"

	"github.com/destru/catalog-api/internal/core/domain"
)

// SessionTx exposes the session-table mutations available inside one
// transaction. Implementations must apply them only if the whole
// transaction commits.
type SessionTx interface {
	// DeleteExpired removes the user's tokens whose expiry is before now
	// and returns how many were removed.
	DeleteExpired(ctx context.Context, userID int64, now time.Time) (int64, error)

	// EvictOverCap removes all of the user's tokens except the keep most
	// recently inserted (highest sequence first) and returns how many were
	// removed.
	EvictOverCap(ctx context.Context, userID int64, keep int) (int64, error)

	// Insert stores a new token row. The implementation assigns Seq.
	Insert(ctx context.Context, token domain.SessionToken) error
}

// SessionStore owns the session-token table.
type SessionStore interface {
	// InTransaction runs fn atomically: either every mutation made through
	// the SessionTx is applied, or none is.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx SessionTx) error) error

	// DeleteByToken removes the single row matching token. Deleting an
	// absent token is not an error.
	DeleteByToken(ctx context.Context, token string) error
}

// SessionManager issues and retires session tokens (see the service
// implementation for the GC/eviction ordering guarantees).
type SessionManager interface {
	Issue(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	Revoke(ctx context.Context, token string) error
}
