package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/destru/catalog-api/internal/metrics"
	"github.com/destru/catalog-api/internal/core/domain"
	"github.com/destru/catalog-api/internal/core/ports"
)

// SessionManager owns the session-token lifecycle: it issues tokens bound to
// a user and expiry, lazily garbage-collects expired tokens, enforces the
// per-user cap, and revokes individual tokens.
//
// There is no background sweeper; expired tokens are removed at the user's
// next issue. Under concurrent logins for the same user the cap can be
// transiently exceeded until the next issue runs GC again — each individual
// issue is still atomic.
type SessionManager struct {
	store ports.SessionStore
	log   zerolog.Logger
	now   func() time.Time
}

func NewSessionManager(store ports.SessionStore, log zerolog.Logger) *SessionManager {
	return &SessionManager{store: store, log: log, now: time.Now}
}

// Issue stores token for userID inside one transaction, in order:
//  1. delete the user's tokens already expired at the time of the call;
//  2. delete the user's remaining tokens beyond the (cap-1) newest, so the
//     user holds at most domain.MaxActiveTokens after the insert;
//  3. insert the new row.
//
// A failure at any step aborts the whole transaction.
func (m *SessionManager) Issue(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	var expired, evicted int64

	err := m.store.InTransaction(ctx, func(ctx context.Context, tx ports.SessionTx) error {
		var err error
		if expired, err = tx.DeleteExpired(ctx, userID, m.now()); err != nil {
			return fmt.Errorf("delete expired tokens: %w", err)
		}
		if evicted, err = tx.EvictOverCap(ctx, userID, domain.MaxActiveTokens-1); err != nil {
			return fmt.Errorf("evict over cap: %w", err)
		}
		if err = tx.Insert(ctx, domain.SessionToken{
			UserID:    userID,
			Token:     token,
			ExpiresAt: expiresAt,
		}); err != nil {
			return fmt.Errorf("insert token: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: issue session: %v", domain.ErrInternal, err)
	}

	metrics.TokensIssuedTotal.Inc()
	metrics.TokensRetiredTotal.WithLabelValues("expired").Add(float64(expired))
	metrics.TokensRetiredTotal.WithLabelValues("evicted").Add(float64(evicted))

	if expired > 0 || evicted > 0 {
		m.log.Debug().
			Int64("user_id", userID).
			Int64("expired", expired).
			Int64("evicted", evicted).
			Msg("retired session tokens on issue")
	}
	return nil
}

// Revoke deletes the row matching token. Revoking an absent token is a
// no-op; revoke is safe under arbitrary concurrency.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	if err := m.store.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("%w: revoke session: %v", domain.ErrInternal, err)
	}
	metrics.TokensRetiredTotal.WithLabelValues("revoked").Inc()
	return nil
}
