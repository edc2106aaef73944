package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/destru/catalog-api/internal/metrics"
	"github.com/destru/catalog-api/internal/core/domain"
	"github.com/destru/catalog-api/internal/core/ports"
	"github.com/destru/catalog-api/pkg/opaqueid"
)

const (
	defaultSessionTTL  = 24 * time.Hour
	defaultRememberTTL = 30 * 24 * time.Hour
)

// AuthDeps groups the collaborators of AuthService. Limiter and Audit may be
// nil; the corresponding step is then skipped.
type AuthDeps struct {
	Users    ports.UserRepository
	Sessions ports.SessionManager
	Hasher   ports.PasswordHasher
	Codec    *opaqueid.Codec
	Signer   ports.TokenSigner
	Limiter  ports.LoginLimiter
	Audit    ports.AuditRecorder
}

// AuthService composes the codec, hasher, and session manager into the
// register/login/logout flows.
type AuthService struct {
	deps        AuthDeps
	sessionTTL  time.Duration
	rememberTTL time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

func NewAuthService(deps AuthDeps, sessionTTL, rememberTTL time.Duration, log zerolog.Logger) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	if rememberTTL <= 0 {
		rememberTTL = defaultRememberTTL
	}
	return &AuthService{
		deps:        deps,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
		log:         log,
		now:         time.Now,
	}
}

// Register validates the name and the client-side password digest, then
// creates the credential. Name uniqueness is enforced by the repository.
func (s *AuthService) Register(ctx context.Context, name, password string) error {
	if !domain.ValidName(name) {
		metrics.RegistrationsTotal.WithLabelValues("invalid_name").Inc()
		return domain.ErrInvalidName
	}
	if !domain.ValidPasswordDigest(password) {
		metrics.RegistrationsTotal.WithLabelValues("invalid_password").Inc()
		return domain.ErrInvalidPassword
	}

	hash, err := s.deps.Hasher.Hash(password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: hash password: %v", domain.ErrInternal, err)
	}

	user, err := s.deps.Users.Create(ctx, name, hash)
	if err != nil {
		if errors.Is(err, domain.ErrNameExists) {
			metrics.RegistrationsTotal.WithLabelValues("name_exists").Inc()
			return domain.ErrNameExists
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: create user: %v", domain.ErrInternal, err)
	}

	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	s.record(domain.AuditEvent{Name: name, Action: domain.AuditRegistered, OccurredAt: s.now()})
	s.log.Info().Str("name", name).Int64("user_id", user.ID).Msg("user registered")
	return nil
}

// Login verifies the credential, issues a session token, and returns the
// opaque user id together with the bearer token and its expiry.
func (s *AuthService) Login(ctx context.Context, name, password string, remember bool) (*ports.LoginResult, error) {
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if password == "" {
		return nil, domain.ErrInvalidPassword
	}

	if s.deps.Limiter != nil {
		allowed, err := s.deps.Limiter.Allow(ctx, name)
		if err != nil {
			// The limiter is best-effort: a broken limiter must not lock
			// everyone out.
			s.log.Warn().Err(err).Str("name", name).Msg("login limiter unavailable")
		} else if !allowed {
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.deps.Users.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("not_found").Inc()
			s.record(domain.AuditEvent{Name: name, Action: domain.AuditLoginFailed, OccurredAt: s.now()})
			return nil, domain.ErrUserNotFound
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: find user: %v", domain.ErrInternal, err)
	}

	if !s.deps.Hasher.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("bad_credentials").Inc()
		s.record(domain.AuditEvent{Name: name, Action: domain.AuditLoginFailed, OccurredAt: s.now()})
		return nil, domain.ErrUnauthorized
	}

	opaque, err := s.deps.Codec.Encode(opaqueid.TagUser, user.ID)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: encode user id: %v", domain.ErrInternal, err)
	}

	expiresAt := s.now().Add(s.ttl(remember))

	token, err := s.deps.Signer.Sign(opaque, expiresAt)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: sign token: %v", domain.ErrInternal, err)
	}

	if err := s.deps.Sessions.Issue(ctx, user.ID, token, expiresAt); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if s.deps.Limiter != nil {
		if err := s.deps.Limiter.Reset(ctx, name); err != nil {
			s.log.Warn().Err(err).Str("name", name).Msg("login limiter reset failed")
		}
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	s.record(domain.AuditEvent{Name: name, Action: domain.AuditLoginOK, OccurredAt: s.now()})
	s.log.Info().Str("name", name).Bool("remember", remember).Msg("user logged in")

	return &ports.LoginResult{UserID: opaque, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout revokes the presented token. Revoking an unknown token succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.deps.Sessions.Revoke(ctx, token); err != nil {
		return err
	}
	s.record(domain.AuditEvent{Action: domain.AuditLogout, OccurredAt: s.now()})
	return nil
}

func (s *AuthService) ttl(remember bool) time.Duration {
	if remember {
		return s.rememberTTL
	}
	return s.sessionTTL
}

func (s *AuthService) record(event domain.AuditEvent) {
	if s.deps.Audit != nil {
		s.deps.Audit.Record(event)
	}
}
