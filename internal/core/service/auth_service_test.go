package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/destru/catalog-api/internal/core/domain"
	"github.com/destru/catalog-api/pkg/opaqueid"
	"github.com/destru/catalog-api/pkg/passhash"
)

var validDigest = strings.Repeat("ab", 32)
var otherDigest = strings.Repeat("cd", 32)

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int64
	err    error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, name, passwordHash string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if _, exists := r.users[name]; exists {
		return nil, domain.ErrNameExists
	}
	r.nextID++
	u := &domain.User{ID: r.nextID, Name: name, PasswordHash: passwordHash, CreatedAt: time.Now()}
	r.users[name] = u
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByName(_ context.Context, name string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[name]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

type issuedToken struct {
	userID    int64
	token     string
	expiresAt time.Time
}

type stubSessionManager struct {
	issued  []issuedToken
	revoked []string
	err     error
}

func (m *stubSessionManager) Issue(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.issued = append(m.issued, issuedToken{userID: userID, token: token, expiresAt: expiresAt})
	return nil
}

func (m *stubSessionManager) Revoke(_ context.Context, token string) error {
	if m.err != nil {
		return m.err
	}
	m.revoked = append(m.revoked, token)
	return nil
}

type stubSigner struct{}

func (stubSigner) Sign(opaqueUserID string, expiresAt time.Time) (string, error) {
	return fmt.Sprintf("bearer-%s-%d", opaqueUserID, expiresAt.Unix()), nil
}

type stubLimiter struct {
	allow  bool
	resets int
}

func (l *stubLimiter) Allow(context.Context, string) (bool, error) { return l.allow, nil }
func (l *stubLimiter) Reset(context.Context, string) error        { l.resets++; return nil }

func testCodec(t *testing.T) *opaqueid.Codec {
	t.Helper()
	c, err := opaqueid.New(opaqueid.Config{})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return c
}

func testHasher() *passhash.Hasher {
	return passhash.New(passhash.Params{MemoryKiB: 64, Iterations: 1, Parallelism: 1})
}

func newTestAuth(t *testing.T) (*AuthService, *stubUserRepo, *stubSessionManager) {
	t.Helper()
	repo := newStubUserRepo()
	sessions := &stubSessionManager{}
	svc := NewAuthService(AuthDeps{
		Users:    repo,
		Sessions: sessions,
		Hasher:   testHasher(),
		Codec:    testCodec(t),
		Signer:   stubSigner{},
	}, 0, 0, zerolog.Nop())
	return svc, repo, sessions
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo, _ := newTestAuth(t)

	if err := svc.Register(context.Background(), "validuser1", validDigest); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	u := repo.users["validuser1"]
	if u == nil {
		t.Fatalf("user not stored")
	}
	if u.PasswordHash == validDigest {
		t.Fatalf("password digest stored unhashed")
	}
	if !testHasher().Verify(validDigest, u.PasswordHash) {
		t.Fatalf("stored hash does not verify against the digest")
	}
}

func TestAuthService_Register_InvalidName(t *testing.T) {
	svc, repo, _ := newTestAuth(t)

	for _, name := range []string{"", "ab", "has space", "bad!char", strings.Repeat("x", 101)} {
		if err := svc.Register(context.Background(), name, validDigest); !errors.Is(err, domain.ErrInvalidName) {
			t.Fatalf("Register(%q): expected ErrInvalidName, got %v", name, err)
		}
	}
	if len(repo.users) != 0 {
		t.Fatalf("storage touched despite validation failure")
	}
}

func TestAuthService_Register_InvalidPassword(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	for _, pw := range []string{"", "plaintext-password", validDigest[:63], validDigest + "0", strings.Repeat("zz", 32)} {
		if err := svc.Register(context.Background(), "validuser1", pw); !errors.Is(err, domain.ErrInvalidPassword) {
			t.Fatalf("Register with %q: expected ErrInvalidPassword, got %v", pw, err)
		}
	}
}

func TestAuthService_Register_NameExists(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	if err := svc.Register(context.Background(), "validuser1", validDigest); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	if err := svc.Register(context.Background(), "validuser1", otherDigest); !errors.Is(err, domain.ErrNameExists) {
		t.Fatalf("expected ErrNameExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo, sessions := newTestAuth(t)

	if err := svc.Register(context.Background(), "carol", validDigest); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(context.Background(), "carol", validDigest, false)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected a bearer token")
	}

	// The returned id must decode back to the stored numeric id under the
	// user tag.
	decoded, err := testCodec(t).Decode(opaqueid.TagUser, res.UserID)
	if err != nil {
		t.Fatalf("returned id not decodable: %v", err)
	}
	if decoded != repo.users["carol"].ID {
		t.Fatalf("opaque id decodes to %d, want %d", decoded, repo.users["carol"].ID)
	}

	if len(sessions.issued) != 1 {
		t.Fatalf("expected one issued session, got %d", len(sessions.issued))
	}
	if sessions.issued[0].token != res.Token || !sessions.issued[0].expiresAt.Equal(res.ExpiresAt) {
		t.Fatalf("session row does not match login result")
	}
}

func TestAuthService_Login_Expiry(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	if err := svc.Register(context.Background(), "dave", validDigest); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(context.Background(), "dave", validDigest, false)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if d := time.Until(res.ExpiresAt); d < 23*time.Hour || d > 25*time.Hour {
		t.Fatalf("default expiry not ~24h out: %v", d)
	}

	res, err = svc.Login(context.Background(), "dave", validDigest, true)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if d := time.Until(res.ExpiresAt); d < 29*24*time.Hour || d > 31*24*time.Hour {
		t.Fatalf("remember expiry not ~30d out: %v", d)
	}
}

func TestAuthService_Login_EmptyFields(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	if _, err := svc.Login(context.Background(), "", validDigest, false); !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "dave", "", false); !errors.Is(err, domain.ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	if _, err := svc.Login(context.Background(), "ghost", validDigest, false); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _, sessions := newTestAuth(t)
	if err := svc.Register(context.Background(), "erin", validDigest); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), "erin", otherDigest, false); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(sessions.issued) != 0 {
		t.Fatalf("no session may be issued on a failed login")
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	limiter := &stubLimiter{allow: false}
	svc := NewAuthService(AuthDeps{
		Users:    repo,
		Sessions: &stubSessionManager{},
		Hasher:   testHasher(),
		Codec:    testCodec(t),
		Signer:   stubSigner{},
		Limiter:  limiter,
	}, 0, 0, zerolog.Nop())

	if _, err := svc.Login(context.Background(), "frank", validDigest, false); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	// A successful login resets the counter.
	limiter.allow = true
	if err := svc.Register(context.Background(), "frank", validDigest); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "frank", validDigest, false); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if limiter.resets != 1 {
		t.Fatalf("expected one limiter reset, got %d", limiter.resets)
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, sessions := newTestAuth(t)

	if err := svc.Logout(context.Background(), "some-token"); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "some-token" {
		t.Fatalf("expected token revoked, got %v", sessions.revoked)
	}
}

func TestAuthService_Register_StorageFailure(t *testing.T) {
	svc, repo, _ := newTestAuth(t)
	repo.err = errors.New("connection reset")

	err := svc.Register(context.Background(), "validuser1", validDigest)
	if !errors.Is(err, domain.ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}
