package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
	"github.com/garmentsource/storefront-gateway/internal/upstream"
)

const testSecret = "test-secret"

// stubRepo keeps sessions in a map, standing in for the mongo repository.
type stubRepo struct {
	saved   map[string]*domain.Session
	saveErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{saved: make(map[string]*domain.Session)}
}

func (r *stubRepo) Save(_ context.Context, hash string, s *domain.Session) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	clone := *s
	r.saved[hash] = &clone
	return nil
}

func (r *stubRepo) Delete(_ context.Context, hash string) error {
	delete(r.saved, hash)
	return nil
}

func (r *stubRepo) LoadAll(_ context.Context) (map[string]*domain.Session, error) {
	out := make(map[string]*domain.Session, len(r.saved))
	for k, v := range r.saved {
		clone := *v
		out[k] = &clone
	}
	return out, nil
}

// stubUpstream replays a scripted response for every POST.
type stubUpstream struct {
	reply []byte
	err   error
	calls int
}

func (u *stubUpstream) Get(context.Context, string, string) ([]byte, error) {
	panic("not used")
}

func (u *stubUpstream) Post(context.Context, string, string, any) ([]byte, error) {
	u.calls++
	return u.reply, u.err
}

func (u *stubUpstream) Put(context.Context, string, string, any) ([]byte, error) {
	panic("not used")
}

func (u *stubUpstream) Delete(context.Context, string, string) ([]byte, error) {
	panic("not used")
}

func (u *stubUpstream) Download(context.Context, string, string) (io.ReadCloser, string, error) {
	panic("not used")
}

func signedToken(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "ayesha@example.com",
		"role":  role,
		"exp":   time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func authReplyJSON(t *testing.T, token, name, email, role string) []byte {
	t.Helper()
	reply := map[string]any{
		"token": token,
		"user":  map[string]string{"name": name, "email": email, "role": role},
	}
	data, err := json.Marshal(reply)
	if err != nil {
		t.Fatalf("marshal reply: %v", err)
	}
	return data
}

func newService(repo ports.SessionRepository, up ports.Upstream) *SessionService {
	return NewSessionService(repo, up, testSecret, zerolog.Nop())
}

func TestLogin_Success(t *testing.T) {
	token := signedToken(t, "buyer", time.Hour)
	repo := newStubRepo()
	up := &stubUpstream{reply: authReplyJSON(t, token, "Ayesha", "ayesha@example.com", "buyer")}
	svc := newService(repo, up)

	sess, err := svc.Login(context.Background(), "ayesha@example.com", "pass")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if sess.Role != domain.RoleBuyer {
		t.Fatalf("unexpected role: %s", sess.Role)
	}
	if sess.Credential != token {
		t.Fatalf("credential not stored verbatim")
	}
	if sess.ExpiresAt.IsZero() {
		t.Fatalf("expiry not extracted from credential")
	}

	// Persisted durably under the credential hash.
	if _, ok := repo.saved[TokenHash(token)]; !ok {
		t.Fatalf("session not persisted")
	}
	// And immediately live in memory.
	if _, ok := svc.Lookup(token); !ok {
		t.Fatalf("session not in memory")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	up := &stubUpstream{err: &upstream.StatusError{Code: 401, Body: []byte(`{"error":"bad password"}`)}}
	svc := newService(newStubRepo(), up)

	_, err := svc.Login(context.Background(), "ayesha@example.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	up := &stubUpstream{err: &upstream.StatusError{Code: 404}}
	svc := newService(newStubRepo(), up)

	_, err := svc.Login(context.Background(), "nobody@example.com", "pass")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLogin_NetworkErrorIsDistinct(t *testing.T) {
	up := &stubUpstream{err: fmt.Errorf("%w: connection refused", domain.ErrUpstreamUnavailable)}
	svc := newService(newStubRepo(), up)

	_, err := svc.Login(context.Background(), "ayesha@example.com", "pass")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("transport failure must not look like a rejected password")
	}
}

func TestLogin_FailureLeavesExistingStateUntouched(t *testing.T) {
	token := signedToken(t, "buyer", time.Hour)
	repo := newStubRepo()
	up := &stubUpstream{reply: authReplyJSON(t, token, "Ayesha", "ayesha@example.com", "buyer")}
	svc := newService(repo, up)

	if _, err := svc.Login(context.Background(), "ayesha@example.com", "pass"); err != nil {
		t.Fatalf("first login failed: %v", err)
	}

	up.reply = nil
	up.err = &upstream.StatusError{Code: 401}
	if _, err := svc.Login(context.Background(), "other@example.com", "bad"); err == nil {
		t.Fatalf("expected error")
	}

	if _, ok := svc.Lookup(token); !ok {
		t.Fatalf("existing session was dropped by an unrelated failed login")
	}
}

func TestLogin_PartialUpstreamReplyRejected(t *testing.T) {
	token := signedToken(t, "buyer", time.Hour)
	// Role missing: a partial session must never be stored.
	up := &stubUpstream{reply: authReplyJSON(t, token, "Ayesha", "ayesha@example.com", "")}
	repo := newStubRepo()
	svc := newService(repo, up)

	_, err := svc.Login(context.Background(), "ayesha@example.com", "pass")
	if !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("partial session was persisted")
	}
}

func TestLogin_UnverifiableCredentialRejected(t *testing.T) {
	forged := func() string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"email": "ayesha@example.com", "role": "buyer",
		})
		signed, _ := token.SignedString([]byte("wrong-secret"))
		return signed
	}()
	up := &stubUpstream{reply: authReplyJSON(t, forged, "Ayesha", "ayesha@example.com", "buyer")}
	svc := newService(newStubRepo(), up)

	if _, err := svc.Login(context.Background(), "ayesha@example.com", "pass"); !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestRegister_EmailInUse(t *testing.T) {
	up := &stubUpstream{err: &upstream.StatusError{Code: 409}}
	svc := newService(newStubRepo(), up)

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "Ayesha", Email: "ayesha@example.com", Password: "longenough",
	})
	if !errors.Is(err, domain.ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	token := signedToken(t, "buyer", time.Hour)
	repo := newStubRepo()
	up := &stubUpstream{reply: authReplyJSON(t, token, "Ayesha", "ayesha@example.com", "buyer")}
	svc := newService(repo, up)

	if _, err := svc.Login(context.Background(), "ayesha@example.com", "pass"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("second logout not idempotent: %v", err)
	}
	if _, ok := svc.Lookup(token); ok {
		t.Fatalf("session survived logout")
	}
}

func TestLogout_ThenRestoreYieldsAbsentSession(t *testing.T) {
	token := signedToken(t, "buyer", time.Hour)
	repo := newStubRepo()
	up := &stubUpstream{reply: authReplyJSON(t, token, "Ayesha", "ayesha@example.com", "buyer")}
	svc := newService(repo, up)

	if _, err := svc.Login(context.Background(), "ayesha@example.com", "pass"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	// A fresh service over the same durable storage: nothing resurrects.
	restarted := newService(repo, up)
	n, err := restarted.Restore(context.Background())
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 restored sessions, got %d", n)
	}
	if _, ok := restarted.Lookup(token); ok {
		t.Fatalf("stale credential resurrected after logout")
	}
}

func TestRestore_RepopulatesMemory(t *testing.T) {
	token := signedToken(t, "seller", time.Hour)
	repo := newStubRepo()
	up := &stubUpstream{reply: authReplyJSON(t, token, "Marco", "marco@example.com", "seller")}
	svc := newService(repo, up)

	if _, err := svc.Login(context.Background(), "marco@example.com", "pass"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	restarted := newService(repo, up)
	n, err := restarted.Restore(context.Background())
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 restored session, got %d", n)
	}
	sess, ok := restarted.Lookup(token)
	if !ok {
		t.Fatalf("restored session not found")
	}
	if sess.Role != domain.RoleSeller {
		t.Fatalf("unexpected role after restore: %s", sess.Role)
	}
}

func TestLookup_ExpiredSessionIsAbsent(t *testing.T) {
	token := signedToken(t, "buyer", -time.Minute)
	repo := newStubRepo()
	up := &stubUpstream{reply: authReplyJSON(t, token, "Ayesha", "ayesha@example.com", "buyer")}
	svc := newService(repo, up)

	// The upstream would not issue an expired token; simulate one having
	// aged out after login by storing it directly.
	sess := &domain.Session{
		Identity:   domain.Identity{Name: "Ayesha", Email: "ayesha@example.com"},
		Role:       domain.RoleBuyer,
		Credential: token,
		ExpiresAt:  time.Now().Add(-time.Minute),
	}
	svc.sessions[TokenHash(token)] = sess

	if _, ok := svc.Lookup(token); ok {
		t.Fatalf("expired session treated as live")
	}
}

func TestResolveReturnPath(t *testing.T) {
	svc := newService(newStubRepo(), &stubUpstream{})

	cases := []struct {
		name     string
		returnTo string
		role     domain.Role
		want     string
	}{
		{"buyer back to buyer path", "/buyer/orders", domain.RoleBuyer, "/buyer/orders"},
		{"seller login ignores buyer path", "/buyer/orders", domain.RoleSeller, "/seller"},
		{"admin back to admin path", "/admin/users", domain.RoleAdmin, "/admin/users"},
		{"buyer denied admin path", "/admin/users", domain.RoleBuyer, "/buyer"},
		{"shared path honored for any role", "/account/profile", domain.RoleDesigner, "/account/profile"},
		{"empty falls back to landing", "", domain.RoleSeller, "/seller"},
		{"relative path rejected", "buyer/orders", domain.RoleBuyer, "/buyer"},
		{"protocol-relative rejected", "//evil.example.com", domain.RoleBuyer, "/buyer"},
	}
	for _, tc := range cases {
		if got := svc.ResolveReturnPath(tc.returnTo, tc.role); got != tc.want {
			t.Fatalf("%s: ResolveReturnPath(%q, %s) = %q, want %q",
				tc.name, tc.returnTo, tc.role, got, tc.want)
		}
	}
}
