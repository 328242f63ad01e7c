package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/garmentsource/storefront-gateway/internal/api/metrics"
	"github.com/garmentsource/storefront-gateway/internal/core/domain"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
	"github.com/garmentsource/storefront-gateway/internal/upstream"
)

// SessionService is the single source of truth for who is logged in. It
// holds live sessions in memory (keyed by credential hash) and mirrors every
// change to durable storage, so sessions survive gateway restarts without a
// round of forced re-logins.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session

	repo      ports.SessionRepository
	upstream  ports.Upstream
	jwtSecret string
	log       zerolog.Logger
}

func NewSessionService(repo ports.SessionRepository, up ports.Upstream, jwtSecret string, log zerolog.Logger) *SessionService {
	return &SessionService{
		sessions:  make(map[string]*domain.Session),
		repo:      repo,
		upstream:  up,
		jwtSecret: jwtSecret,
		log:       log,
	}
}

// TokenHash returns the storage key for a bearer credential.
func TokenHash(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Company  string `json:"company,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// authReply is the upstream auth response shape shared by login and register.
type authReply struct {
	Token string `json:"token"`
	User  struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

// Login exchanges credentials with the upstream. On success the full session
// is stored in memory and durable storage before returning; on failure no
// existing state is touched and the error reason distinguishes a rejected
// password from an unreachable backend. No retries.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	body, err := s.upstream.Post(ctx, "/auth/login", "", loginPayload{Email: email, Password: password})
	if err != nil {
		return nil, mapAuthError(err)
	}

	return s.adopt(ctx, body)
}

// Register creates a buyer account upstream; the upstream assigns the BUYER
// role. Same persistence contract as Login.
func (s *SessionService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Session, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	body, err := s.upstream.Post(ctx, "/auth/register", "", registerPayload{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Company:  in.Company,
		Phone:    in.Phone,
	})
	if err != nil {
		return nil, mapAuthError(err)
	}

	return s.adopt(ctx, body)
}

// adopt turns an upstream auth reply into a stored session. The credential
// is verified against the shared signing secret; its exp claim becomes the
// session expiry. A reply that cannot form a complete session is rejected;
// partial sessions are never stored.
func (s *SessionService) adopt(ctx context.Context, body []byte) (*domain.Session, error) {
	var reply authReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: decode auth response: %v", domain.ErrInvalidSession, err)
	}

	expiresAt, err := s.credentialExpiry(reply.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSession, err)
	}

	sess := &domain.Session{
		Identity:   domain.Identity{Name: reply.User.Name, Email: reply.User.Email},
		Role:       domain.Role(strings.ToUpper(reply.User.Role)),
		Credential: reply.Token,
		ExpiresAt:  expiresAt,
	}
	if !sess.Complete() {
		return nil, domain.ErrInvalidSession
	}

	hash := TokenHash(sess.Credential)
	if err := s.repo.Save(ctx, hash, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	if _, exists := s.sessions[hash]; !exists {
		metrics.SessionsActive.Inc()
	}
	s.sessions[hash] = sess
	s.mu.Unlock()

	return sess, nil
}

// credentialExpiry verifies the upstream-issued JWT with the shared secret
// and extracts its expiry. A missing exp claim yields a zero time.
func (s *SessionService) credentialExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return time.Time{}, fmt.Errorf("upstream credential failed verification: %v", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// Logout destroys the session for the given credential. Idempotent: a second
// call, or a call with an unknown credential, succeeds with no effect. No
// network calls.
func (s *SessionService) Logout(ctx context.Context, credential string) error {
	hash := TokenHash(credential)

	s.mu.Lock()
	if _, exists := s.sessions[hash]; exists {
		delete(s.sessions, hash)
		metrics.SessionsActive.Dec()
	}
	s.mu.Unlock()

	if err := s.repo.Delete(ctx, hash); err != nil {
		return fmt.Errorf("remove durable session: %w", err)
	}
	return nil
}

// Lookup returns the live session for a credential. Expired sessions are
// treated as absent and dropped from memory.
func (s *SessionService) Lookup(credential string) (*domain.Session, bool) {
	hash := TokenHash(credential)

	s.mu.RLock()
	sess, ok := s.sessions[hash]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if sess.Expired(time.Now()) {
		s.mu.Lock()
		if cur, still := s.sessions[hash]; still && cur == sess {
			delete(s.sessions, hash)
			metrics.SessionsActive.Dec()
		}
		s.mu.Unlock()
		return nil, false
	}

	return sess, true
}

// Restore loads all unexpired sessions from durable storage into memory.
// Called once at boot before the server accepts traffic, so valid bearer
// credentials keep working across restarts. No network calls.
func (s *SessionService) Restore(ctx context.Context) (int, error) {
	loaded, err := s.repo.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("restore sessions: %w", err)
	}

	s.mu.Lock()
	s.sessions = loaded
	metrics.SessionsActive.Set(float64(len(loaded)))
	s.mu.Unlock()

	return len(loaded), nil
}

// ResolveReturnPath picks the post-login destination. A recorded path owned
// by a role dashboard is honored only when that role matches; paths outside
// the four dashboards (e.g. /account/profile) are honored for any role;
// anything else falls back to the role's default landing.
func (s *SessionService) ResolveReturnPath(returnTo string, role domain.Role) string {
	if returnTo == "" || !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") {
		return role.DefaultLanding()
	}
	if prefix, ok := domain.RolePrefix(returnTo); ok {
		if prefix == role {
			return returnTo
		}
		return role.DefaultLanding()
	}
	return returnTo
}

// mapAuthError converts upstream auth failures into the session error
// taxonomy: wrong password, unknown account, duplicate email, and transport
// failure each surface distinctly so the caller can render them differently.
func mapAuthError(err error) error {
	switch upstream.StatusCode(err) {
	case http.StatusUnauthorized, http.StatusBadRequest:
		return domain.ErrInvalidCredentials
	case http.StatusNotFound:
		return domain.ErrUserNotFound
	case http.StatusConflict:
		return domain.ErrEmailInUse
	}
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
}

var _ ports.SessionStore = (*SessionService)(nil)
