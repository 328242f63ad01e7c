package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
)

// stubSessionStore backs the middleware with a fixed credential→session map.
type stubSessionStore struct {
	sessions map[string]*domain.Session
}

func (s *stubSessionStore) Login(context.Context, string, string) (*domain.Session, error) {
	panic("not used")
}

func (s *stubSessionStore) Register(context.Context, ports.RegisterInput) (*domain.Session, error) {
	panic("not used")
}

func (s *stubSessionStore) Logout(context.Context, string) error { return nil }

func (s *stubSessionStore) Lookup(credential string) (*domain.Session, bool) {
	sess, ok := s.sessions[credential]
	return sess, ok
}

func (s *stubSessionStore) Restore(context.Context) (int, error) { return 0, nil }

func (s *stubSessionStore) ResolveReturnPath(returnTo string, role domain.Role) string {
	return role.DefaultLanding()
}

func signToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "ayesha@example.com",
		"role":  "BUYER",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuth_ValidTokenWithLiveSession(t *testing.T) {
	e := echo.New()
	signed := signToken(t, "secret")
	store := &stubSessionStore{sessions: map[string]*domain.Session{
		signed: {
			Identity:   domain.Identity{Name: "Ayesha", Email: "ayesha@example.com"},
			Role:       domain.RoleBuyer,
			Credential: signed,
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth("secret", store)
	handler := mw(func(c echo.Context) error {
		called = true
		sess := SessionFrom(c)
		if sess == nil {
			t.Fatalf("session not injected")
		}
		if sess.Role != domain.RoleBuyer {
			t.Fatalf("unexpected role: %s", sess.Role)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuth_NoHeaderPassesAnonymous(t *testing.T) {
	e := echo.New()
	store := &stubSessionStore{sessions: map[string]*domain.Session{}}

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth("secret", store)
	handler := mw(func(c echo.Context) error {
		called = true
		if SessionFrom(c) != nil {
			t.Fatalf("expected anonymous request")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuth_MalformedHeader(t *testing.T) {
	e := echo.New()
	store := &stubSessionStore{sessions: map[string]*domain.Session{}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Auth("secret", store)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	e := echo.New()
	store := &stubSessionStore{sessions: map[string]*domain.Session{}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Auth("secret", store)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_ValidTokenButLoggedOut(t *testing.T) {
	e := echo.New()
	signed := signToken(t, "secret")
	// The token verifies, but no session exists for it: logged out.
	store := &stubSessionStore{sessions: map[string]*domain.Session{}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Auth("secret", store)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
