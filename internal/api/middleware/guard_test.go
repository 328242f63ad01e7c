package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
)

func buyerSession() *domain.Session {
	return &domain.Session{
		Identity:   domain.Identity{Name: "Ayesha", Email: "ayesha@example.com"},
		Role:       domain.RoleBuyer,
		Credential: "token-buyer",
	}
}

func TestDecide_AnonymousAlwaysRedirectsToLogin(t *testing.T) {
	rules := [][]domain.Role{
		nil,
		{},
		{domain.RoleBuyer},
		{domain.RoleAdmin},
		{domain.RoleBuyer, domain.RoleSeller, domain.RoleDesigner, domain.RoleAdmin},
	}
	for _, rule := range rules {
		if got := Decide(nil, rule...); got != RedirectLogin {
			t.Fatalf("Decide(nil, %v) = %v, want RedirectLogin", rule, got)
		}
	}
}

func TestDecide_RoleMembership(t *testing.T) {
	sess := buyerSession()

	if got := Decide(sess, domain.RoleBuyer); got != Allow {
		t.Fatalf("buyer in buyer rule: got %v, want Allow", got)
	}
	if got := Decide(sess, domain.RoleSeller, domain.RoleBuyer); got != Allow {
		t.Fatalf("buyer in seller+buyer rule: got %v, want Allow", got)
	}
	if got := Decide(sess, domain.RoleAdmin); got != RedirectUnauthorized {
		t.Fatalf("buyer in admin rule: got %v, want RedirectUnauthorized", got)
	}
}

func TestDecide_EmptyRuleAdmitsAnyAuthenticatedRole(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleBuyer, domain.RoleSeller, domain.RoleDesigner, domain.RoleAdmin} {
		sess := buyerSession()
		sess.Role = role
		if got := Decide(sess); got != Allow {
			t.Fatalf("Decide(%s) with empty rule = %v, want Allow", role, got)
		}
	}
}

func TestGuard_AnonymousRecordsReturnPath(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/buyer/orders", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Guard(domain.RoleBuyer)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?return_to=%2Fbuyer%2Forders" {
		t.Fatalf("unexpected redirect target: %s", loc)
	}
}

func TestGuard_WrongRoleRedirectsToUnauthorizedNotLogin(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(sessionContextKey, buyerSession())

	mw := Guard(domain.RoleAdmin)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/unauthorized" {
		t.Fatalf("unexpected redirect target: %s", loc)
	}
}

func TestGuard_AllowsMatchingRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/buyer/orders", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(sessionContextKey, buyerSession())

	called := false
	mw := Guard(domain.RoleBuyer)
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGuard_VerdictNotCachedAcrossNavigations(t *testing.T) {
	e := echo.New()
	mw := Guard(domain.RoleBuyer)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// First navigation: logged in, allowed.
	req := httptest.NewRequest(http.MethodGet, "/buyer/orders", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(sessionContextKey, buyerSession())
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Second navigation: session gone (logout elsewhere), same guard
	// instance must redirect.
	req = httptest.NewRequest(http.MethodGet, "/buyer/orders", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302 after logout, got %d", rec.Code)
	}
}
