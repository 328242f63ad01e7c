package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/api/middleware"
	"github.com/garmentsource/storefront-gateway/internal/core/domain"
)

// ctxSession extracts the session injected by the auth middleware. Guarded
// route trees always carry one; a missing session past the guard means the
// middleware chain is miswired, so fail closed.
func ctxSession(c echo.Context) (*domain.Session, error) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return sess, nil
}

// ctxCredential returns the bearer credential for upstream calls, or ""
// for anonymous requests (public endpoints go out unauthenticated).
func ctxCredential(c echo.Context) string {
	if sess := middleware.SessionFrom(c); sess != nil {
		return sess.Credential
	}
	return ""
}

// respondRaw relays an upstream JSON payload verbatim. The gateway never
// reshapes resource records.
func respondRaw(c echo.Context, status int, payload []byte) error {
	if len(payload) == 0 {
		return c.NoContent(status)
	}
	return c.JSONBlob(status, payload)
}
