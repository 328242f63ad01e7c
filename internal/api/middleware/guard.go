package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
)

// Decision is the outcome of evaluating a session against a route's rule.
type Decision int

const (
	// Allow renders the nested route tree.
	Allow Decision = iota
	// RedirectLogin sends the visitor to /login, recording the requested
	// path as the post-login return target.
	RedirectLogin
	// RedirectUnauthorized sends an authenticated visitor whose role fails
	// the rule to /unauthorized.
	RedirectUnauthorized
)

// Decide evaluates (session, requiredRoles). An absent session always
// redirects to login, whatever the rule; an empty rule admits any
// authenticated role. Pure: the same inputs always yield the same decision.
func Decide(sess *domain.Session, required ...domain.Role) Decision {
	if sess == nil {
		return RedirectLogin
	}
	if len(required) == 0 {
		return Allow
	}
	for _, r := range required {
		if sess.Role == r {
			return Allow
		}
	}
	return RedirectUnauthorized
}

// Guard gates a route subtree behind Decide. The decision is re-evaluated on
// every request, never cached, since the session can change between
// navigations (a logout elsewhere revokes it in the store immediately).
func Guard(required ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch Decide(SessionFrom(c), required...) {
			case RedirectLogin:
				target := "/login?return_to=" + url.QueryEscape(c.Request().URL.Path)
				return c.Redirect(http.StatusFound, target)
			case RedirectUnauthorized:
				return c.Redirect(http.StatusFound, "/unauthorized")
			}
			return next(c)
		}
	}
}
