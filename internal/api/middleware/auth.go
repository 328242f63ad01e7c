package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/api/metrics"
	"github.com/garmentsource/storefront-gateway/internal/core/domain"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
)

const sessionContextKey = "session"

// Auth resolves the bearer credential into a live session and injects it
// into context. Requests without an Authorization header pass through
// anonymous (public endpoints exist), while a header that is present but
// malformed, forged, or tied to a logged-out session is rejected here.
func Auth(jwtSecret string, sessions ports.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.AuthFailuresTotal.WithLabelValues("malformed_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}
			token := parts[1]

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
				if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			// The signature alone is not enough: logout must revoke.
			sess, ok := sessions.Lookup(token)
			if !ok {
				metrics.AuthFailuresTotal.WithLabelValues("session_revoked").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "session not found")
			}

			c.Set(sessionContextKey, sess)
			return next(c)
		}
	}
}

// SessionFrom returns the session injected by Auth, or nil for anonymous
// requests.
func SessionFrom(c echo.Context) *domain.Session {
	sess, _ := c.Get(sessionContextKey).(*domain.Session)
	return sess
}

// BearerToken extracts the raw bearer credential from the request, or ""
// when absent or malformed.
func BearerToken(c echo.Context) string {
	parts := strings.SplitN(c.Request().Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
