package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/api/middleware"
	"github.com/garmentsource/storefront-gateway/internal/core/domain"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
)

type AuthHandler struct {
	sessions ports.SessionStore
}

func NewAuthHandler(sessions ports.SessionStore) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required"`
	// ReturnTo is the path recorded by the route guard before redirecting
	// to login, if any.
	ReturnTo string `json:"return_to,omitempty"`
}

type registerRequest struct {
	Name     string `json:"name"      validate:"required"`
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=8"`
	Company  string `json:"company,omitempty"`
	Phone    string `json:"phone,omitempty"      validate:"omitempty,e164"`
}

type sessionUser struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

type authResponse struct {
	Token      string      `json:"token"`
	User       sessionUser `json:"user"`
	RedirectTo string      `json:"redirect_to"`
}

// Login authenticates against the upstream and opens a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials and optional return path"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	sess, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return authError(c, err)
	}

	return c.JSON(http.StatusOK, authResponse{
		Token: sess.Credential,
		User: sessionUser{
			Name:  sess.Identity.Name,
			Email: sess.Identity.Email,
			Role:  sess.Role,
		},
		RedirectTo: h.sessions.ResolveReturnPath(req.ReturnTo, sess.Role),
	})
}

// Register creates a buyer account and opens a session.
//
// @Summary      Register a new buyer account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "New account profile"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	sess, err := h.sessions.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Company:  req.Company,
		Phone:    req.Phone,
	})
	if err != nil {
		return authError(c, err)
	}

	return c.JSON(http.StatusCreated, authResponse{
		Token: sess.Credential,
		User: sessionUser{
			Name:  sess.Identity.Name,
			Email: sess.Identity.Email,
			Role:  sess.Role,
		},
		RedirectTo: sess.Role.DefaultLanding(),
	})
}

// Logout closes the session for the presented credential.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	// Logout must work even for a credential whose session is already
	// gone, so the raw header token is used rather than the (possibly
	// absent) context session.
	token := middleware.BearerToken(c)
	if token == "" {
		return c.NoContent(http.StatusNoContent)
	}
	if err := h.sessions.Logout(c.Request().Context(), token); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// authError maps session-store failures onto HTTP statuses, keeping auth
// rejections distinguishable from transport failure.
func authError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	case errors.Is(err, domain.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	case errors.Is(err, domain.ErrEmailInUse):
		return c.JSON(http.StatusConflict, map[string]string{"error": "email already in use"})
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "backend unavailable, try again"})
	}
	return err
}
