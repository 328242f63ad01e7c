package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
)

// AccountHandler serves the shared dashboard shell: endpoints available to
// every authenticated role.
type AccountHandler struct{}

func NewAccountHandler() *AccountHandler {
	return &AccountHandler{}
}

type profileResponse struct {
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Role    domain.Role `json:"role"`
	Landing string      `json:"landing"`
}

// Profile handles GET /account/profile: the current session's identity,
// answered from the session store without an upstream call.
//
// @Summary      Current session profile
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Router       /account/profile [get]
func (h *AccountHandler) Profile(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		Name:    sess.Identity.Name,
		Email:   sess.Identity.Email,
		Role:    sess.Role,
		Landing: sess.Role.DefaultLanding(),
	})
}
