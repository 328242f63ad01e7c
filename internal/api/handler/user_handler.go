package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
)

// UserHandler serves admin account management. User records are
// upstream-owned and passed through.
type UserHandler struct {
	cache    ports.ResourceCache
	upstream ports.Upstream
}

func NewUserHandler(cache ports.ResourceCache, up ports.Upstream) *UserHandler {
	return &UserHandler{cache: cache, upstream: up}
}

// List handles GET /admin/users.
//
// @Summary      List all accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  map[string]any
// @Router       /admin/users [get]
func (h *UserHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	args := "scope=all"
	release := h.cache.Observe(domain.TagUsers, args)
	defer release()

	credential := sess.Credential
	payload, err := h.cache.Query(c.Request().Context(), domain.TagUsers, args,
		domain.TagSet{domain.TagUsers},
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Get(ctx, "/auth/users", credential)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}

// Update handles PUT /admin/users/:id.
//
// @Summary      Edit an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "User ID"
// @Param        body  body      map[string]any  true  "Fields to update (passed through)"
// @Success      200   {object}  map[string]any
// @Router       /admin/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var body json.RawMessage
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	id := c.Param("id")
	credential := sess.Credential
	payload, err := h.cache.Mutate(c.Request().Context(), domain.InvalidateUserWrite,
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Put(ctx, "/auth/users/"+id, credential, body)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}

// Delete handles DELETE /admin/users/:id.
//
// @Summary      Remove an account
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User ID"
// @Success      204
// @Router       /admin/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	credential := sess.Credential
	_, err = h.cache.Mutate(c.Request().Context(), domain.InvalidateUserWrite,
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Delete(ctx, "/auth/users/"+id, credential)
		})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
