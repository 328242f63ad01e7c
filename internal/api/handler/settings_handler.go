package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
)

// SettingsHandler serves site configuration. Settings are upstream-owned.
type SettingsHandler struct {
	cache    ports.ResourceCache
	upstream ports.Upstream
}

func NewSettingsHandler(cache ports.ResourceCache, up ports.Upstream) *SettingsHandler {
	return &SettingsHandler{cache: cache, upstream: up}
}

// Get handles GET /admin/settings.
//
// @Summary      Read site configuration
// @Tags         settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /admin/settings [get]
func (h *SettingsHandler) Get(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	args := ""
	release := h.cache.Observe(domain.TagSettings, args)
	defer release()

	credential := sess.Credential
	payload, err := h.cache.Query(c.Request().Context(), domain.TagSettings, args,
		domain.TagSet{domain.TagSettings},
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Get(ctx, "/settings", credential)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}

// Update handles PUT /admin/settings.
//
// @Summary      Update site configuration
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      map[string]any  true  "Configuration (passed through)"
// @Success      200   {object}  map[string]any
// @Router       /admin/settings [put]
func (h *SettingsHandler) Update(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var body json.RawMessage
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	credential := sess.Credential
	payload, err := h.cache.Mutate(c.Request().Context(), domain.InvalidateSettingsUpdate,
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Put(ctx, "/settings", credential, body)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}
