package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
)

// CustomizationHandler serves the customization request lifecycle across
// three trees: buyers raise requests, sellers respond with quotes, designers
// attach design work. Records are upstream-owned and passed through.
type CustomizationHandler struct {
	cache    ports.ResourceCache
	upstream ports.Upstream
}

func NewCustomizationHandler(cache ports.ResourceCache, up ports.Upstream) *CustomizationHandler {
	return &CustomizationHandler{cache: cache, upstream: up}
}

// Mine handles GET /buyer/customizations.
//
// @Summary      List the buyer's own customization requests
// @Tags         customizations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  map[string]any
// @Router       /buyer/customizations [get]
func (h *CustomizationHandler) Mine(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	args := "scope=my&user=" + sess.Identity.Email
	release := h.cache.Observe(domain.TagCustomizations, args)
	defer release()

	credential := sess.Credential
	payload, err := h.cache.Query(c.Request().Context(), domain.TagCustomizations, args,
		domain.TagSet{domain.TagCustomizations},
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Get(ctx, "/customizations/my-requests", credential)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}

// Queue handles GET /seller/customizations and GET /designer/customizations
// with every open request awaiting a response or design work.
//
// @Summary      List customization requests awaiting action
// @Tags         customizations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  map[string]any
// @Router       /seller/customizations [get]
func (h *CustomizationHandler) Queue(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	args := "scope=queue"
	release := h.cache.Observe(domain.TagCustomizations, args)
	defer release()

	credential := sess.Credential
	payload, err := h.cache.Query(c.Request().Context(), domain.TagCustomizations, args,
		domain.TagSet{domain.TagCustomizations},
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Get(ctx, "/customizations", credential)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}

// Create handles POST /buyer/customizations.
//
// @Summary      Raise a customization request
// @Tags         customizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      map[string]any  true  "Request record (passed through)"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Router       /buyer/customizations [post]
func (h *CustomizationHandler) Create(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var body json.RawMessage
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	credential := sess.Credential
	payload, err := h.cache.Mutate(c.Request().Context(), domain.InvalidateCustomizationWrite,
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Post(ctx, "/customizations", credential, body)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusCreated, payload)
}

// Respond handles PUT /seller/customizations/:id (quote or reject).
//
// @Summary      Respond to a customization request
// @Tags         customizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Request ID"
// @Param        body  body      map[string]any  true  "Response (passed through)"
// @Success      200   {object}  map[string]any
// @Router       /seller/customizations/{id} [put]
func (h *CustomizationHandler) Respond(c echo.Context) error {
	return h.update(c, "/customizations/"+c.Param("id"))
}

// AttachDesign handles PUT /designer/customizations/:id/design.
//
// @Summary      Attach design work to a customization request
// @Tags         customizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Request ID"
// @Param        body  body      map[string]any  true  "Design payload (passed through)"
// @Success      200   {object}  map[string]any
// @Router       /designer/customizations/{id}/design [put]
func (h *CustomizationHandler) AttachDesign(c echo.Context) error {
	return h.update(c, "/customizations/"+c.Param("id")+"/design")
}

func (h *CustomizationHandler) update(c echo.Context, path string) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var body json.RawMessage
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	credential := sess.Credential
	payload, err := h.cache.Mutate(c.Request().Context(), domain.InvalidateCustomizationWrite,
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Put(ctx, path, credential, body)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}
