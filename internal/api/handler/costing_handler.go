package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
)

// CostingHandler serves the seller's cost sheets. A costing revision feeds
// into order pricing, so writes invalidate orders too.
type CostingHandler struct {
	cache    ports.ResourceCache
	upstream ports.Upstream
}

func NewCostingHandler(cache ports.ResourceCache, up ports.Upstream) *CostingHandler {
	return &CostingHandler{cache: cache, upstream: up}
}

// List handles GET /seller/costings.
//
// @Summary      List cost sheets
// @Tags         costings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  map[string]any
// @Router       /seller/costings [get]
func (h *CostingHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	args := "scope=all"
	release := h.cache.Observe(domain.TagCostings, args)
	defer release()

	credential := sess.Credential
	payload, err := h.cache.Query(c.Request().Context(), domain.TagCostings, args,
		domain.TagSet{domain.TagCostings, domain.TagOrders},
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Get(ctx, "/costings", credential)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}

// Update handles PUT /seller/costings/:id.
//
// @Summary      Revise a cost sheet
// @Tags         costings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Costing ID"
// @Param        body  body      map[string]any  true  "Revision (passed through)"
// @Success      200   {object}  map[string]any
// @Router       /seller/costings/{id} [put]
func (h *CostingHandler) Update(c echo.Context) error {
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
	payload, err := h.cache.Mutate(c.Request().Context(), domain.InvalidateCostingUpdate,
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Put(ctx, "/costings/"+id, credential, body)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}
