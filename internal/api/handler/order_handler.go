package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
)

// OrderHandler serves the buyer's order lifecycle. Order records are
// upstream-owned and passed through.
type OrderHandler struct {
	cache    ports.ResourceCache
	upstream ports.Upstream
}

func NewOrderHandler(cache ports.ResourceCache, up ports.Upstream) *OrderHandler {
	return &OrderHandler{cache: cache, upstream: up}
}

// Mine handles GET /buyer/orders.
//
// @Summary      List the buyer's own orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  map[string]any
// @Router       /buyer/orders [get]
func (h *OrderHandler) Mine(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	args := "scope=my&user=" + sess.Identity.Email
	release := h.cache.Observe(domain.TagOrders, args)
	defer release()

	credential := sess.Credential
	payload, err := h.cache.Query(c.Request().Context(), domain.TagOrders, args,
		domain.TagSet{domain.TagOrders},
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Get(ctx, "/orders/my-orders", credential)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}

// Create handles POST /buyer/orders. A new order typically confirms a lead,
// so the mutation invalidates both collections.
//
// @Summary      Place an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      map[string]any  true  "Order record (passed through)"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Router       /buyer/orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var body json.RawMessage
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	credential := sess.Credential
	payload, err := h.cache.Mutate(c.Request().Context(), domain.InvalidateOrderCreate,
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Post(ctx, "/orders", credential, body)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusCreated, payload)
}
