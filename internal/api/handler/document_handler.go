package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
)

// documentKinds are the trade documents the upstream can generate for an
// order: proforma invoice, commercial invoice, packing list.
var documentKinds = map[string]struct{}{
	"pi":           {},
	"ci":           {},
	"packing-list": {},
}

// DocumentHandler triggers trade document generation and relays downloads.
// Generation and ownership checks are upstream-owned; the gateway only
// routes, invalidates, and streams.
type DocumentHandler struct {
	cache    ports.ResourceCache
	upstream ports.Upstream
}

func NewDocumentHandler(cache ports.ResourceCache, up ports.Upstream) *DocumentHandler {
	return &DocumentHandler{cache: cache, upstream: up}
}

// List handles GET /seller/documents: documents generated for the seller's
// orders.
//
// @Summary      List generated trade documents
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  map[string]any
// @Router       /seller/documents [get]
func (h *DocumentHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	args := "scope=all"
	release := h.cache.Observe(domain.TagDocuments, args)
	defer release()

	credential := sess.Credential
	payload, err := h.cache.Query(c.Request().Context(), domain.TagDocuments, args,
		domain.TagSet{domain.TagDocuments, domain.TagOrders},
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Get(ctx, "/documents", credential)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}

// Generate handles POST /seller/documents/generate-:kind/:orderID.
//
// @Summary      Generate a trade document for an order
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        kind     path      string  true  "Document kind: pi, ci, or packing-list"
// @Param        orderID  path      string  true  "Order ID"
// @Success      201      {object}  map[string]any
// @Failure      400      {object}  map[string]string
// @Router       /seller/documents/generate-{kind}/{orderID} [post]
func (h *DocumentHandler) Generate(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	kind := c.Param("kind")
	if _, ok := documentKinds[kind]; !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown document kind"})
	}

	orderID := c.Param("orderID")
	credential := sess.Credential
	payload, err := h.cache.Mutate(c.Request().Context(), domain.InvalidateDocumentGenerate,
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Post(ctx, "/documents/generate-"+kind+"/"+orderID, credential, nil)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusCreated, payload)
}

// Download handles GET /account/documents/:id/download, a binary
// passthrough. Ownership is enforced upstream; the response streams without
// touching the resource cache.
//
// @Summary      Download a generated document (PDF)
// @Tags         documents
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id  path  string  true  "Document ID"
// @Success      200
// @Failure      403  {object}  map[string]string
// @Router       /account/documents/{id}/download [get]
func (h *DocumentHandler) Download(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	body, contentType, err := h.upstream.Download(
		c.Request().Context(), "/documents/"+c.Param("id")+"/download", sess.Credential)
	if err != nil {
		return err
	}
	defer body.Close()

	return c.Stream(http.StatusOK, contentType, body)
}
