package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
)

// ProductHandler serves the public catalog and the seller's own catalog
// management. Product records are upstream-owned and passed through.
type ProductHandler struct {
	cache    ports.ResourceCache
	upstream ports.Upstream
}

func NewProductHandler(cache ports.ResourceCache, up ports.Upstream) *ProductHandler {
	return &ProductHandler{cache: cache, upstream: up}
}

// catalogArgs serializes the browse parameters deterministically so
// identical catalog queries share one cache entry.
func catalogArgs(q url.Values) string {
	v := url.Values{}
	for _, key := range []string{"category", "search", "page", "limit"} {
		if s := q.Get(key); s != "" {
			v.Set(key, s)
		}
	}
	return v.Encode()
}

// Catalog handles GET /products: public browsing, no session required.
//
// @Summary      Browse the product catalog
// @Tags         products
// @Produce      json
// @Param        category  query  string  false  "Category filter"
// @Param        search    query  string  false  "Free-text search"
// @Param        page      query  int     false  "Page number"
// @Success      200  {array}  map[string]any
// @Router       /products [get]
func (h *ProductHandler) Catalog(c echo.Context) error {
	args := catalogArgs(c.QueryParams())
	release := h.cache.Observe(domain.TagProducts, args)
	defer release()

	credential := ctxCredential(c)
	path := "/products"
	if args != "" {
		path += "?" + args
	}

	payload, err := h.cache.Query(c.Request().Context(), domain.TagProducts, args,
		domain.TagSet{domain.TagProducts},
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Get(ctx, path, credential)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}

// Detail handles GET /products/:id.
//
// @Summary      Get one catalog product
// @Tags         products
// @Produce      json
// @Param        id  path  string  true  "Product ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [get]
func (h *ProductHandler) Detail(c echo.Context) error {
	id := c.Param("id")
	args := "id=" + id
	release := h.cache.Observe(domain.TagProducts, args)
	defer release()

	credential := ctxCredential(c)
	payload, err := h.cache.Query(c.Request().Context(), domain.TagProducts, args,
		domain.TagSet{domain.TagProducts},
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Get(ctx, "/products/"+id, credential)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}

// Mine handles GET /seller/products, the seller's own catalog.
//
// @Summary      List the seller's own products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  map[string]any
// @Router       /seller/products [get]
func (h *ProductHandler) Mine(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	args := "scope=my&user=" + sess.Identity.Email
	release := h.cache.Observe(domain.TagProducts, args)
	defer release()

	credential := sess.Credential
	payload, err := h.cache.Query(c.Request().Context(), domain.TagProducts, args,
		domain.TagSet{domain.TagProducts},
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Get(ctx, "/products/my-products", credential)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}

// Create handles POST /seller/products.
//
// @Summary      Add a product to the catalog
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      map[string]any  true  "Product record (passed through)"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Router       /seller/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var body json.RawMessage
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	credential := sess.Credential
	payload, err := h.cache.Mutate(c.Request().Context(), domain.InvalidateProductWrite,
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Post(ctx, "/products", credential, body)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusCreated, payload)
}

// Update handles PUT /seller/products/:id.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Product ID"
// @Param        body  body      map[string]any  true  "Fields to update (passed through)"
// @Success      200   {object}  map[string]any
// @Router       /seller/products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
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
	payload, err := h.cache.Mutate(c.Request().Context(), domain.InvalidateProductWrite,
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Put(ctx, "/products/"+id, credential, body)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}

// Delete handles DELETE /seller/products/:id and DELETE /admin/products/:id.
//
// @Summary      Remove a product
// @Tags         products
// @Security     BearerAuth
// @Param        id  path  string  true  "Product ID"
// @Success      204
// @Router       /seller/products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	credential := sess.Credential
	_, err = h.cache.Mutate(c.Request().Context(), domain.InvalidateProductWrite,
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Delete(ctx, "/products/"+id, credential)
		})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
