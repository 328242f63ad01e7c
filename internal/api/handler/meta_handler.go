package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
)

// MetaHandler serves display metadata the front-ends share. None of it is
// authoritative; statuses and their transitions live upstream.
type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

// StatusStyles handles GET /meta/status-styles.
//
// @Summary      Status display palettes (labels and colours)
// @Tags         meta
// @Produce      json
// @Success      200  {object}  domain.StatusStyles
// @Router       /meta/status-styles [get]
func (h *MetaHandler) StatusStyles(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.DisplayStatusStyles())
}
