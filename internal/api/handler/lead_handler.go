package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
)

// LeadHandler serves the inquiry funnel and the lead pipeline views. Lead
// records are upstream-owned and passed through verbatim.
type LeadHandler struct {
	cache    ports.ResourceCache
	upstream ports.Upstream
}

func NewLeadHandler(cache ports.ResourceCache, up ports.Upstream) *LeadHandler {
	return &LeadHandler{cache: cache, upstream: up}
}

// inquiryRequest is the public OEM/ODM inquiry form. Validation runs before
// any upstream call: a rejected form never reaches the network.
type inquiryRequest struct {
	Name            string `json:"name"              validate:"required"`
	Email           string `json:"email"             validate:"required,email"`
	Phone           string `json:"phone,omitempty"   validate:"omitempty,e164"`
	Country         string `json:"country"           validate:"required"`
	Company         string `json:"company,omitempty"`
	ProductInterest string `json:"product_interest,omitempty"`
	Quantity        int    `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Message         string `json:"message,omitempty"`
	InquiryType     string `json:"inquiry_type,omitempty" validate:"omitempty,oneof=oem odm sample"`
}

// CreateInquiry handles POST /leads, the public lead funnel.
//
// @Summary      Submit a wholesale inquiry
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        body  body      inquiryRequest  true  "Inquiry details"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Router       /leads [post]
func (h *LeadHandler) CreateInquiry(c echo.Context) error {
	var req inquiryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	credential := ctxCredential(c)
	payload, err := h.cache.Mutate(c.Request().Context(), domain.InvalidateInquiryCreate,
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Post(ctx, "/leads", credential, req)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusCreated, payload)
}

// MyLeads handles GET /buyer/leads, the buyer's own inquiries. The cache
// key is scoped to the session's email so one buyer's list is never served
// to another.
//
// @Summary      List the buyer's own inquiries
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  map[string]any
// @Router       /buyer/leads [get]
func (h *LeadHandler) MyLeads(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	args := "scope=my&user=" + sess.Identity.Email
	release := h.cache.Observe(domain.TagLeads, args)
	defer release()

	credential := sess.Credential
	payload, err := h.cache.Query(c.Request().Context(), domain.TagLeads, args,
		domain.TagSet{domain.TagLeads, domain.TagOrders},
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Get(ctx, "/leads/my-leads", credential)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}

// List handles GET /seller/leads and GET /admin/leads: the full pipeline.
//
// @Summary      List all leads in the pipeline
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  map[string]any
// @Router       /seller/leads [get]
func (h *LeadHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	args := "scope=pipeline"
	release := h.cache.Observe(domain.TagLeads, args)
	defer release()

	credential := sess.Credential
	payload, err := h.cache.Query(c.Request().Context(), domain.TagLeads, args,
		domain.TagSet{domain.TagLeads, domain.TagOrders},
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Get(ctx, "/leads", credential)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}

// Update handles PUT /seller/leads/:id and PUT /admin/leads/:id. A lead
// status change can confirm an order, so the mutation invalidates both the
// lead and order collections.
//
// @Summary      Update a lead's status
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Lead ID"
// @Param        body  body      map[string]any  true  "Fields to update (passed through)"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Router       /seller/leads/{id} [put]
func (h *LeadHandler) Update(c echo.Context) error {
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
	payload, err := h.cache.Mutate(c.Request().Context(), domain.InvalidateLeadUpdate,
		func(ctx context.Context) ([]byte, error) {
			return h.upstream.Put(ctx, "/leads/"+id, credential, body)
		})
	if err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, payload)
}
