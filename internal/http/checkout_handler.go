package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	form    CheckoutService
	catalog CatalogService
	timeout time.Duration
}

func NewCheckoutHandler(form CheckoutService, catalog CatalogService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{form: form, catalog: catalog, timeout: timeout}
}

type FormStateResponseDTO struct {
	State domain.FormState `json:"state"`
}

type SubmitResponseDTO struct {
	State  domain.FormState `json:"state"`
	Orders []*domain.Order  `json:"orders"`
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, FormStateResponseDTO{State: h.form.State()})
}

// POST /api/v1/checkout/open
func (h *CheckoutHandler) Open(w http.ResponseWriter, r *http.Request) {
	if err := h.form.Open(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, FormStateResponseDTO{State: h.form.State()})
}

// POST /api/v1/checkout/close
func (h *CheckoutHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.form.Close(); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, FormStateResponseDTO{State: h.form.State()})
}

// POST /api/v1/checkout/buy-now/{product_id}
func (h *CheckoutHandler) BuyNow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.catalog.GetProduct(ctx, domain.ProductID(chi.URLParam(r, "product_id")))
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := h.form.BuyNow(ctx, product); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, FormStateResponseDTO{State: h.form.State()})
}

// POST /api/v1/checkout/submit
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var details domain.CustomerDetails
	if err := decodeJSON(r, &details); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	placed, err := h.form.Submit(ctx, details)
	var werr *domain.WriteError
	if errors.As(err, &werr) && len(placed) > 0 {
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:  werr.Error(),
			Code:   "write_error",
			Failed: werr.Failed,
			Orders: placed,
		})
		return
	}
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, SubmitResponseDTO{State: h.form.State(), Orders: placed})
}
