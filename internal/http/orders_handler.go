package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type OrdersHandler struct {
	orders  OrdersService
	catalog CatalogService
	timeout time.Duration
}

func NewOrdersHandler(orders OrdersService, catalog CatalogService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{orders: orders, catalog: catalog, timeout: timeout}
}

type PlaceOrderRequestDTO struct {
	ProductID domain.ProductID        `json:"product_id"`
	Quantity  int                     `json:"quantity"`
	Customer  *domain.CustomerDetails `json:"customerDetails"`
}

// POST /api/v1/orders
//
// Places a single order for one product, outside the cart.
func (h *OrdersHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PlaceOrderRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	order, err := h.orders.SubmitOne(ctx, domain.OrderRequest{
		Line:     domain.CartLine{Product: product, Quantity: req.Quantity},
		Customer: req.Customer,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.FetchForCurrentUser(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}

	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/orders/status
func (h *OrdersHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.orders.Status())
}
