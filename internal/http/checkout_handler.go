package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/order"
)

// OrderSubmitter runs the checkout pipeline.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, req order.SubmitRequest) (*order.Receipt, error)
}

type CheckoutHandler struct {
	orders OrderSubmitter
}

func NewCheckoutHandler(orders OrderSubmitter) *CheckoutHandler {
	return &CheckoutHandler{orders: orders}
}

type checkoutRequestDTO struct {
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Address         string          `json:"address"`
	PostalCode      string          `json:"postal_code"`
	ShippingMethod  string          `json:"shipping_method"`
	ShippingCarrier string          `json:"shipping_carrier"`
	ShippingCost    string          `json:"shipping_cost"`
	Cart            json.RawMessage `json:"carrito"`
}

type checkoutResponseDTO struct {
	OK      bool           `json:"ok"`
	Receipt *order.Receipt `json:"receipt"`
}

// POST /api/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	receipt, err := h.orders.SubmitOrder(r.Context(), order.SubmitRequest{
		CustomerName:    req.Name,
		CustomerEmail:   req.Email,
		CustomerPhone:   req.Phone,
		Address:         req.Address,
		PostalCode:      req.PostalCode,
		ShippingMethod:  req.ShippingMethod,
		ShippingCarrier: req.ShippingCarrier,
		ShippingCost:    req.ShippingCost,
		CartJSON:        string(req.Cart),
	})
	if err != nil {
		if order.IsRejection(err) {
			respondError(w, http.StatusBadRequest, "order_rejected", err.Error())
			return
		}
		log.Printf("checkout failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not process the order")
		return
	}

	respondJSON(w, http.StatusCreated, checkoutResponseDTO{OK: true, Receipt: receipt})
}
