package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/fulfillment"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/order"
)

// OrderReader is the read side of order persistence used by the back office.
type OrderReader interface {
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, f order.ListFilter) ([]domain.Order, error)
	SalesMetrics(ctx context.Context) (*order.Metrics, error)
}

// OrderUpdater applies fulfillment transitions.
type OrderUpdater interface {
	UpdateOrder(ctx context.Context, id int64, req fulfillment.UpdateRequest) (*domain.Order, error)
}

type AdminOrdersHandler struct {
	orders  OrderReader
	updater OrderUpdater
}

func NewAdminOrdersHandler(orders OrderReader, updater OrderUpdater) *AdminOrdersHandler {
	return &AdminOrdersHandler{orders: orders, updater: updater}
}

// GET /api/admin/orders?customer=&day=2026-08-31
func (h *AdminOrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	f := order.ListFilter{CustomerName: r.URL.Query().Get("customer")}
	if day := r.URL.Query().Get("day"); day != "" {
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_day", "day must be formatted as YYYY-MM-DD")
			return
		}
		f.Day = t
	}

	orders, err := h.orders.ListOrders(r.Context(), f)
	if err != nil {
		log.Printf("list orders failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not list orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/admin/orders/{id}
func (h *AdminOrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "order id must be a number")
		return
	}
	o, err := h.orders.GetOrder(r.Context(), id)
	if errors.Is(err, order.ErrOrderNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	if err != nil {
		log.Printf("get order %d failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not load order")
		return
	}
	respondJSON(w, http.StatusOK, o)
}

type orderUpdateDTO struct {
	Status       string `json:"status"`
	Paid         bool   `json:"paid"`
	TrackingCode string `json:"tracking_code"`
	TrackingLink string `json:"tracking_link"`
	CarrierName  string `json:"carrier_name"`
	Notify       bool   `json:"notify"`
}

// POST /api/admin/orders/{id}/update
func (h *AdminOrdersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "order id must be a number")
		return
	}
	var in orderUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	o, err := h.updater.UpdateOrder(r.Context(), id, fulfillment.UpdateRequest{
		Status:       domain.OrderStatus(in.Status),
		Paid:         in.Paid,
		TrackingCode: in.TrackingCode,
		TrackingLink: in.TrackingLink,
		CarrierName:  in.CarrierName,
		Notify:       in.Notify,
	})
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	case errors.Is(err, fulfillment.ErrUnknownStatus):
		respondError(w, http.StatusBadRequest, "unknown_status", err.Error())
	case errors.Is(err, fulfillment.ErrBackwardTransition):
		respondError(w, http.StatusConflict, "policy_violation", err.Error())
	case err != nil:
		log.Printf("update order %d failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update order")
	default:
		respondJSON(w, http.StatusOK, o)
	}
}

// GET /api/admin/metrics
func (h *AdminOrdersHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.orders.SalesMetrics(r.Context())
	if err != nil {
		log.Printf("sales metrics failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not compute metrics")
		return
	}
	respondJSON(w, http.StatusOK, m)
}
