package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/fulfillment"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/order"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/shipping"
)

type stubEstimator struct {
	dims domain.PackageDimensions
	err  error
}

func (s *stubEstimator) EstimatePackage(_ context.Context, _ []shipping.ItemRef) (domain.PackageDimensions, error) {
	return s.dims, s.err
}

type stubQuoter struct {
	configured bool
	quote      *domain.RateQuote
	err        error
	calls      int
}

func (s *stubQuoter) Configured() bool { return s.configured }

func (s *stubQuoter) Rates(_ context.Context, _ string, _ domain.PackageDimensions) (*domain.RateQuote, error) {
	s.calls++
	return s.quote, s.err
}

type memoryCache struct {
	store map[string]*domain.RateQuote
}

func (c *memoryCache) key(dest string, dims domain.PackageDimensions) string {
	b, _ := json.Marshal(dims)
	return dest + string(b)
}

func (c *memoryCache) Get(_ context.Context, dest string, dims domain.PackageDimensions) (*domain.RateQuote, error) {
	q, ok := c.store[c.key(dest, dims)]
	if !ok {
		return nil, shipping.ErrCacheMiss
	}
	return q, nil
}

func (c *memoryCache) Set(_ context.Context, dest string, dims domain.PackageDimensions, quote *domain.RateQuote) error {
	c.store[c.key(dest, dims)] = quote
	return nil
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestQuoteHandlerHappyPath(t *testing.T) {
	quoter := &stubQuoter{
		configured: true,
		quote: &domain.RateQuote{
			Rates:   []domain.Rate{{DeliveredType: "D", ProductName: "Clasico", Price: 1500}},
			ValidTo: "2026-09-30",
		},
	}
	h := NewQuoteHandler(&stubEstimator{dims: domain.PackageDimensions{WeightG: 500, HeightCM: 14, WidthCM: 20, LengthCM: 25}}, quoter, nil)

	rec := postJSON(t, h.Quote, `{"postalCodeDestination": "1425", "carrito": [{"id": 1, "cantidad": 2}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp quoteResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, 500, resp.Dimensions.WeightG)
	require.Len(t, resp.Rates, 1)
	assert.Equal(t, "2026-09-30", resp.ValidTo)
}

func TestQuoteHandlerCacheShortCircuitsCarrier(t *testing.T) {
	quoter := &stubQuoter{
		configured: true,
		quote:      &domain.RateQuote{Rates: []domain.Rate{{Price: 1500}}, ValidTo: "2026-09-30"},
	}
	cache := &memoryCache{store: map[string]*domain.RateQuote{}}
	h := NewQuoteHandler(&stubEstimator{dims: domain.PackageDimensions{WeightG: 500}}, quoter, cache)

	body := `{"postalCodeDestination": "1425", "carrito": [{"id": 1, "cantidad": 2}]}`
	rec := postJSON(t, h.Quote, body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, h.Quote, body)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, quoter.calls)
}

func TestQuoteHandlerBadInput(t *testing.T) {
	h := NewQuoteHandler(&stubEstimator{}, &stubQuoter{configured: true}, nil)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"broken json", `{`, "invalid_request"},
		{"missing postal code", `{"carrito": [{"id": 1}]}`, "missing_postal_code"},
		{"empty cart", `{"postalCodeDestination": "1425", "carrito": []}`, "empty_cart"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Quote, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestQuoteHandlerNotConfigured(t *testing.T) {
	h := NewQuoteHandler(&stubEstimator{}, &stubQuoter{configured: false}, nil)

	rec := postJSON(t, h.Quote, `{"postalCodeDestination": "1425", "carrito": [{"id": 1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "carrier_not_configured")
}

func TestQuoteHandlerUpstreamFailure(t *testing.T) {
	quoter := &stubQuoter{configured: true, err: &shipping.UpstreamError{Status: 502, Body: "gateway"}}
	h := NewQuoteHandler(&stubEstimator{}, quoter, nil)

	rec := postJSON(t, h.Quote, `{"postalCodeDestination": "1425", "carrito": [{"id": 1}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "carrier_error")
}

type stubSubmitter struct {
	receipt *order.Receipt
	err     error
	got     order.SubmitRequest
}

func (s *stubSubmitter) SubmitOrder(_ context.Context, req order.SubmitRequest) (*order.Receipt, error) {
	s.got = req
	return s.receipt, s.err
}

func TestCheckoutHandlerSuccess(t *testing.T) {
	submitter := &stubSubmitter{receipt: &order.Receipt{OrderID: 42, Subtotal: 250, ShippingCost: 30, Total: 280}}
	h := NewCheckoutHandler(submitter)

	rec := postJSON(t, h.Checkout, `{
		"name": "Juan Perez",
		"email": "juan@example.com",
		"shipping_cost": "30.00",
		"carrito": [{"id": 1, "cantidad": 2, "precio": 100}]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp checkoutResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, int64(42), resp.Receipt.OrderID)

	assert.Equal(t, "Juan Perez", submitter.got.CustomerName)
	assert.JSONEq(t, `[{"id": 1, "cantidad": 2, "precio": 100}]`, submitter.got.CartJSON)
}

func TestCheckoutHandlerRejectionIs400(t *testing.T) {
	submitter := &stubSubmitter{err: &order.StockError{ProductID: 1, Name: "Gorra", Requested: 5, Available: 2}}
	h := NewCheckoutHandler(submitter)

	rec := postJSON(t, h.Checkout, `{"name": "Juan", "email": "juan@example.com", "carrito": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "order_rejected", resp.Code)
	assert.Contains(t, resp.Error, "insufficient stock")
}

func TestCheckoutHandlerInternalFailureIs500(t *testing.T) {
	submitter := &stubSubmitter{err: assert.AnError}
	h := NewCheckoutHandler(submitter)

	rec := postJSON(t, h.Checkout, `{"name": "Juan", "email": "juan@example.com", "carrito": []}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// internal details never leak to the customer
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

type stubUpdater struct {
	order *domain.Order
	err   error
	got   fulfillment.UpdateRequest
}

func (s *stubUpdater) UpdateOrder(_ context.Context, _ int64, req fulfillment.UpdateRequest) (*domain.Order, error) {
	s.got = req
	return s.order, s.err
}

func updateOrderRequest(t *testing.T, updater OrderUpdater, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewAdminOrdersHandler(nil, updater)

	r := chi.NewRouter()
	r.Post("/orders/{id}/update", h.Update)
	req := httptest.NewRequest(http.MethodPost, "/orders/7/update", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdminOrderUpdateStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"backward transition", fulfillment.ErrBackwardTransition, http.StatusConflict, "policy_violation"},
		{"unknown status", fulfillment.ErrUnknownStatus, http.StatusBadRequest, "unknown_status"},
		{"missing order", order.ErrOrderNotFound, http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := updateOrderRequest(t, &stubUpdater{err: tt.err}, `{"status": "Enviado"}`)
			assert.Equal(t, tt.want, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestAdminOrderUpdateSuccess(t *testing.T) {
	updater := &stubUpdater{order: &domain.Order{ID: 7, Status: domain.StatusShipped, TrackingCode: "ABC123"}}
	rec := updateOrderRequest(t, updater, `{
		"status": "Enviado",
		"paid": true,
		"tracking_code": "ABC123",
		"notify": true
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, domain.StatusShipped, updater.got.Status)
	assert.True(t, updater.got.Paid)
	assert.True(t, updater.got.Notify)
	assert.Equal(t, "ABC123", updater.got.TrackingCode)
}
