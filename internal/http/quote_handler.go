package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/shipping"
)

// PackageEstimator derives parcel dimensions from cart contents.
type PackageEstimator interface {
	EstimatePackage(ctx context.Context, items []shipping.ItemRef) (domain.PackageDimensions, error)
}

// RateQuoter obtains carrier rates for a destination and package.
type RateQuoter interface {
	Configured() bool
	Rates(ctx context.Context, destinationPostalCode string, dims domain.PackageDimensions) (*domain.RateQuote, error)
}

type QuoteHandler struct {
	estimator PackageEstimator
	quoter    RateQuoter
	cache     shipping.QuoteCache // nil disables caching
}

func NewQuoteHandler(estimator PackageEstimator, quoter RateQuoter, cache shipping.QuoteCache) *QuoteHandler {
	return &QuoteHandler{estimator: estimator, quoter: quoter, cache: cache}
}

type quoteCartItemDTO struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"cantidad"`
}

type quoteRequestDTO struct {
	PostalCodeDestination string             `json:"postalCodeDestination"`
	Cart                  []quoteCartItemDTO `json:"carrito"`
}

type quoteResponseDTO struct {
	OK         bool                     `json:"ok"`
	Dimensions domain.PackageDimensions `json:"dimensions"`
	Rates      []domain.Rate            `json:"rates"`
	ValidTo    string                   `json:"validTo"`
}

// POST /api/shipping/quote
func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.PostalCodeDestination == "" {
		respondError(w, http.StatusBadRequest, "missing_postal_code", "postalCodeDestination is required")
		return
	}
	if len(req.Cart) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "carrito must not be empty")
		return
	}
	if !h.quoter.Configured() {
		respondError(w, http.StatusBadRequest, "carrier_not_configured", "shipping quotes are not available")
		return
	}

	items := make([]shipping.ItemRef, 0, len(req.Cart))
	for _, c := range req.Cart {
		items = append(items, shipping.ItemRef{ProductID: c.ID, Quantity: c.Quantity})
	}

	dims, err := h.estimator.EstimatePackage(r.Context(), items)
	if err != nil {
		log.Printf("package estimation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "estimation_failed", "could not estimate package dimensions")
		return
	}

	if quote, ok := h.cachedQuote(r.Context(), req.PostalCodeDestination, dims); ok {
		respondJSON(w, http.StatusOK, quoteResponseDTO{OK: true, Dimensions: dims, Rates: quote.Rates, ValidTo: quote.ValidTo})
		return
	}

	quote, err := h.quoter.Rates(r.Context(), req.PostalCodeDestination, dims)
	if errors.Is(err, shipping.ErrNotConfigured) {
		respondError(w, http.StatusBadRequest, "carrier_not_configured", "shipping quotes are not available")
		return
	}
	if err != nil {
		log.Printf("carrier quote failed: %v", err)
		respondError(w, http.StatusInternalServerError, "carrier_error", "could not obtain shipping rates")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), req.PostalCodeDestination, dims, quote); err != nil {
			log.Printf("quote cache set failed: %v", err)
		}
	}

	respondJSON(w, http.StatusOK, quoteResponseDTO{OK: true, Dimensions: dims, Rates: quote.Rates, ValidTo: quote.ValidTo})
}

func (h *QuoteHandler) cachedQuote(ctx context.Context, dest string, dims domain.PackageDimensions) (*domain.RateQuote, bool) {
	if h.cache == nil {
		return nil, false
	}
	quote, err := h.cache.Get(ctx, dest, dims)
	if errors.Is(err, shipping.ErrCacheMiss) {
		return nil, false
	}
	if err != nil {
		log.Printf("quote cache get failed: %v", err)
		return nil, false
	}
	return quote, true
}
