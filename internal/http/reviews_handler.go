package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/catalog"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/review"
)

type ReviewsHandler struct {
	reviews review.Store
	catalog catalog.Store
}

func NewReviewsHandler(reviews review.Store, cat catalog.Store) *ReviewsHandler {
	return &ReviewsHandler{reviews: reviews, catalog: cat}
}

type reviewInputDTO struct {
	CustomerName string          `json:"customer_name"`
	Rating       json.RawMessage `json:"rating"`
	Comment      string          `json:"comment"`
}

// GET /api/products/{id}/reviews
func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := h.activeProductID(w, r)
	if !ok {
		return
	}
	reviews, err := h.reviews.ListReviews(r.Context(), id)
	if err != nil {
		log.Printf("list reviews for product %d failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not list reviews")
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

// POST /api/products/{id}/reviews
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := h.activeProductID(w, r)
	if !ok {
		return
	}
	var in reviewInputDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if in.CustomerName == "" {
		respondError(w, http.StatusBadRequest, "invalid_review", "customer_name is required")
		return
	}

	rev := &review.Review{
		ProductID:    id,
		CustomerName: in.CustomerName,
		Rating:       parseRating(in.Rating),
		Comment:      in.Comment,
	}
	if err := h.reviews.AddReview(r.Context(), rev); err != nil {
		log.Printf("add review for product %d failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not save review")
		return
	}
	respondJSON(w, http.StatusCreated, rev)
}

// parseRating tolerates both numbers and numeric strings; anything else
// falls back to the five star default.
func parseRating(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 5
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return review.ClampRating(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		var f float64
		if err := json.Unmarshal([]byte(s), &f); err == nil {
			return review.ClampRating(int(f))
		}
	}
	return 5
}

func (h *ReviewsHandler) activeProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "product id must be a number")
		return 0, false
	}
	p, err := h.catalog.GetProduct(r.Context(), id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return 0, false
	}
	if err != nil {
		log.Printf("get product %d failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not load product")
		return 0, false
	}
	if !p.Active {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return 0, false
	}
	return id, true
}
