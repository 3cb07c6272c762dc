package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/catalog"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
)

// Default physical attributes for products created without measurements.
// The estimator needs every product to have some weight and size.
const (
	defaultWeightG = 100
	defaultDimCM   = 10
)

type ProductsHandler struct {
	store catalog.Store
}

func NewProductsHandler(store catalog.Store) *ProductsHandler {
	return &ProductsHandler{store: store}
}

// GET /api/products
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	f := catalog.Filter{
		Category: domain.Category(r.URL.Query().Get("category")),
		Search:   r.URL.Query().Get("q"),
	}
	products, err := h.store.ListProducts(r.Context(), f)
	if err != nil {
		log.Printf("list products failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /api/products/{id}
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "product id must be a number")
		return
	}
	p, err := h.store.GetProduct(r.Context(), id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		log.Printf("get product %d failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not load product")
		return
	}
	if !p.Active {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// GET /api/admin/products
func (h *ProductsHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	f := catalog.Filter{
		Category:        domain.Category(r.URL.Query().Get("category")),
		Search:          r.URL.Query().Get("q"),
		IncludeInactive: true,
	}
	products, err := h.store.ListProducts(r.Context(), f)
	if err != nil {
		log.Printf("list products failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

type productInputDTO struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Photos      []string `json:"photos"`
	Stock       int      `json:"stock"`
	Price       float64  `json:"price"`
	WeightG     int      `json:"weight_g"`
	HeightCM    int      `json:"height_cm"`
	WidthCM     int      `json:"width_cm"`
	LengthCM    int      `json:"length_cm"`
}

func (in productInputDTO) toProduct() (*domain.Product, string) {
	if in.Name == "" {
		return nil, "name is required"
	}
	cat := domain.Category(in.Category)
	if !cat.Valid() {
		return nil, "unknown product category"
	}
	if in.Price < 0 {
		return nil, "price must not be negative"
	}
	if in.Stock < 0 {
		return nil, "stock must not be negative"
	}
	p := &domain.Product{
		Name:        in.Name,
		Category:    cat,
		Description: in.Description,
		Photos:      in.Photos,
		Stock:       in.Stock,
		Price:       in.Price,
		WeightG:     in.WeightG,
		HeightCM:    in.HeightCM,
		WidthCM:     in.WidthCM,
		LengthCM:    in.LengthCM,
		Active:      true,
	}
	if p.WeightG <= 0 {
		p.WeightG = defaultWeightG
	}
	if p.HeightCM <= 0 {
		p.HeightCM = defaultDimCM
	}
	if p.WidthCM <= 0 {
		p.WidthCM = defaultDimCM
	}
	if p.LengthCM <= 0 {
		p.LengthCM = defaultDimCM
	}
	return p, ""
}

// POST /api/admin/products
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in productInputDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	p, reason := in.toProduct()
	if reason != "" {
		respondError(w, http.StatusBadRequest, "invalid_product", reason)
		return
	}
	if err := h.store.CreateProduct(r.Context(), p); err != nil {
		log.Printf("create product failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not create product")
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// PUT /api/admin/products/{id}
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "product id must be a number")
		return
	}
	var in productInputDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	p, reason := in.toProduct()
	if reason != "" {
		respondError(w, http.StatusBadRequest, "invalid_product", reason)
		return
	}

	existing, err := h.store.GetProduct(r.Context(), id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		log.Printf("get product %d failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not load product")
		return
	}

	p.ID = id
	p.Active = existing.Active
	if err := h.store.UpdateProduct(r.Context(), p); err != nil {
		log.Printf("update product %d failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update product")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type productActiveDTO struct {
	Active bool `json:"active"`
}

// POST /api/admin/products/{id}/active
func (h *ProductsHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "product id must be a number")
		return
	}
	var in productActiveDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.store.SetActive(r.Context(), id, in.Active); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		log.Printf("set product %d active=%v failed: %v", id, in.Active, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update product")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true, "active": in.Active})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
