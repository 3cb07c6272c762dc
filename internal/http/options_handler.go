package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/shipping"
)

type OptionsHandler struct {
	store shipping.OptionStore
}

func NewOptionsHandler(store shipping.OptionStore) *OptionsHandler {
	return &OptionsHandler{store: store}
}

// GET /api/shipping/options
func (h *OptionsHandler) List(w http.ResponseWriter, r *http.Request) {
	options, err := h.store.ListOptions(r.Context(), false)
	if err != nil {
		log.Printf("list shipping options failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not list shipping options")
		return
	}
	respondJSON(w, http.StatusOK, options)
}

// GET /api/admin/shipping-options
func (h *OptionsHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	options, err := h.store.ListOptions(r.Context(), true)
	if err != nil {
		log.Printf("list shipping options failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not list shipping options")
		return
	}
	respondJSON(w, http.StatusOK, options)
}

type optionInputDTO struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (in optionInputDTO) validate() string {
	if in.Name == "" {
		return "name is required"
	}
	if in.Price < 0 {
		return "price must not be negative"
	}
	return ""
}

// POST /api/admin/shipping-options
func (h *OptionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in optionInputDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if reason := in.validate(); reason != "" {
		respondError(w, http.StatusBadRequest, "invalid_option", reason)
		return
	}
	o := &shipping.Option{Name: in.Name, Price: in.Price, Active: true}
	if err := h.store.CreateOption(r.Context(), o); err != nil {
		log.Printf("create shipping option failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not create shipping option")
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

// PUT /api/admin/shipping-options/{id}
func (h *OptionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "option id must be a number")
		return
	}
	var in optionInputDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if reason := in.validate(); reason != "" {
		respondError(w, http.StatusBadRequest, "invalid_option", reason)
		return
	}
	o := &shipping.Option{ID: id, Name: in.Name, Price: in.Price}
	if err := h.store.UpdateOption(r.Context(), o); err != nil {
		if errors.Is(err, shipping.ErrOptionNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "shipping option not found")
			return
		}
		log.Printf("update shipping option %d failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update shipping option")
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// POST /api/admin/shipping-options/{id}/active
func (h *OptionsHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "option id must be a number")
		return
	}
	var in struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.store.SetOptionActive(r.Context(), id, in.Active); err != nil {
		if errors.Is(err, shipping.ErrOptionNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "shipping option not found")
			return
		}
		log.Printf("set shipping option %d active=%v failed: %v", id, in.Active, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update shipping option")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true, "active": in.Active})
}
