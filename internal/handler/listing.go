package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/usedgoods/marketplace/internal/ctxkeys"
	"github.com/usedgoods/marketplace/internal/model"
	"github.com/usedgoods/marketplace/internal/service"
)

type ListingHandler struct {
	listingService *service.ListingService
}

func NewListingHandler(listingService *service.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

type statusRequest struct {
	IsActive *bool `json:"is_active"`
}

type updateResponse struct {
	Product *model.Listing `json:"product"`
	*service.ListingUpdate
}

// List serves the public index: active listings of other sellers.
// Query params: is_new, accept_trade, payment_methods (repeatable or comma separated), query.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListingFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	listings, err := h.listingService.Listings(r.Context(), ctxkeys.UserID(r.Context()), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) Show(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listingService.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listingService.UserListings(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.NewListing
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	listing, err := h.listingService.Create(r.Context(), ctxkeys.UserID(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, listing)
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch service.ListingPatch
	err := decodeJSON(w, r, &patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := r.PathValue("id")
	result, err := h.listingService.Update(r.Context(), id, ctxkeys.UserID(r.Context()), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	listing, err := h.listingService.ByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updateResponse{Product: listing, ListingUpdate: result})
}

// SetStatus publishes or hides a listing.
func (h *ListingHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.IsActive == nil {
		writeError(w, r, fmt.Errorf("%w: is_active is required", service.ErrValidation))
		return
	}

	err = h.listingService.SetActive(r.Context(), r.PathValue("id"), ctxkeys.UserID(r.Context()), *req.IsActive)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.listingService.Delete(r.Context(), r.PathValue("id"), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseListingFilter(r *http.Request) (model.ListingFilter, error) {
	q := r.URL.Query()
	filter := model.ListingFilter{Query: q.Get("query")}

	for _, name := range []string{"is_new", "accept_trade"} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("%w: %s must be true or false", service.ErrValidation, name)
		}
		if name == "is_new" {
			filter.IsNew = &v
		} else {
			filter.AcceptTrade = &v
		}
	}

	for _, raw := range q["payment_methods"] {
		for _, key := range strings.Split(raw, ",") {
			key = strings.TrimSpace(key)
			if key != "" {
				filter.PaymentMethods = append(filter.PaymentMethods, key)
			}
		}
	}

	return filter, nil
}
