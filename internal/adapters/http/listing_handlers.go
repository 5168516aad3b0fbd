package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/middleware"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

// parseSearchParams reads the raw search query. Normalization happens in the
// listing service; sortBy and sortOrder are accepted as aliases of sort and order.
func parseSearchParams(q url.Values) domain.SearchParams {
	atoi := func(name string) int {
		n, err := strconv.Atoi(q.Get(name))
		if err != nil {
			return 0
		}
		return n
	}
	firstOf := func(names ...string) string {
		for _, n := range names {
			if v := q.Get(n); v != "" {
				return v
			}
		}
		return ""
	}
	return domain.SearchParams{
		Limit:       atoi("limit"),
		StartIndex:  atoi("startIndex"),
		Offer:       q.Get("offer"),
		Furnished:   q.Get("furnished"),
		Parking:     q.Get("parking"),
		ListingType: firstOf("listingType", "type"),
		SearchTerm:  q.Get("searchTerm"),
		Sort:        firstOf("sort", "sortBy"),
		Order:       firstOf("order", "sortOrder"),
	}
}

// GetListings handles GET /api/listing/get-listings.
func (h *Handler) GetListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.SearchListings(r.Context(), parseSearchParams(r.URL.Query()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

// GetListing handles GET /api/listing/{id}.
func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.GetListingDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// CreateListing handles POST /api/listing/create.
func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.AuthenticatedUser(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	var input domain.ListingInput
	if !h.decode(w, r, &input) {
		return
	}
	listing, err := h.listings.CreateListing(r.Context(), *user, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

// GetUserListings handles GET /api/user/listings/{id}.
func (h *Handler) GetUserListings(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.AuthenticatedUser(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	listings, err := h.listings.GetUserListings(r.Context(), *user, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

// GetUserListingDetail handles GET /api/user/listing/detail?listingId=&userRef=.
// Without userRef the listing is returned to any signed-in user.
func (h *Handler) GetUserListingDetail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	listingID := q.Get("listingId")
	if listingID == "" {
		listingID = q.Get("id")
	}
	if listingID == "" {
		domain.NewErrorResponse(domain.ErrCodeBadRequest, "listingId is required", "").WriteJSON(w, http.StatusBadRequest)
		return
	}

	var (
		listing *domain.Listing
		err     error
	)
	if userRef := q.Get("userRef"); userRef != "" {
		listing, err = h.listings.GetOwnedListingDetail(r.Context(), listingID, userRef)
	} else {
		listing, err = h.listings.GetListingDetail(r.Context(), listingID)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// UpdateUserListing handles PATCH /api/user/listing/update/{id}.
func (h *Handler) UpdateUserListing(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.AuthenticatedUser(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	var input domain.ListingInput
	if !h.decode(w, r, &input) {
		return
	}
	listing, err := h.listings.UpdateListing(r.Context(), *user, chi.URLParam(r, "id"), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// DeleteUserListing handles PATCH /api/user/listing/delete/{id}.
func (h *Handler) DeleteUserListing(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.AuthenticatedUser(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	if err := h.listings.DeleteListing(r.Context(), *user, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Listing deleted"})
}

func unauthorized(w http.ResponseWriter) {
	domain.NewErrorResponse(domain.ErrCodeUnauthorized, "Unauthorized", "Sign in to continue.").
		WriteJSON(w, http.StatusUnauthorized)
}
