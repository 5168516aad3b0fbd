package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/middleware"
	"gitlab.com/realty/api/realty-listing-service/internal/application"
)

type profileUpdateRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=20"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Avatar   string `json:"avatar" validate:"omitempty,url"`
}

// UpdateProfile handles PATCH /api/user/profile/update/{id}.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.AuthenticatedUser(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	var req profileUpdateRequest
	if !h.decode(w, r, &req) {
		return
	}
	updated, err := h.users.UpdateProfile(r.Context(), *user, chi.URLParam(r, "id"), application.ProfileChanges{
		Username: req.Username,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteProfile handles PATCH /api/user/profile/delete/{id}.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.AuthenticatedUser(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	if err := h.users.DeleteAccount(r.Context(), *user, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "User deleted"})
}

// GetUploadSignature handles GET /api/user/get-signature.
func (h *Handler) GetUploadSignature(w http.ResponseWriter, r *http.Request) {
	sig, err := h.users.SignUpload()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sig)
}

// GetUser handles GET /api/user/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
