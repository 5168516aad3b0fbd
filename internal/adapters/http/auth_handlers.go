package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/middleware"
	"gitlab.com/realty/api/realty-listing-service/internal/application"
)

type signUpRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleSignInRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Photo string `json:"photo" validate:"omitempty,url"`
}

// SignUp handles POST /api/auth/signup.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.auth.SignUp(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// SignIn handles POST /api/auth/signin.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.setSessionCookie(w, session)
	writeJSON(w, http.StatusOK, session.User)
}

// GoogleSignIn handles POST /api/auth/google.
func (h *Handler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req googleSignInRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.auth.GoogleSignIn(r.Context(), application.GoogleProfile{
		Name:     req.Name,
		Email:    req.Email,
		PhotoURL: req.Photo,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.setSessionCookie(w, session)
	writeJSON(w, http.StatusOK, session.User)
}

// SignOut handles POST /api/auth/signout/{id}.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.AuthenticatedUser(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	if id := chi.URLParam(r, "id"); id != user.ID {
		h.logger.Warn(r.Context(), "Sign-out path does not match token subject", "path_id", id)
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "User signed out"})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, session *application.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.config.Get().Auth.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.Get().Auth.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
