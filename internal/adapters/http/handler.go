package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/config"
	"gitlab.com/realty/api/realty-listing-service/internal/application"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the /api routes.
type Handler struct {
	listings *application.ListingService
	auth     *application.AuthService
	users    *application.UserService
	tokens   *application.TokenService
	config   config.Provider
	logger   domain.Logger
	validate *validator.Validate
}

// NewHandler creates a new Handler.
func NewHandler(
	listings *application.ListingService,
	auth *application.AuthService,
	users *application.UserService,
	tokens *application.TokenService,
	cfg config.Provider,
	logger domain.Logger,
) *Handler {
	return &Handler{
		listings: listings,
		auth:     auth,
		users:    users,
		tokens:   tokens,
		config:   cfg,
		logger:   logger,
		validate: newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(domain.ListingInput)
		if in.Offer && in.DiscountedPrice > in.RegularPrice {
			sl.ReportError(in.DiscountedPrice, "discountedPrice", "DiscountedPrice", "ltefield", "regularPrice")
		}
	}, domain.ListingInput{})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) // Best effort, the status line is already out.
}

// decode reads a JSON body into dst and validates it. It writes the 400
// response itself and returns false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		h.logger.Warn(r.Context(), "Failed to decode request payload", "path", r.URL.Path, "error", err.Error())
		domain.NewErrorResponse(domain.ErrCodeBadRequest, "Invalid request payload", err.Error()).
			WriteJSON(w, http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		domain.NewErrorResponse(domain.ErrCodeValidation, "Validation failed", formatValidationError(err)).
			WriteJSON(w, http.StatusBadRequest)
		return false
	}
	return true
}

func formatValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return strings.Join(msgs, "; ")
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// writeError maps a service error onto the API error body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrListingNotFound):
		domain.NewErrorResponse(domain.ErrCodeNotFound, "Listing not found", "").WriteJSON(w, http.StatusNotFound)
	case errors.Is(err, domain.ErrUserNotFound):
		domain.NewErrorResponse(domain.ErrCodeNotFound, "User not found", "").WriteJSON(w, http.StatusNotFound)
	case errors.Is(err, domain.ErrDuplicateUser):
		domain.NewErrorResponse(domain.ErrCodeConflict, "Username or email already in use", "").WriteJSON(w, http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidCredentials):
		domain.NewErrorResponse(domain.ErrCodeUnauthorized, "Invalid credentials", "").WriteJSON(w, http.StatusUnauthorized)
	case errors.Is(err, domain.ErrAccountDisabled):
		domain.NewErrorResponse(domain.ErrCodeForbidden, "Account is not active", "").WriteJSON(w, http.StatusForbidden)
	case errors.Is(err, domain.ErrForbidden):
		domain.NewErrorResponse(domain.ErrCodeForbidden, "Forbidden", err.Error()).WriteJSON(w, http.StatusForbidden)
	default:
		h.logger.Error(r.Context(), "Request failed", "path", r.URL.Path, "error", err.Error())
		domain.NewErrorResponse(domain.ErrCodeInternal, "An unexpected error occurred.", "").
			WriteJSON(w, http.StatusInternalServerError)
	}
}
