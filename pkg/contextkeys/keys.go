package contextkeys

// contextKey is an unexported type for context keys to avoid collisions.
type contextKey string

const (
	// RequestIDKey is the context key for storing and retrieving a request ID.
	RequestIDKey contextKey = "request_id"

	// UserIDKey is the context key for the authenticated user's ID taken from the access token.
	UserIDKey contextKey = "user_id"

	// AuthUserContextKey is the context key for storing the entire domain.AuthenticatedUser struct.
	AuthUserContextKey contextKey = "auth_user"
)

// String makes contextKey satisfy fmt.Stringer to help with debugging/logging of keys themselves.
func (c contextKey) String() string {
	return string(c)
}
