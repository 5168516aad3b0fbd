package domain

import (
	"context"
	"time"
)

// DefaultAvatarURL is assigned to users who never uploaded a picture.
const DefaultAvatarURL = "https://fastly.picsum.photos/id/237/200/300.jpg?hmac=TmmQSbShHz9CdQm0NkEjx1Dyh_Y984R9LpNrpvH2D_U"

// AccountStatus tracks the lifecycle of a user account.
type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "active"
	AccountStatusPending AccountStatus = "pending"
	AccountStatusDeleted AccountStatus = "deleted"
)

// User is an account document. PasswordHash never leaves the service.
type User struct {
	ID            string        `json:"_id"`
	Username      string        `json:"username"`
	Email         string        `json:"email"`
	PasswordHash  string        `json:"-"`
	Avatar        string        `json:"avatar"`
	AccountStatus AccountStatus `json:"accountStatus"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// ProfileUpdate holds the optional profile fields; empty strings keep the current value.
type ProfileUpdate struct {
	Username     string
	Avatar       string
	PasswordHash string
}

// UserStore is the authoritative document store for users.
type UserStore interface {
	// Create returns ErrDuplicateUser when the username or email is taken.
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error)
	SetAccountStatus(ctx context.Context, id string, status AccountStatus) error
}

// AuthenticatedUser holds the claims of a verified access token.
// It is added to the request context by the auth middleware.
type AuthenticatedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
