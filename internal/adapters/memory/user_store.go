package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

// UserStore is an in-process domain.UserStore.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
	now   func() time.Time
}

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User), now: time.Now}
}

func (s *UserStore) takenLocked(id, username, email string) bool {
	for _, u := range s.users {
		if u.ID == id {
			continue
		}
		if (username != "" && u.Username == username) || (email != "" && strings.EqualFold(u.Email, email)) {
			return true
		}
	}
	return false
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.takenLocked("", user.Username, user.Email) {
		return domain.ErrDuplicateUser
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Avatar == "" {
		user.Avatar = domain.DefaultAvatarURL
	}
	if user.AccountStatus == "" {
		user.AccountStatus = domain.AccountStatusActive
	}
	now := s.now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *UserStore) UpdateProfile(_ context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if s.takenLocked(id, update.Username, "") {
		return nil, domain.ErrDuplicateUser
	}
	if update.Username != "" {
		u.Username = update.Username
	}
	if update.Avatar != "" {
		u.Avatar = update.Avatar
	}
	if update.PasswordHash != "" {
		u.PasswordHash = update.PasswordHash
	}
	u.UpdatedAt = s.now().UTC()
	s.users[id] = u
	return &u, nil
}

func (s *UserStore) SetAccountStatus(_ context.Context, id string, status domain.AccountStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.AccountStatus = status
	u.UpdatedAt = s.now().UTC()
	s.users[id] = u
	return nil
}
