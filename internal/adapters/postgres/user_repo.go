package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

const usersTable = "users"

var userColumns = []string{
	"id", "username", "email", "password_hash", "avatar", "account_status", "created_at", "updated_at",
}

// UserRepo implements domain.UserStore on Postgres.
type UserRepo struct {
	db  *DB
	now func() time.Time
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db, now: time.Now}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var status string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Avatar, &status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.AccountStatus = domain.AccountStatus(status)
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Avatar == "" {
		user.Avatar = domain.DefaultAvatarURL
	}
	if user.AccountStatus == "" {
		user.AccountStatus = domain.AccountStatusActive
	}
	now := r.now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	sqlStr, args, err := r.db.qb().Insert(usersTable).
		Columns(userColumns...).
		Values(user.ID, user.Username, user.Email, user.PasswordHash, user.Avatar,
			string(user.AccountStatus), user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}
	if _, err := r.db.pool.Exec(ctx, sqlStr, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateUser
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, where sq.Sqlizer) (*domain.User, error) {
	sqlStr, args, err := r.db.qb().Select(userColumns...).From(usersTable).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user: %w", err)
	}
	u, err := scanUser(r.db.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, sq.Expr("lower(email) = lower(?)", email))
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	q := r.db.qb().Update(usersTable).
		Set("updated_at", r.now().UTC()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", "))
	if update.Username != "" {
		q = q.Set("username", update.Username)
	}
	if update.Avatar != "" {
		q = q.Set("avatar", update.Avatar)
	}
	if update.PasswordHash != "" {
		q = q.Set("password_hash", update.PasswordHash)
	}
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update user: %w", err)
	}
	u, err := scanUser(r.db.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, domain.ErrUserNotFound
		case isUniqueViolation(err):
			return nil, domain.ErrDuplicateUser
		}
		return nil, fmt.Errorf("update user '%s': %w", id, err)
	}
	return u, nil
}

func (r *UserRepo) SetAccountStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	sqlStr, args, err := r.db.qb().Update(usersTable).
		Set("account_status", string(status)).
		Set("updated_at", r.now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build user status update: %w", err)
	}
	tag, err := r.db.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("update user status '%s': %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
