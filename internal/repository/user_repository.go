package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clubhouse/internal/domain"
)

// UserRepository defines persistence access for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	SetMemberStatus(ctx context.Context, id string, status domain.MemberStatus) error
}

type userRepository struct {
	db DB
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (first_name, last_name, username, password_hash, member_status, admin)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`

	return r.db.QueryRow(ctx, query,
		user.FirstName,
		user.LastName,
		user.Username,
		user.PasswordHash,
		user.MemberStatus,
		user.Admin,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, first_name, last_name, username, password_hash, member_status, admin, created_at
        FROM users WHERE id=$1`

	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `
        SELECT id, first_name, last_name, username, password_hash, member_status, admin, created_at
        FROM users WHERE username=$1`

	return r.scanOne(r.db.QueryRow(ctx, query, username))
}

// SetMemberStatus performs a targeted partial update; no other columns are
// touched.
func (r *userRepository) SetMemberStatus(ctx context.Context, id string, status domain.MemberStatus) error {
	const query = `UPDATE users SET member_status=$1 WHERE id=$2`

	cmd, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.PasswordHash,
		&user.MemberStatus,
		&user.Admin,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
