package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"chirp/internal/auth"
	"chirp/pkg/platform/sentinel"
)

// uniqueViolation is the PostgreSQL error code raised by the unique index on
// lower(email).
const uniqueViolation = "23505"

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, u *auth.User) error {
	const query = `
		INSERT INTO users (id, full_name, email, password_hash, profile_pic, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.FullName, u.Email, u.PasswordHash, u.ProfilePic, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	const query = `
		SELECT id, full_name, email, password_hash, profile_pic, created_at, updated_at
		FROM users WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id), "find user by id")
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	const query = `
		SELECT id, full_name, email, password_hash, profile_pic, created_at, updated_at
		FROM users WHERE lower(email) = lower($1)`
	return s.scanOne(s.db.QueryRowContext(ctx, query, email), "find user by email")
}

func (s *PostgresStore) UpdateProfilePic(ctx context.Context, id, url string) (*auth.User, error) {
	const query = `
		UPDATE users SET profile_pic = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, full_name, email, password_hash, profile_pic, created_at, updated_at`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id, url), "update profile pic")
}

func (s *PostgresStore) ListOthers(ctx context.Context, excludeID string) ([]*auth.User, error) {
	const query = `
		SELECT id, full_name, email, password_hash, profile_pic, created_at, updated_at
		FROM users WHERE id <> $1
		ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		var u auth.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.ProfilePic, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) scanOne(row *sql.Row, op string) (*auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.ProfilePic, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}
