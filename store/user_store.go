package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"folio/api/apperr"
	"folio/api/models"
)

type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore instance.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// UpsertAdmin creates the admin account or resets its name, role and
// password when the email already exists.
func (s *UserStore) UpsertAdmin(ctx context.Context, email, name string, hashedPassword []byte) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, name, role, hashed_password)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
			SET name = EXCLUDED.name, role = EXCLUDED.role,
				hashed_password = EXCLUDED.hashed_password, updated_at = NOW()
		RETURNING id, email, name, role, created_at, updated_at
	`, email, name, models.RoleAdmin, hashedPassword).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert admin %s: %w", email, err)
	}
	return user, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, role, hashed_password, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}
