package store

import (
	"context"
	"errors"
	"testing"

	"folio/api/apperr"
	"folio/api/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hash := []byte("$2a$10$hash")

	mock.ExpectQuery("INSERT INTO users .+ ON CONFLICT \\(email\\) DO UPDATE").
		WithArgs("admin@example.com", "Admin", models.RoleAdmin, hash).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role", "created_at", "updated_at"}).
			AddRow(1, "admin@example.com", "Admin", "admin", fixedNow, fixedNow))
	mock.ExpectQuery("SELECT id, email, name, role, hashed_password").
		WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role", "hashed_password", "created_at", "updated_at"}).
			AddRow(1, "admin@example.com", "Admin", "admin", hash, fixedNow, fixedNow))
	mock.ExpectQuery("SELECT id, email, name, role, hashed_password").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role", "hashed_password", "created_at", "updated_at"}))

	s := NewUserStore(db)

	admin, err := s.UpsertAdmin(context.Background(), "admin@example.com", "Admin", hash)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	user, err := s.GetUserByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, hash, user.HashedPassword)

	_, err = s.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
