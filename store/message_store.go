package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"folio/api/apperr"
	"folio/api/models"
)

const messageColumns = `id, name, email, subject, message, status, ip_address, user_agent, created_at, updated_at`

type MessageStore struct {
	db *sql.DB
}

func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Create persists msg and fills in its id and timestamps.
func (s *MessageStore) Create(ctx context.Context, msg *models.ContactMessage) error {
	if msg.Status == "" {
		msg.Status = models.MessageUnread
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (name, email, subject, message, status, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, msg.Name, msg.Email, msg.Subject, msg.Message, msg.Status, msg.IPAddress, msg.UserAgent,
	).Scan(&msg.ID, &msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// List returns up to limit messages, newest first. An empty status
// matches every message.
func (s *MessageStore) List(ctx context.Context, status string, limit int) ([]models.ContactMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM messages`
	var args []any
	if status != "" {
		args = append(args, status)
		query += ` WHERE status = $1`
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []models.ContactMessage{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return messages, nil
}

func (s *MessageStore) UpdateStatus(ctx context.Context, id int64, status string) (*models.ContactMessage, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE messages SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+messageColumns, status, id)

	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Message")
		}
		return nil, err
	}
	return msg, nil
}

func scanMessage(row rowScanner) (*models.ContactMessage, error) {
	var m models.ContactMessage
	err := row.Scan(
		&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Status,
		&m.IPAddress, &m.UserAgent, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}
	return &m, nil
}
