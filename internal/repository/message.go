package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"realty_messaging/internal/domain"
	"realty_messaging/pkg/logger"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	// ListByProperty returns every message about the property, oldest first.
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*domain.Message, error)
	// ListThread returns the messages between a and b about the property, oldest first.
	ListThread(ctx context.Context, propertyID, a, b uuid.UUID) ([]*domain.Message, error)
	// ListByParticipant returns every message userID sent or received, newest first.
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error)
	// DeleteThread removes both directions of the a/b conversation about the property.
	DeleteThread(ctx context.Context, propertyID, a, b uuid.UUID) (int64, error)
}

type messageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMessageRepository(db *pgxpool.Pool, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

const messageColumns = `id, sender_id, receiver_id, property_id, text, created_at`

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, property_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		message.ID, message.SenderID, message.ReceiverID, message.PropertyID,
		message.Text, message.CreatedAt,
	).Scan(&message.CreatedAt)
	if err != nil {
		r.log.Error("Failed to create message", "error", err, "property_id", message.PropertyID)
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

func (r *messageRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE property_id = $1
		ORDER BY created_at ASC, id ASC
	`
	return r.list(ctx, "list property messages", query, propertyID)
}

func (r *messageRepository) ListThread(ctx context.Context, propertyID, a, b uuid.UUID) ([]*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE property_id = $1
		  AND ((sender_id = $2 AND receiver_id = $3) OR (sender_id = $3 AND receiver_id = $2))
		ORDER BY created_at ASC, id ASC
	`
	return r.list(ctx, "list thread messages", query, propertyID, a, b)
}

func (r *messageRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, "list participant messages", query, userID)
}

func (r *messageRepository) DeleteThread(ctx context.Context, propertyID, a, b uuid.UUID) (int64, error) {
	query := `
		DELETE FROM messages
		WHERE property_id = $1
		  AND ((sender_id = $2 AND receiver_id = $3) OR (sender_id = $3 AND receiver_id = $2))
	`

	tag, err := r.db.Exec(ctx, query, propertyID, a, b)
	if err != nil {
		r.log.Error("Failed to delete thread", "error", err, "property_id", propertyID)
		return 0, fmt.Errorf("delete thread: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *messageRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]*domain.Message, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query messages", "op", op, "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	messages, err := pgx.CollectRows(rows, scanMessage)
	if err != nil {
		r.log.Error("Failed to scan messages", "op", op, "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return messages, nil
}

func scanMessage(row pgx.CollectableRow) (*domain.Message, error) {
	message := &domain.Message{}
	err := row.Scan(
		&message.ID, &message.SenderID, &message.ReceiverID, &message.PropertyID,
		&message.Text, &message.CreatedAt,
	)
	return message, err
}
