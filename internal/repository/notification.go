package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"realty_messaging/internal/domain"
	apperrors "realty_messaging/pkg/errors"
	"realty_messaging/pkg/logger"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	// ListByRecipient returns the recipient's notifications, newest first.
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type notificationRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, log logger.Logger) NotificationRepository {
	return &notificationRepository{db: db, log: log}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, sender_id, property_id, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		n.ID, n.RecipientID, n.SenderID, n.PropertyID, n.Message, n.Read, n.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create notification", "error", err, "recipient_id", n.RecipientID)
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	query := `
		SELECT id, recipient_id, sender_id, property_id, message, read, created_at
		FROM notifications
		WHERE id = $1
	`

	n := &domain.Notification{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.RecipientID, &n.SenderID, &n.PropertyID, &n.Message, &n.Read, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotificationNotFound
		}
		r.log.Error("Failed to get notification", "error", err)
		return nil, fmt.Errorf("get notification: %w", err)
	}

	return n, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error) {
	query := `
		SELECT id, recipient_id, sender_id, property_id, message, read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, recipientID)
	if err != nil {
		r.log.Error("Failed to list notifications", "error", err)
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	notifications, err := pgx.CollectRows(rows, scanNotification)
	if err != nil {
		r.log.Error("Failed to scan notifications", "error", err)
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to mark notification read", "error", err)
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}

	return nil
}

func scanNotification(row pgx.CollectableRow) (*domain.Notification, error) {
	n := &domain.Notification{}
	err := row.Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.PropertyID, &n.Message, &n.Read, &n.CreatedAt)
	return n, err
}
