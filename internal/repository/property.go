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

type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)
}

type propertyRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewPropertyRepository(db *pgxpool.Pool, log logger.Logger) PropertyRepository {
	return &propertyRepository{db: db, log: log}
}

func (r *propertyRepository) Create(ctx context.Context, p *domain.Property) error {
	query := `
		INSERT INTO properties (id, owner_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, p.ID, p.OwnerID, p.Title, p.CreatedAt, p.UpdatedAt).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to create property", "error", err, "owner_id", p.OwnerID)
		return fmt.Errorf("create property: %w", err)
	}

	return nil
}

func (r *propertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	query := `
		SELECT id, owner_id, title, created_at, updated_at
		FROM properties
		WHERE id = $1
	`

	p := &domain.Property{}
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.OwnerID, &p.Title, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPropertyNotFound
		}
		r.log.Error("Failed to get property", "error", err, "property_id", id)
		return nil, fmt.Errorf("get property: %w", err)
	}

	return p, nil
}
