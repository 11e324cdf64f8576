package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/go-marketplace/internal/model"
)

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) GetByID(ctx context.Context, q DBTX, id uuid.UUID) (*model.Booking, error) {
	rows, err := q.Query(ctx, `
		SELECT id, vendor_id, customer_id, service_name, status, created_at, updated_at
		FROM bookings
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to query booking %s: %w", id, err)
	}
	return collectOne[model.Booking](rows, "booking")
}
