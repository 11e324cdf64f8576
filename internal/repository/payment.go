package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/go-marketplace/internal/model"
)

const paymentColumns = `id, booking_id, vendor_id, amount, status, created_at, updated_at`

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// SumSuccessfulByVendor is the vendor's total revenue: Σ amount over
// SUCCESS payments, summed at NUMERIC precision.
func (r *PaymentRepository) SumSuccessfulByVendor(ctx context.Context, q DBTX, vendorID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE vendor_id = @vendor_id AND status = @status
	`, pgx.NamedArgs{
		"vendor_id": vendorID,
		"status":    model.PaymentStatusSuccess,
	}).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments for vendor %s: %w", vendorID, err)
	}
	return total, nil
}

// RevenueByVendor returns Σ SUCCESS payment amounts keyed by vendor.
func (r *PaymentRepository) RevenueByVendor(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT vendor_id, SUM(amount)
		FROM payments
		WHERE status = @status
		GROUP BY vendor_id
	`, pgx.NamedArgs{"status": model.PaymentStatusSuccess})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	defer rows.Close()

	revenue := make(map[uuid.UUID]decimal.Decimal)
	for rows.Next() {
		var (
			vendorID uuid.UUID
			total    decimal.Decimal
		)
		if err := rows.Scan(&vendorID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan revenue row: %w", err)
		}
		revenue[vendorID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate revenue rows: %w", err)
	}
	return revenue, nil
}

func (r *PaymentRepository) GetForUpdate(ctx context.Context, q DBTX, id uuid.UUID) (*model.Payment, error) {
	rows, err := q.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = @id FOR UPDATE`, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to lock payment %s: %w", id, err)
	}
	return collectOne[model.Payment](rows, "payment")
}

func (r *PaymentRepository) MarkSucceeded(ctx context.Context, q DBTX, id uuid.UUID) (*model.Payment, error) {
	rows, err := q.Query(ctx, `
		UPDATE payments
		SET status = @status, updated_at = NOW()
		WHERE id = @id
		RETURNING `+paymentColumns, pgx.NamedArgs{
		"id":     id,
		"status": model.PaymentStatusSuccess,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark payment %s succeeded: %w", id, err)
	}
	return collectOne[model.Payment](rows, "payment")
}
