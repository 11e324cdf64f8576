package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/go-marketplace/internal/errs"
	"github.com/deppfellow/go-marketplace/internal/model"
)

const earningColumns = `id, booking_id, vendor_id, total_paid, commission_percentage,
	commission_amount, final_amount, earned_at`

type EarningRepository struct {
	db DBTX
}

func NewEarningRepository(db DBTX) *EarningRepository {
	return &EarningRepository{db: db}
}

func (r *EarningRepository) Create(ctx context.Context, q DBTX, e *model.VendorEarning) (*model.VendorEarning, error) {
	rows, err := q.Query(ctx, `
		INSERT INTO vendor_earnings (booking_id, vendor_id, total_paid, commission_percentage, commission_amount, final_amount)
		VALUES (@booking_id, @vendor_id, @total_paid, @commission_percentage, @commission_amount, @final_amount)
		RETURNING `+earningColumns, pgx.NamedArgs{
		"booking_id":            e.BookingID,
		"vendor_id":             e.VendorID,
		"total_paid":            e.TotalPaid,
		"commission_percentage": e.CommissionPercentage,
		"commission_amount":     e.CommissionAmount,
		"final_amount":          e.FinalAmount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert vendor earning: %w", err)
	}
	return collectOne[model.VendorEarning](rows, "earning")
}

func (r *EarningRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, page Page) ([]model.VendorEarning, int, error) {
	return r.list(ctx, " WHERE vendor_id = @vendor_id", pgx.NamedArgs{"vendor_id": vendorID}, page)
}

func (r *EarningRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.VendorEarning, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+earningColumns+`
		FROM vendor_earnings
		WHERE booking_id = @booking_id
		ORDER BY earned_at DESC
	`, pgx.NamedArgs{"booking_id": bookingID})
	if err != nil {
		return nil, fmt.Errorf("failed to list earnings for booking %s: %w", bookingID, err)
	}
	return collectAll[model.VendorEarning](rows, "earning")
}

func (r *EarningRepository) ListAll(ctx context.Context, page Page) ([]model.VendorEarning, int, error) {
	return r.list(ctx, "", pgx.NamedArgs{}, page)
}

func (r *EarningRepository) list(ctx context.Context, where string, args pgx.NamedArgs, page Page) ([]model.VendorEarning, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM vendor_earnings`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count earnings: %w", err)
	}

	page = page.Normalize()
	args["limit"] = page.Limit
	args["offset"] = page.Offset()

	rows, err := r.db.Query(ctx, `SELECT `+earningColumns+` FROM vendor_earnings`+where+`
		ORDER BY earned_at DESC
		LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list earnings: %w", err)
	}

	items, err := collectAll[model.VendorEarning](rows, "earning")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *EarningRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM vendor_earnings WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete earning %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("earning")
	}
	return nil
}

// TotalsByVendor aggregates the ledger per vendor along with its row count.
func (r *EarningRepository) TotalsByVendor(ctx context.Context) (map[uuid.UUID]model.LedgerTotals, error) {
	rows, err := r.db.Query(ctx, `
		SELECT vendor_id,
			COALESCE(SUM(total_paid), 0) AS total_paid,
			COALESCE(SUM(commission_amount), 0) AS commission_amount,
			COALESCE(SUM(final_amount), 0) AS final_amount,
			COUNT(*) AS row_count
		FROM vendor_earnings
		GROUP BY vendor_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate earnings: %w", err)
	}

	aggregates, err := collectAll[model.LedgerTotals](rows, "ledger aggregate")
	if err != nil {
		return nil, err
	}

	byVendor := make(map[uuid.UUID]model.LedgerTotals, len(aggregates))
	for _, a := range aggregates {
		byVendor[a.VendorID] = a
	}
	return byVendor, nil
}
