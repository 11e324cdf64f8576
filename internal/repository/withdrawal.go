package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/go-marketplace/internal/model"
)

const withdrawalColumns = `id, vendor_id, amount, gross_amount, commission_amount, status,
	bank_account, notes, admin_message, admin_id, requested_at, processed_at, completed_at,
	created_at, updated_at`

type WithdrawalRepository struct {
	db DBTX
}

func NewWithdrawalRepository(db DBTX) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// WithdrawalFilter narrows withdrawal listings. Zero values match everything.
type WithdrawalFilter struct {
	VendorID *uuid.UUID
	Status   *model.WithdrawalStatus
	Page     Page
}

func (r *WithdrawalRepository) Create(ctx context.Context, q DBTX, w *model.Withdrawal) (*model.Withdrawal, error) {
	rows, err := q.Query(ctx, `
		INSERT INTO withdrawals (vendor_id, amount, gross_amount, commission_amount, status, bank_account, notes, requested_at)
		VALUES (@vendor_id, @amount, @gross_amount, @commission_amount, @status, @bank_account, @notes, NOW())
		RETURNING `+withdrawalColumns, pgx.NamedArgs{
		"vendor_id":         w.VendorID,
		"amount":            w.Amount,
		"gross_amount":      w.GrossAmount,
		"commission_amount": w.CommissionAmount,
		"status":            model.WithdrawalStatusPending,
		"bank_account":      w.BankAccount,
		"notes":             w.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert withdrawal: %w", err)
	}
	return collectOne[model.Withdrawal](rows, "withdrawal")
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error) {
	rows, err := r.db.Query(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to query withdrawal %s: %w", id, err)
	}
	return collectOne[model.Withdrawal](rows, "withdrawal")
}

func (r *WithdrawalRepository) GetForUpdate(ctx context.Context, q DBTX, id uuid.UUID) (*model.Withdrawal, error) {
	rows, err := q.Query(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = @id FOR UPDATE`, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to lock withdrawal %s: %w", id, err)
	}
	return collectOne[model.Withdrawal](rows, "withdrawal")
}

// UpdateStatus persists a transition: status, admin fields and timestamps
// are written in a single statement.
func (r *WithdrawalRepository) UpdateStatus(ctx context.Context, q DBTX, w *model.Withdrawal) (*model.Withdrawal, error) {
	rows, err := q.Query(ctx, `
		UPDATE withdrawals
		SET status = @status,
			admin_id = @admin_id,
			admin_message = @admin_message,
			processed_at = @processed_at,
			completed_at = @completed_at,
			updated_at = NOW()
		WHERE id = @id
		RETURNING `+withdrawalColumns, pgx.NamedArgs{
		"id":            w.ID,
		"status":        w.Status,
		"admin_id":      w.AdminID,
		"admin_message": w.AdminMessage,
		"processed_at":  w.ProcessedAt,
		"completed_at":  w.CompletedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update withdrawal %s: %w", w.ID, err)
	}
	return collectOne[model.Withdrawal](rows, "withdrawal")
}

func (r *WithdrawalRepository) Delete(ctx context.Context, q DBTX, id uuid.UUID) error {
	if _, err := q.Exec(ctx, `DELETE FROM withdrawals WHERE id = @id`, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("failed to delete withdrawal %s: %w", id, err)
	}
	return nil
}

// SumByStatuses returns Σ amount for the vendor's withdrawals in any of the
// given statuses.
func (r *WithdrawalRepository) SumByStatuses(ctx context.Context, q DBTX, vendorID uuid.UUID, statuses ...model.WithdrawalStatus) (decimal.Decimal, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	var total decimal.Decimal
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM withdrawals
		WHERE vendor_id = @vendor_id AND status = ANY(@statuses)
	`, pgx.NamedArgs{
		"vendor_id": vendorID,
		"statuses":  names,
	}).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum withdrawals for vendor %s: %w", vendorID, err)
	}
	return total, nil
}

// List returns one page of withdrawals, newest request first, and the total
// number of matching rows.
func (r *WithdrawalRepository) List(ctx context.Context, filter WithdrawalFilter) ([]model.Withdrawal, int, error) {
	var conditions []string
	args := pgx.NamedArgs{}

	if filter.VendorID != nil {
		conditions = append(conditions, "vendor_id = @vendor_id")
		args["vendor_id"] = *filter.VendorID
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = @status")
		args["status"] = *filter.Status
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM withdrawals`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count withdrawals: %w", err)
	}

	page := filter.Page.Normalize()
	args["limit"] = page.Limit
	args["offset"] = page.Offset()

	rows, err := r.db.Query(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals`+where+`
		ORDER BY requested_at DESC
		LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list withdrawals: %w", err)
	}

	items, err := collectAll[model.Withdrawal](rows, "withdrawal")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Stats aggregates count and Σ amount per status.
func (r *WithdrawalRepository) Stats(ctx context.Context) ([]model.WithdrawalStatusStats, error) {
	rows, err := r.db.Query(ctx, `
		SELECT status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount
		FROM withdrawals
		GROUP BY status
		ORDER BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate withdrawal stats: %w", err)
	}
	return collectAll[model.WithdrawalStatusStats](rows, "withdrawal stats")
}
