package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/go-marketplace/internal/model"
)

const vendorColumns = `id, user_id, business_name, email, device_token, created_at, updated_at`

type VendorRepository struct {
	db DBTX
}

func NewVendorRepository(db DBTX) *VendorRepository {
	return &VendorRepository{db: db}
}

func (r *VendorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	rows, err := r.db.Query(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to query vendor %s: %w", id, err)
	}
	return collectOne[model.Vendor](rows, "vendor")
}

func (r *VendorRepository) GetByUserID(ctx context.Context, userID string) (*model.Vendor, error) {
	rows, err := r.db.Query(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE user_id = @user_id`, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to query vendor for user %s: %w", userID, err)
	}
	return collectOne[model.Vendor](rows, "vendor")
}

// LockForUpdate takes a row lock on the vendor for the rest of the
// transaction, serializing concurrent withdrawal requests from one vendor.
func (r *VendorRepository) LockForUpdate(ctx context.Context, q DBTX, id uuid.UUID) (*model.Vendor, error) {
	rows, err := q.Query(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = @id FOR UPDATE`, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to lock vendor %s: %w", id, err)
	}
	return collectOne[model.Vendor](rows, "vendor")
}

func (r *VendorRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM vendors ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to collect vendor ids: %w", err)
	}
	return ids, nil
}
