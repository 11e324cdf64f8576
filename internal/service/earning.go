package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/go-marketplace/internal/lib/settlement"
	"github.com/deppfellow/go-marketplace/internal/logger"
	"github.com/deppfellow/go-marketplace/internal/model"
	"github.com/deppfellow/go-marketplace/internal/repository"
)

type earningVendorStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
}

type bookingStore interface {
	GetByID(ctx context.Context, q repository.DBTX, id uuid.UUID) (*model.Booking, error)
}

type earningStore interface {
	Create(ctx context.Context, q repository.DBTX, e *model.VendorEarning) (*model.VendorEarning, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, page repository.Page) ([]model.VendorEarning, int, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.VendorEarning, error)
	ListAll(ctx context.Context, page repository.Page) ([]model.VendorEarning, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EarningService maintains the per-booking earnings ledger.
type EarningService struct {
	tx       Transactor
	vendors  earningVendorStore
	bookings bookingStore
	earnings earningStore
	policy   settlement.Policy
}

func NewEarningService(tx Transactor, vendors earningVendorStore, bookings bookingStore, earnings earningStore, policy settlement.Policy) *EarningService {
	return &EarningService{
		tx:       tx,
		vendors:  vendors,
		bookings: bookings,
		earnings: earnings,
		policy:   policy,
	}
}

// RecordEarningInput describes one ledger row. Omitted split fields are
// derived from TotalPaid with the configured commission.
type RecordEarningInput struct {
	BookingID            uuid.UUID
	VendorID             uuid.UUID
	TotalPaid            decimal.Decimal
	CommissionPercentage *decimal.Decimal
	CommissionAmount     *decimal.Decimal
	FinalAmount          *decimal.Decimal
}

// Record appends an immutable earnings row after checking that the booking
// and vendor exist.
func (s *EarningService) Record(ctx context.Context, input RecordEarningInput) (*model.VendorEarning, error) {
	if _, err := s.vendors.GetByID(ctx, input.VendorID); err != nil {
		return nil, err
	}

	earning := s.buildEarning(input)

	var created *model.VendorEarning
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.bookings.GetByID(ctx, tx, input.BookingID); err != nil {
			return err
		}

		var err error
		created, err = s.earnings.Create(ctx, tx, earning)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("earning_id", created.ID.String()).
		Str("booking_id", created.BookingID.String()).
		Str("final_amount", created.FinalAmount.StringFixed(2)).
		Msg("earning recorded")
	return created, nil
}

func (s *EarningService) buildEarning(input RecordEarningInput) *model.VendorEarning {
	total := input.TotalPaid.Round(settlement.MoneyPlaces)

	percentage := s.policy.CommissionPercentage()
	if input.CommissionPercentage != nil {
		percentage = input.CommissionPercentage.Round(settlement.MoneyPlaces)
	}

	commission := total.Mul(percentage).Div(decimal.NewFromInt(100)).Round(settlement.MoneyPlaces)
	if input.CommissionAmount != nil {
		commission = input.CommissionAmount.Round(settlement.MoneyPlaces)
	}

	final := total.Sub(commission)
	if input.FinalAmount != nil {
		final = input.FinalAmount.Round(settlement.MoneyPlaces)
	}

	return &model.VendorEarning{
		BookingID:            input.BookingID,
		VendorID:             input.VendorID,
		TotalPaid:            total,
		CommissionPercentage: percentage,
		CommissionAmount:     commission,
		FinalAmount:          final,
	}
}

func (s *EarningService) ListByVendor(ctx context.Context, vendorID uuid.UUID, page repository.Page) (*model.PaginatedResponse[model.VendorEarning], error) {
	page = page.Normalize()
	items, total, err := s.earnings.ListByVendor(ctx, vendorID, page)
	if err != nil {
		return nil, err
	}
	return model.NewPaginatedResponse(items, page.Page, page.Limit, total), nil
}

func (s *EarningService) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.VendorEarning, error) {
	items, err := s.earnings.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.VendorEarning{}
	}
	return items, nil
}

func (s *EarningService) ListAll(ctx context.Context, page repository.Page) (*model.PaginatedResponse[model.VendorEarning], error) {
	page = page.Normalize()
	items, total, err := s.earnings.ListAll(ctx, page)
	if err != nil {
		return nil, err
	}
	return model.NewPaginatedResponse(items, page.Page, page.Limit, total), nil
}

// Delete removes a ledger row as an admin correction. Balances are derived
// from payments and withdrawals, so nothing is recomputed.
func (s *EarningService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.earnings.Delete(ctx, id); err != nil {
		return err
	}

	logger.FromContext(ctx).Warn().
		Str("earning_id", id.String()).
		Msg("earning deleted by admin")
	return nil
}
