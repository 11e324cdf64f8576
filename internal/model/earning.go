package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorEarning is an immutable ledger row capturing the commission split of
// one paid booking at the time it was earned.
type VendorEarning struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	BookingID            uuid.UUID       `json:"bookingId" db:"booking_id"`
	VendorID             uuid.UUID       `json:"vendorId" db:"vendor_id"`
	TotalPaid            decimal.Decimal `json:"totalPaid" db:"total_paid"`
	CommissionPercentage decimal.Decimal `json:"commissionPercentage" db:"commission_percentage"`
	CommissionAmount     decimal.Decimal `json:"commissionAmount" db:"commission_amount"`
	FinalAmount          decimal.Decimal `json:"finalAmount" db:"final_amount"`
	EarnedAt             time.Time       `json:"earnedAt" db:"earned_at"`
}

// LedgerTotals is the ledger aggregate for one vendor.
type LedgerTotals struct {
	VendorID         uuid.UUID       `db:"vendor_id"`
	TotalPaid        decimal.Decimal `db:"total_paid"`
	CommissionAmount decimal.Decimal `db:"commission_amount"`
	FinalAmount      decimal.Decimal `db:"final_amount"`
	RowCount         int             `db:"row_count"`
}
