package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalStatus is the lifecycle state of a withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "PENDING"
	WithdrawalStatusProcessing WithdrawalStatus = "PROCESSING"
	WithdrawalStatusApproved   WithdrawalStatus = "APPROVED"
	WithdrawalStatusCompleted  WithdrawalStatus = "COMPLETED"
	WithdrawalStatusRejected   WithdrawalStatus = "REJECTED"
)

// withdrawalTransitions is the complete set of legal moves. A status absent
// from the map, or mapped to nothing, is terminal.
var withdrawalTransitions = map[WithdrawalStatus][]WithdrawalStatus{
	WithdrawalStatusPending:    {WithdrawalStatusProcessing, WithdrawalStatusRejected},
	WithdrawalStatusProcessing: {WithdrawalStatusApproved, WithdrawalStatusCompleted, WithdrawalStatusRejected},
	WithdrawalStatusApproved:   {WithdrawalStatusCompleted},
	WithdrawalStatusCompleted:  nil,
	WithdrawalStatusRejected:   nil,
}

// WithdrawalStatuses lists every status in lifecycle order.
func WithdrawalStatuses() []WithdrawalStatus {
	return []WithdrawalStatus{
		WithdrawalStatusPending,
		WithdrawalStatusProcessing,
		WithdrawalStatusApproved,
		WithdrawalStatusCompleted,
		WithdrawalStatusRejected,
	}
}

// Valid reports whether s is a known status.
func (s WithdrawalStatus) Valid() bool {
	_, ok := withdrawalTransitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s WithdrawalStatus) IsTerminal() bool {
	return s.Valid() && len(withdrawalTransitions[s]) == 0
}

// CanTransitionTo reports whether s -> target is in the transition table.
func (s WithdrawalStatus) CanTransitionTo(target WithdrawalStatus) bool {
	for _, next := range withdrawalTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s in one step.
func (s WithdrawalStatus) NextStatuses() []WithdrawalStatus {
	next := withdrawalTransitions[s]
	out := make([]WithdrawalStatus, len(next))
	copy(out, next)
	return out
}

// ReservesFunds reports whether a withdrawal in s counts against the
// vendor's available balance.
func (s WithdrawalStatus) ReservesFunds() bool {
	switch s {
	case WithdrawalStatusPending, WithdrawalStatusProcessing, WithdrawalStatusApproved, WithdrawalStatusCompleted:
		return true
	}
	return false
}

// Withdrawal is a vendor's request to cash out.
//
// Amount is the net sum the vendor receives; GrossAmount and CommissionAmount
// are derived from it with the commission rate in force at request time.
type Withdrawal struct {
	Base
	VendorID         uuid.UUID        `json:"vendorId" db:"vendor_id"`
	Amount           decimal.Decimal  `json:"amount" db:"amount"`
	GrossAmount      decimal.Decimal  `json:"grossAmount" db:"gross_amount"`
	CommissionAmount decimal.Decimal  `json:"commissionAmount" db:"commission_amount"`
	Status           WithdrawalStatus `json:"status" db:"status"`
	BankAccount      *string          `json:"bankAccount,omitempty" db:"bank_account"`
	Notes            string           `json:"notes" db:"notes"`
	AdminMessage     string           `json:"adminMessage" db:"admin_message"`
	AdminID          *string          `json:"adminId,omitempty" db:"admin_id"`
	RequestedAt      time.Time        `json:"requestedAt" db:"requested_at"`
	ProcessedAt      *time.Time       `json:"processedAt,omitempty" db:"processed_at"`
	CompletedAt      *time.Time       `json:"completedAt,omitempty" db:"completed_at"`
}

// WithdrawalStatusStats aggregates withdrawals sharing one status.
type WithdrawalStatusStats struct {
	Status      WithdrawalStatus `json:"status" db:"status"`
	Count       int              `json:"count" db:"count"`
	TotalAmount decimal.Decimal  `json:"totalAmount" db:"total_amount"`
}

// WithdrawalStats is the admin overview of all withdrawals.
type WithdrawalStats struct {
	ByStatus    []WithdrawalStatusStats `json:"byStatus"`
	TotalCount  int                     `json:"totalCount"`
	TotalAmount decimal.Decimal         `json:"totalAmount"`
}
