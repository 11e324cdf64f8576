package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the settlement state of an end-user payment.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusSuccess  PaymentStatus = "SUCCESS"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Payment is an end user's payment for a booking, attributed to a vendor.
type Payment struct {
	Base
	BookingID uuid.UUID       `json:"bookingId" db:"booking_id"`
	VendorID  uuid.UUID       `json:"vendorId" db:"vendor_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Status    PaymentStatus   `json:"status" db:"status"`
}
