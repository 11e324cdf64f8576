package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/go-marketplace/internal/model"
	"github.com/deppfellow/go-marketplace/internal/server"
)

// Repositories is the container handed to the service layer.
type Repositories struct {
	Vendors       *VendorRepository
	Bookings      *BookingRepository
	Payments      *PaymentRepository
	Withdrawals   *WithdrawalRepository
	Earnings      *EarningRepository
	Notifications *NotificationRepository
}

func NewRepositories(s *server.Server) *Repositories {
	pool := s.DB.Pool

	return &Repositories{
		Vendors:       NewVendorRepository(pool),
		Bookings:      NewBookingRepository(pool),
		Payments:      NewPaymentRepository(pool),
		Withdrawals:   NewWithdrawalRepository(pool),
		Earnings:      NewEarningRepository(pool),
		Notifications: NewNotificationRepository(pool),
	}
}

// Ledger pairs the payment and earnings aggregates compared by the
// reconciliation task.
type Ledger struct {
	payments *PaymentRepository
	earnings *EarningRepository
}

func (r *Repositories) Ledger() *Ledger {
	return &Ledger{payments: r.Payments, earnings: r.Earnings}
}

func (l *Ledger) RevenueByVendor(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error) {
	return l.payments.RevenueByVendor(ctx)
}

func (l *Ledger) TotalsByVendor(ctx context.Context) (map[uuid.UUID]model.LedgerTotals, error) {
	return l.earnings.TotalsByVendor(ctx)
}
