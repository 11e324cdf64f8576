// Package service contains the settlement business logic.
//
// Services sit between handlers and repositories. Each one declares the
// narrow store interfaces it consumes so tests can substitute stubs.
package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/go-marketplace/internal/lib/job"
	"github.com/deppfellow/go-marketplace/internal/lib/settlement"
	"github.com/deppfellow/go-marketplace/internal/repository"
	"github.com/deppfellow/go-marketplace/internal/server"
)

// Transactor runs fn inside a database transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Notifier hands a notification to the background queue.
type Notifier interface {
	Notify(ctx context.Context, p job.NotificationPayload) error
}

type Services struct {
	Auth         *AuthService
	Vendor       *VendorService
	Withdrawal   *WithdrawalService
	Earning      *EarningService
	Payment      *PaymentService
	Notification *NotificationService
	Job          *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	policy := settlement.NewPolicy(s.Config.Settlement)

	return &Services{
		Auth:         NewAuthService(s),
		Vendor:       NewVendorService(repos.Vendors),
		Withdrawal:   NewWithdrawalService(s.DB, repos.Vendors, repos.Payments, repos.Withdrawals, s.Job, policy),
		Earning:      NewEarningService(s.DB, repos.Vendors, repos.Bookings, repos.Earnings, policy),
		Payment:      NewPaymentService(s.DB, repos.Payments, repos.Earnings, policy),
		Notification: NewNotificationService(repos.Notifications),
		Job:          s.Job,
	}, nil
}
