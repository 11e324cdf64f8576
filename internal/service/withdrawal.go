package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/go-marketplace/internal/errs"
	"github.com/deppfellow/go-marketplace/internal/lib/job"
	"github.com/deppfellow/go-marketplace/internal/lib/settlement"
	"github.com/deppfellow/go-marketplace/internal/logger"
	"github.com/deppfellow/go-marketplace/internal/model"
	"github.com/deppfellow/go-marketplace/internal/repository"
)

type withdrawalVendorStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
	LockForUpdate(ctx context.Context, q repository.DBTX, id uuid.UUID) (*model.Vendor, error)
}

type revenueStore interface {
	SumSuccessfulByVendor(ctx context.Context, q repository.DBTX, vendorID uuid.UUID) (decimal.Decimal, error)
}

type withdrawalStore interface {
	Create(ctx context.Context, q repository.DBTX, w *model.Withdrawal) (*model.Withdrawal, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error)
	GetForUpdate(ctx context.Context, q repository.DBTX, id uuid.UUID) (*model.Withdrawal, error)
	UpdateStatus(ctx context.Context, q repository.DBTX, w *model.Withdrawal) (*model.Withdrawal, error)
	Delete(ctx context.Context, q repository.DBTX, id uuid.UUID) error
	SumByStatuses(ctx context.Context, q repository.DBTX, vendorID uuid.UUID, statuses ...model.WithdrawalStatus) (decimal.Decimal, error)
	List(ctx context.Context, filter repository.WithdrawalFilter) ([]model.Withdrawal, int, error)
	Stats(ctx context.Context) ([]model.WithdrawalStatusStats, error)
}

// WithdrawalService owns the balance calculation and the withdrawal state
// machine.
type WithdrawalService struct {
	tx          Transactor
	vendors     withdrawalVendorStore
	payments    revenueStore
	withdrawals withdrawalStore
	notifier    Notifier
	policy      settlement.Policy
	now         func() time.Time

	// notifyTimeout bounds the enqueue so a slow Redis cannot hold the
	// response.
	notifyTimeout time.Duration
}

const defaultNotifyTimeout = 2 * time.Second

func NewWithdrawalService(
	tx Transactor,
	vendors withdrawalVendorStore,
	payments revenueStore,
	withdrawals withdrawalStore,
	notifier Notifier,
	policy settlement.Policy,
) *WithdrawalService {
	return &WithdrawalService{
		tx:          tx,
		vendors:     vendors,
		payments:    payments,
		withdrawals: withdrawals,
		notifier:    notifier,
		policy:      policy,
		now:         func() time.Time { return time.Now().UTC() },

		notifyTimeout: defaultNotifyTimeout,
	}
}

// RequestWithdrawalInput is a vendor's cash-out request. Amount is net.
type RequestWithdrawalInput struct {
	Amount      decimal.Decimal
	BankAccount *string
	Notes       string
}

// TransitionInput is an admin status change.
type TransitionInput struct {
	Status       model.WithdrawalStatus
	AdminID      string
	AdminMessage string
}

// GetBalance derives the vendor's balance. Both sums are read in one
// transaction so they describe the same moment.
func (s *WithdrawalService) GetBalance(ctx context.Context, vendorID uuid.UUID) (*settlement.Balance, error) {
	if _, err := s.vendors.GetByID(ctx, vendorID); err != nil {
		return nil, err
	}

	var balance settlement.Balance
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		balance, err = s.computeBalance(ctx, tx, vendorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	rounded := balance.Rounded()
	return &rounded, nil
}

func (s *WithdrawalService) computeBalance(ctx context.Context, q repository.DBTX, vendorID uuid.UUID) (settlement.Balance, error) {
	revenue, err := s.payments.SumSuccessfulByVendor(ctx, q, vendorID)
	if err != nil {
		return settlement.Balance{}, err
	}

	completed, err := s.withdrawals.SumByStatuses(ctx, q, vendorID,
		model.WithdrawalStatusApproved, model.WithdrawalStatusCompleted)
	if err != nil {
		return settlement.Balance{}, err
	}

	pending, err := s.withdrawals.SumByStatuses(ctx, q, vendorID,
		model.WithdrawalStatusPending, model.WithdrawalStatusProcessing)
	if err != nil {
		return settlement.Balance{}, err
	}

	return s.policy.ComputeBalance(revenue, completed, pending), nil
}

// RequestWithdrawal admits a new PENDING withdrawal. The vendor row is locked
// and the balance recomputed inside the same transaction as the insert, so
// concurrent requests from one vendor cannot overdraw it.
func (s *WithdrawalService) RequestWithdrawal(ctx context.Context, vendorID uuid.UUID, input RequestWithdrawalInput) (*model.Withdrawal, error) {
	var (
		created *model.Withdrawal
		vendor  *model.Vendor
	)

	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		vendor, err = s.vendors.LockForUpdate(ctx, tx, vendorID)
		if err != nil {
			return err
		}

		balance, err := s.computeBalance(ctx, tx, vendorID)
		if err != nil {
			return err
		}

		if err := s.policy.CheckWithdrawal(input.Amount, balance); err != nil {
			return err
		}

		split := s.policy.SplitNet(input.Amount)
		created, err = s.withdrawals.Create(ctx, tx, &model.Withdrawal{
			VendorID:         vendorID,
			Amount:           split.Net,
			GrossAmount:      split.Gross,
			CommissionAmount: split.Commission,
			Status:           model.WithdrawalStatusPending,
			BankAccount:      input.BankAccount,
			Notes:            input.Notes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("withdrawal_id", created.ID.String()).
		Str("vendor_id", vendorID.String()).
		Str("amount", created.Amount.StringFixed(2)).
		Msg("withdrawal requested")

	s.notify(ctx, vendor, created, model.NotificationWithdrawalRequested, requestedMessage(created))
	return created, nil
}

// TransitionStatus applies an admin status change if the transition table
// allows it. All fields are written in one transaction.
func (s *WithdrawalService) TransitionStatus(ctx context.Context, id uuid.UUID, input TransitionInput) (*model.Withdrawal, error) {
	if !input.Status.Valid() {
		return nil, errs.NewBadRequestError(fmt.Sprintf("Unknown withdrawal status %q", input.Status), true, nil, nil, nil)
	}

	var (
		updated *model.Withdrawal
		from    model.WithdrawalStatus
	)

	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		current, err := s.withdrawals.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		from = current.Status
		if !from.CanTransitionTo(input.Status) {
			return errs.InvalidTransition(fmt.Sprintf("Cannot transition withdrawal from %s to %s", from, input.Status))
		}

		now := s.now()
		adminID := input.AdminID
		current.Status = input.Status
		current.AdminID = &adminID
		current.AdminMessage = input.AdminMessage
		current.ProcessedAt = &now
		if input.Status == model.WithdrawalStatusCompleted {
			current.CompletedAt = &now
		}

		updated, err = s.withdrawals.UpdateStatus(ctx, tx, current)
		return err
	})
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("withdrawal_id", id.String()).
		Str("from", string(from)).
		Str("to", string(updated.Status)).
		Str("admin_id", input.AdminID).
		Msg("withdrawal status changed")

	vendor, err := s.vendors.GetByID(ctx, updated.VendorID)
	if err != nil {
		log.Error().Err(err).Str("withdrawal_id", id.String()).Msg("failed to load vendor for notification")
		return updated, nil
	}

	s.notify(ctx, vendor, updated, model.NotificationWithdrawalUpdated, statusMessage(updated))
	return updated, nil
}

// Cancel deletes a vendor's own PENDING withdrawal.
func (s *WithdrawalService) Cancel(ctx context.Context, id, vendorID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		w, err := s.withdrawals.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if w.VendorID != vendorID {
			return errs.NewForbiddenError("You can only cancel your own withdrawals", true)
		}
		if w.Status != model.WithdrawalStatusPending {
			return errs.InvalidState("Only pending withdrawals can be cancelled")
		}

		return s.withdrawals.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info().
		Str("withdrawal_id", id.String()).
		Str("vendor_id", vendorID.String()).
		Msg("withdrawal cancelled")
	return nil
}

// Get returns one of the vendor's own withdrawals.
func (s *WithdrawalService) Get(ctx context.Context, id, vendorID uuid.UUID) (*model.Withdrawal, error) {
	w, err := s.withdrawals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.VendorID != vendorID {
		return nil, errs.NewForbiddenError("You can only view your own withdrawals", true)
	}
	return w, nil
}

// History lists a vendor's withdrawals, optionally filtered by status.
func (s *WithdrawalService) History(ctx context.Context, vendorID uuid.UUID, status *model.WithdrawalStatus, page repository.Page) (*model.PaginatedResponse[model.Withdrawal], error) {
	return s.List(ctx, repository.WithdrawalFilter{VendorID: &vendorID, Status: status, Page: page})
}

// List is the admin view over all withdrawals.
func (s *WithdrawalService) List(ctx context.Context, filter repository.WithdrawalFilter) (*model.PaginatedResponse[model.Withdrawal], error) {
	filter.Page = filter.Page.Normalize()

	items, total, err := s.withdrawals.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return model.NewPaginatedResponse(items, filter.Page.Page, filter.Page.Limit, total), nil
}

// Stats returns count and Σ amount per status, with every status present.
func (s *WithdrawalService) Stats(ctx context.Context) (*model.WithdrawalStats, error) {
	rows, err := s.withdrawals.Stats(ctx)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[model.WithdrawalStatus]model.WithdrawalStatusStats, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row
	}

	stats := &model.WithdrawalStats{TotalAmount: decimal.Zero}
	for _, status := range model.WithdrawalStatuses() {
		row, ok := byStatus[status]
		if !ok {
			row = model.WithdrawalStatusStats{Status: status, TotalAmount: decimal.Zero}
		}
		stats.ByStatus = append(stats.ByStatus, row)
		stats.TotalCount += row.Count
		stats.TotalAmount = stats.TotalAmount.Add(row.TotalAmount)
	}
	return stats, nil
}

// notify enqueues a best-effort notification. Failures are logged only.
func (s *WithdrawalService) notify(ctx context.Context, vendor *model.Vendor, w *model.Withdrawal, kind model.NotificationType, message string) {
	if s.notifier == nil || vendor == nil {
		return
	}

	// The enqueue outlives a cancelled request but never the timeout.
	enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	err := s.notifier.Notify(enqueueCtx, job.NotificationPayload{
		RecipientID:      vendor.UserID,
		RecipientAddress: vendor.Email,
		Type:             kind,
		Message:          message,
		DeviceToken:      vendor.DeviceToken,
		WithdrawalID:     w.ID.String(),
		Status:           string(w.Status),
		Amount:           w.Amount.StringFixed(2),
	})
	if err != nil {
		logger.FromContext(ctx).Error().
			Err(err).
			Str("withdrawal_id", w.ID.String()).
			Str("type", string(kind)).
			Msg("failed to enqueue withdrawal notification")
	}
}

func requestedMessage(w *model.Withdrawal) string {
	return fmt.Sprintf("Your withdrawal request of %s has been submitted and is pending review.", w.Amount.StringFixed(2))
}

var statusMessages = map[model.WithdrawalStatus]string{
	model.WithdrawalStatusProcessing: "Your withdrawal request of %s is now being processed.",
	model.WithdrawalStatusApproved:   "Your withdrawal request of %s has been approved.",
	model.WithdrawalStatusCompleted:  "Your withdrawal of %s has been completed.",
	model.WithdrawalStatusRejected:   "Your withdrawal request of %s has been rejected.",
}

func statusMessage(w *model.Withdrawal) string {
	format, ok := statusMessages[w.Status]
	if !ok {
		format = "Your withdrawal request of %s has been updated to " + string(w.Status) + "."
	}

	message := fmt.Sprintf(format, w.Amount.StringFixed(2))
	if w.AdminMessage != "" {
		message += " Admin note: " + w.AdminMessage
	}
	return message
}
