package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/go-marketplace/internal/errs"
	"github.com/deppfellow/go-marketplace/internal/lib/settlement"
	"github.com/deppfellow/go-marketplace/internal/logger"
	"github.com/deppfellow/go-marketplace/internal/model"
	"github.com/deppfellow/go-marketplace/internal/repository"
)

type paymentStore interface {
	GetForUpdate(ctx context.Context, q repository.DBTX, id uuid.UUID) (*model.Payment, error)
	MarkSucceeded(ctx context.Context, q repository.DBTX, id uuid.UUID) (*model.Payment, error)
}

type earningWriter interface {
	Create(ctx context.Context, q repository.DBTX, e *model.VendorEarning) (*model.VendorEarning, error)
}

// PaymentService finalizes booking payments.
type PaymentService struct {
	tx       Transactor
	payments paymentStore
	earnings earningWriter
	policy   settlement.Policy
}

func NewPaymentService(tx Transactor, payments paymentStore, earnings earningWriter, policy settlement.Policy) *PaymentService {
	return &PaymentService{
		tx:       tx,
		payments: payments,
		earnings: earnings,
		policy:   policy,
	}
}

// FinalizedPayment is a settled payment and the ledger row it produced.
type FinalizedPayment struct {
	Payment *model.Payment       `json:"payment"`
	Earning *model.VendorEarning `json:"earning"`
}

// FinalizeBookingPayment marks a PENDING payment SUCCESS and records its
// commission split in the earnings ledger in the same transaction.
func (s *PaymentService) FinalizeBookingPayment(ctx context.Context, paymentID uuid.UUID) (*FinalizedPayment, error) {
	var result FinalizedPayment

	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		payment, err := s.payments.GetForUpdate(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if payment.Status != model.PaymentStatusPending {
			return errs.InvalidState("Only pending payments can be finalized")
		}

		result.Payment, err = s.payments.MarkSucceeded(ctx, tx, paymentID)
		if err != nil {
			return err
		}

		split := s.policy.SplitGross(result.Payment.Amount)
		result.Earning, err = s.earnings.Create(ctx, tx, &model.VendorEarning{
			BookingID:            result.Payment.BookingID,
			VendorID:             result.Payment.VendorID,
			TotalPaid:            split.Gross,
			CommissionPercentage: s.policy.CommissionPercentage(),
			CommissionAmount:     split.Commission,
			FinalAmount:          split.Net,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("payment_id", paymentID.String()).
		Str("vendor_id", result.Payment.VendorID.String()).
		Str("amount", result.Payment.Amount.StringFixed(2)).
		Msg("payment finalized")
	return &result, nil
}
