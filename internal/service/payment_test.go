package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/deppfellow/go-marketplace/internal/errs"
	"github.com/deppfellow/go-marketplace/internal/model"
	"github.com/deppfellow/go-marketplace/internal/repository"
)

type paymentStoreStub struct {
	payments map[uuid.UUID]*model.Payment
}

func (s *paymentStoreStub) GetForUpdate(_ context.Context, _ repository.DBTX, id uuid.UUID) (*model.Payment, error) {
	p, ok := s.payments[id]
	if !ok {
		return nil, errs.NotFound("payment")
	}
	out := *p
	return &out, nil
}

func (s *paymentStoreStub) MarkSucceeded(_ context.Context, _ repository.DBTX, id uuid.UUID) (*model.Payment, error) {
	p := s.payments[id]
	p.Status = model.PaymentStatusSuccess
	out := *p
	return &out, nil
}

func newPaymentFixture(status model.PaymentStatus) (*PaymentService, *paymentStoreStub, *earningStoreStub, uuid.UUID) {
	payment := &model.Payment{
		Base:      model.Base{ID: uuid.New()},
		BookingID: uuid.New(),
		VendorID:  uuid.New(),
		Amount:    dec("1000"),
		Status:    status,
	}
	payments := &paymentStoreStub{payments: map[uuid.UUID]*model.Payment{payment.ID: payment}}
	earnings := &earningStoreStub{}

	return NewPaymentService(&txStub{}, payments, earnings, testPolicy()), payments, earnings, payment.ID
}

func TestFinalizeBookingPayment(t *testing.T) {
	svc, payments, earnings, id := newPaymentFixture(model.PaymentStatusPending)

	result, err := svc.FinalizeBookingPayment(context.Background(), id)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if payments.payments[id].Status != model.PaymentStatusSuccess {
		t.Fatal("expected payment to be marked SUCCESS")
	}
	if len(earnings.created) != 1 {
		t.Fatalf("expected one earning, got %d", len(earnings.created))
	}
	e := result.Earning
	if !e.TotalPaid.Equal(dec("1000")) || !e.CommissionAmount.Equal(dec("100")) || !e.FinalAmount.Equal(dec("900")) {
		t.Fatalf("unexpected split %+v", e)
	}
	if e.BookingID != result.Payment.BookingID || e.VendorID != result.Payment.VendorID {
		t.Fatal("earning must reference the payment's booking and vendor")
	}
}

func TestFinalizeNonPendingPayment(t *testing.T) {
	for _, status := range []model.PaymentStatus{model.PaymentStatusSuccess, model.PaymentStatusFailed, model.PaymentStatusRefunded} {
		t.Run(string(status), func(t *testing.T) {
			svc, _, earnings, id := newPaymentFixture(status)

			_, err := svc.FinalizeBookingPayment(context.Background(), id)
			assertCode(t, err, errs.CodeInvalidState)
			if len(earnings.created) != 0 {
				t.Fatal("no earning may be recorded")
			}
		})
	}
}

func TestFinalizeUnknownPayment(t *testing.T) {
	svc, _, _, _ := newPaymentFixture(model.PaymentStatusPending)
	_, err := svc.FinalizeBookingPayment(context.Background(), uuid.New())
	assertCode(t, err, "PAYMENT_NOT_FOUND")
}
