package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/go-marketplace/internal/config"
	"github.com/deppfellow/go-marketplace/internal/lib/email"
	"github.com/deppfellow/go-marketplace/internal/lib/settlement"
	"github.com/deppfellow/go-marketplace/internal/model"
)

type notificationStoreStub struct {
	created []model.Notification
	err     error
}

func (s *notificationStoreStub) Create(_ context.Context, n *model.Notification) (*model.Notification, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, *n)
	return n, nil
}

type mailerStub struct {
	requested []string
	status    []string
	err       error
}

func (m *mailerStub) SendWithdrawalRequestedEmail(to string, _ email.WithdrawalEmail) error {
	m.requested = append(m.requested, to)
	return m.err
}

func (m *mailerStub) SendWithdrawalStatusEmail(to string, _ email.WithdrawalEmail) error {
	m.status = append(m.status, to)
	return m.err
}

type ledgerStub struct {
	revenue map[uuid.UUID]decimal.Decimal
	totals  map[uuid.UUID]model.LedgerTotals
}

func (l ledgerStub) RevenueByVendor(context.Context) (map[uuid.UUID]decimal.Decimal, error) {
	return l.revenue, nil
}

func (l ledgerStub) TotalsByVendor(context.Context) (map[uuid.UUID]model.LedgerTotals, error) {
	return l.totals, nil
}

func newTestJobService(deps Dependencies) *JobService {
	logger := zerolog.Nop()
	return &JobService{logger: &logger, deps: deps}
}

func TestNewNotificationTask(t *testing.T) {
	task, err := NewNotificationTask(NotificationPayload{
		RecipientID: "user_1",
		Type:        model.NotificationWithdrawalUpdated,
		Message:     "done",
	})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if task.Type() != TaskNotification {
		t.Fatalf("expected %s, got %s", TaskNotification, task.Type())
	}

	var p NotificationPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if p.RecipientID != "user_1" || p.Type != model.NotificationWithdrawalUpdated {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestNewReconcileTask(t *testing.T) {
	task := NewReconcileTask(time.Hour)
	if task.Type() != TaskSettlementReconcile {
		t.Fatalf("expected %s, got %s", TaskSettlementReconcile, task.Type())
	}
}

func TestDeliverNotificationStoresAndEmails(t *testing.T) {
	store := &notificationStoreStub{}
	mailer := &mailerStub{}
	j := newTestJobService(Dependencies{Notifications: store, Mailer: mailer})

	err := j.deliverNotification(context.Background(), NotificationPayload{
		RecipientID:      "user_1",
		RecipientAddress: "vendor@example.com",
		Type:             model.NotificationWithdrawalRequested,
		Message:          "submitted",
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(store.created) != 1 || store.created[0].Message != "submitted" {
		t.Fatalf("expected one stored notification, got %+v", store.created)
	}
	if len(mailer.requested) != 1 || len(mailer.status) != 0 {
		t.Fatalf("expected the requested template, got %+v", mailer)
	}
}

func TestDeliverNotificationEmailFailureIsNotFatal(t *testing.T) {
	store := &notificationStoreStub{}
	mailer := &mailerStub{err: errors.New("resend down")}
	j := newTestJobService(Dependencies{Notifications: store, Mailer: mailer})

	err := j.deliverNotification(context.Background(), NotificationPayload{
		RecipientID:      "user_1",
		RecipientAddress: "vendor@example.com",
		Type:             model.NotificationWithdrawalUpdated,
		Message:          "completed",
	})
	if err != nil {
		t.Fatalf("expected email failure to be swallowed, got %v", err)
	}
	if len(mailer.status) != 1 {
		t.Fatal("expected the status template to be attempted")
	}
}

func TestDeliverNotificationStoreFailure(t *testing.T) {
	j := newTestJobService(Dependencies{Notifications: &notificationStoreStub{err: errors.New("db down")}})

	if err := j.deliverNotification(context.Background(), NotificationPayload{RecipientID: "user_1"}); err == nil {
		t.Fatal("expected store failure to fail the task")
	}
}

func TestHandleNotificationTaskRejectsBadPayload(t *testing.T) {
	j := newTestJobService(Dependencies{Notifications: &notificationStoreStub{}})

	err := j.handleNotificationTask(context.Background(), asynq.NewTask(TaskNotification, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestReconcile(t *testing.T) {
	consistent := uuid.New()
	refunded := uuid.New()
	ledgerOnly := uuid.New()

	policy := settlement.NewPolicy(config.SettlementConfig{CommissionRate: 0.10, MinimumWithdrawal: 100})
	j := newTestJobService(Dependencies{
		Policy: policy,
		Ledger: ledgerStub{
			revenue: map[uuid.UUID]decimal.Decimal{
				consistent: decimal.NewFromInt(1000),
				refunded:   decimal.NewFromInt(500),
			},
			totals: map[uuid.UUID]model.LedgerTotals{
				consistent: {VendorID: consistent, FinalAmount: decimal.NewFromInt(900), RowCount: 2},
				refunded:   {VendorID: refunded, FinalAmount: decimal.NewFromInt(900), RowCount: 2},
				ledgerOnly: {VendorID: ledgerOnly, FinalAmount: decimal.NewFromInt(45), RowCount: 1},
			},
		},
	})

	report, err := j.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.Checked != 3 {
		t.Fatalf("expected 3 vendors checked, got %d", report.Checked)
	}

	diverged := map[uuid.UUID]bool{}
	for _, id := range report.Diverged {
		diverged[id] = true
	}
	if diverged[consistent] || !diverged[refunded] || !diverged[ledgerOnly] {
		t.Fatalf("unexpected divergence set %v", report.Diverged)
	}
}
