package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/go-marketplace/internal/config"
	"github.com/deppfellow/go-marketplace/internal/errs"
	"github.com/deppfellow/go-marketplace/internal/lib/job"
	"github.com/deppfellow/go-marketplace/internal/lib/settlement"
	"github.com/deppfellow/go-marketplace/internal/model"
	"github.com/deppfellow/go-marketplace/internal/repository"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testPolicy() settlement.Policy {
	return settlement.NewPolicy(config.SettlementConfig{CommissionRate: 0.10, MinimumWithdrawal: 100})
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError with code %s, got %v", code, err)
	}
	if httpErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, httpErr.Code, httpErr.Message)
	}
}

type txStub struct {
	calls int
}

func (t *txStub) WithTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	t.calls++
	return fn(nil)
}

type vendorStoreStub struct {
	vendors map[uuid.UUID]*model.Vendor
	locks   int
}

func newVendorStore(vendors ...*model.Vendor) *vendorStoreStub {
	s := &vendorStoreStub{vendors: map[uuid.UUID]*model.Vendor{}}
	for _, v := range vendors {
		s.vendors[v.ID] = v
	}
	return s
}

func (s *vendorStoreStub) GetByID(_ context.Context, id uuid.UUID) (*model.Vendor, error) {
	v, ok := s.vendors[id]
	if !ok {
		return nil, errs.NotFound("vendor")
	}
	return v, nil
}

func (s *vendorStoreStub) GetByUserID(_ context.Context, userID string) (*model.Vendor, error) {
	for _, v := range s.vendors {
		if v.UserID == userID {
			return v, nil
		}
	}
	return nil, errs.NotFound("vendor")
}

func (s *vendorStoreStub) LockForUpdate(ctx context.Context, _ repository.DBTX, id uuid.UUID) (*model.Vendor, error) {
	s.locks++
	return s.GetByID(ctx, id)
}

type revenueStub map[uuid.UUID]decimal.Decimal

func (r revenueStub) SumSuccessfulByVendor(_ context.Context, _ repository.DBTX, vendorID uuid.UUID) (decimal.Decimal, error) {
	return r[vendorID], nil
}

type notifierStub struct {
	payloads []job.NotificationPayload
	err      error
}

func (n *notifierStub) Notify(_ context.Context, p job.NotificationPayload) error {
	if n.err != nil {
		return n.err
	}
	n.payloads = append(n.payloads, p)
	return nil
}

// memoryWithdrawals is an in-memory withdrawal table.
type memoryWithdrawals struct {
	items map[uuid.UUID]*model.Withdrawal
	clock time.Time
}

func newMemoryWithdrawals() *memoryWithdrawals {
	return &memoryWithdrawals{
		items: map[uuid.UUID]*model.Withdrawal{},
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memoryWithdrawals) Create(_ context.Context, _ repository.DBTX, w *model.Withdrawal) (*model.Withdrawal, error) {
	m.clock = m.clock.Add(time.Minute)
	created := *w
	created.ID = uuid.New()
	created.Status = model.WithdrawalStatusPending
	created.RequestedAt = m.clock
	created.CreatedAt = m.clock
	created.UpdatedAt = m.clock
	m.items[created.ID] = &created

	out := created
	return &out, nil
}

func (m *memoryWithdrawals) GetByID(_ context.Context, id uuid.UUID) (*model.Withdrawal, error) {
	w, ok := m.items[id]
	if !ok {
		return nil, errs.NotFound("withdrawal")
	}
	out := *w
	return &out, nil
}

func (m *memoryWithdrawals) GetForUpdate(ctx context.Context, _ repository.DBTX, id uuid.UUID) (*model.Withdrawal, error) {
	return m.GetByID(ctx, id)
}

func (m *memoryWithdrawals) UpdateStatus(_ context.Context, _ repository.DBTX, w *model.Withdrawal) (*model.Withdrawal, error) {
	if _, ok := m.items[w.ID]; !ok {
		return nil, errs.NotFound("withdrawal")
	}
	updated := *w
	m.items[w.ID] = &updated

	out := updated
	return &out, nil
}

func (m *memoryWithdrawals) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *memoryWithdrawals) SumByStatuses(_ context.Context, _ repository.DBTX, vendorID uuid.UUID, statuses ...model.WithdrawalStatus) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, w := range m.items {
		if w.VendorID != vendorID {
			continue
		}
		for _, s := range statuses {
			if w.Status == s {
				total = total.Add(w.Amount)
			}
		}
	}
	return total, nil
}

func (m *memoryWithdrawals) List(_ context.Context, filter repository.WithdrawalFilter) ([]model.Withdrawal, int, error) {
	var matched []model.Withdrawal
	for _, w := range m.items {
		if filter.VendorID != nil && w.VendorID != *filter.VendorID {
			continue
		}
		if filter.Status != nil && w.Status != *filter.Status {
			continue
		}
		matched = append(matched, *w)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].RequestedAt.After(matched[j].RequestedAt)
	})

	total := len(matched)
	start := min(filter.Page.Offset(), total)
	end := min(start+filter.Page.Limit, total)
	return matched[start:end], total, nil
}

func (m *memoryWithdrawals) Stats(_ context.Context) ([]model.WithdrawalStatusStats, error) {
	byStatus := map[model.WithdrawalStatus]*model.WithdrawalStatusStats{}
	for _, w := range m.items {
		row, ok := byStatus[w.Status]
		if !ok {
			row = &model.WithdrawalStatusStats{Status: w.Status, TotalAmount: decimal.Zero}
			byStatus[w.Status] = row
		}
		row.Count++
		row.TotalAmount = row.TotalAmount.Add(w.Amount)
	}

	var rows []model.WithdrawalStatusStats
	for _, row := range byStatus {
		rows = append(rows, *row)
	}
	return rows, nil
}
