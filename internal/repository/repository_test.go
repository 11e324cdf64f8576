package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/go-marketplace/internal/database"
	"github.com/deppfellow/go-marketplace/internal/errs"
	"github.com/deppfellow/go-marketplace/internal/model"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	logger := zerolog.Nop()
	if err := database.MigrateURL(ctx, &logger, dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

type fixture struct {
	vendorID  uuid.UUID
	bookingID uuid.UUID
}

func seedVendor(t *testing.T, pool *pgxpool.Pool, payments ...string) fixture {
	t.Helper()
	ctx := context.Background()

	var f fixture
	err := pool.QueryRow(ctx, `
		INSERT INTO vendors (user_id, business_name, email)
		VALUES ($1, 'Test Vendor', 'vendor@example.com')
		RETURNING id
	`, "user_"+uuid.NewString()).Scan(&f.vendorID)
	if err != nil {
		t.Fatalf("insert vendor: %v", err)
	}

	err = pool.QueryRow(ctx, `
		INSERT INTO bookings (vendor_id, customer_id, service_name)
		VALUES ($1, 'customer', 'Cleaning')
		RETURNING id
	`, f.vendorID).Scan(&f.bookingID)
	if err != nil {
		t.Fatalf("insert booking: %v", err)
	}

	for _, amount := range payments {
		_, err := pool.Exec(ctx, `
			INSERT INTO payments (booking_id, vendor_id, amount, status)
			VALUES ($1, $2, $3, 'SUCCESS')
		`, f.bookingID, f.vendorID, decimal.RequireFromString(amount))
		if err != nil {
			t.Fatalf("insert payment: %v", err)
		}
	}
	// A failed payment must never count as revenue.
	if _, err := pool.Exec(ctx, `
		INSERT INTO payments (booking_id, vendor_id, amount, status)
		VALUES ($1, $2, 999, 'FAILED')
	`, f.bookingID, f.vendorID); err != nil {
		t.Fatalf("insert failed payment: %v", err)
	}

	return f
}

func TestPaymentSumIntegration(t *testing.T) {
	pool := setupPool(t)
	f := seedVendor(t, pool, "600.50", "399.50")

	total, err := NewPaymentRepository(pool).SumSuccessfulByVendor(context.Background(), pool, f.vendorID)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected 1000, got %s", total)
	}
}

func TestWithdrawalLifecycleIntegration(t *testing.T) {
	pool := setupPool(t)
	f := seedVendor(t, pool, "1000")
	repo := NewWithdrawalRepository(pool)
	ctx := context.Background()

	created, err := repo.Create(ctx, pool, &model.Withdrawal{
		VendorID:         f.vendorID,
		Amount:           decimal.RequireFromString("900"),
		GrossAmount:      decimal.RequireFromString("1000"),
		CommissionAmount: decimal.RequireFromString("100"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != model.WithdrawalStatusPending {
		t.Fatalf("expected PENDING, got %s", created.Status)
	}

	pending, err := repo.SumByStatuses(ctx, pool, f.vendorID, model.WithdrawalStatusPending, model.WithdrawalStatusProcessing)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if !pending.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected 900 pending, got %s", pending)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	locked, err := repo.GetForUpdate(ctx, tx, created.ID)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	locked.Status = model.WithdrawalStatusProcessing
	adminID := "admin_1"
	locked.AdminID = &adminID
	if _, err := repo.UpdateStatus(ctx, tx, locked); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	vendorID := f.vendorID
	items, total, err := repo.List(ctx, WithdrawalFilter{VendorID: &vendorID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Status != model.WithdrawalStatusProcessing {
		t.Fatalf("unexpected listing: total=%d items=%+v", total, items)
	}

	if err := repo.Delete(ctx, pool, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = repo.GetByID(ctx, created.ID)
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != "WITHDRAWAL_NOT_FOUND" {
		t.Fatalf("expected WITHDRAWAL_NOT_FOUND, got %v", err)
	}
}

func TestEarningLedgerIntegration(t *testing.T) {
	pool := setupPool(t)
	f := seedVendor(t, pool, "250")
	repo := NewEarningRepository(pool)
	ctx := context.Background()

	earning, err := repo.Create(ctx, pool, &model.VendorEarning{
		BookingID:            f.bookingID,
		VendorID:             f.vendorID,
		TotalPaid:            decimal.RequireFromString("250"),
		CommissionPercentage: decimal.RequireFromString("10"),
		CommissionAmount:     decimal.RequireFromString("25"),
		FinalAmount:          decimal.RequireFromString("225"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	byBooking, err := repo.ListByBooking(ctx, f.bookingID)
	if err != nil || len(byBooking) != 1 {
		t.Fatalf("expected one earning for booking, got %d (%v)", len(byBooking), err)
	}

	totals, err := repo.TotalsByVendor(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if agg := totals[f.vendorID]; agg.RowCount != 1 || !agg.FinalAmount.Equal(decimal.NewFromInt(225)) {
		t.Fatalf("unexpected aggregate %+v", agg)
	}

	if err := repo.Delete(ctx, earning.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, earning.ID); err == nil {
		t.Fatal("expected not found on second delete")
	}
}

func TestNotificationMarkReadIntegration(t *testing.T) {
	pool := setupPool(t)
	repo := NewNotificationRepository(pool)
	ctx := context.Background()
	recipient := "user_" + uuid.NewString()

	n, err := repo.Create(ctx, &model.Notification{
		RecipientID: recipient,
		Type:        model.NotificationWithdrawalRequested,
		Message:     "hello",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.MarkRead(ctx, n.ID, "someone_else"); err == nil {
		t.Fatal("expected other recipients to get not found")
	}

	read, err := repo.MarkRead(ctx, n.ID, recipient)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !read.IsRead {
		t.Fatal("expected notification to be read")
	}

	unread, total, err := repo.ListByRecipient(ctx, recipient, true, Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 || len(unread) != 0 {
		t.Fatalf("expected no unread notifications, got %d", total)
	}
}

func TestPageNormalize(t *testing.T) {
	p := Page{Page: 0, Limit: 1000}.Normalize()
	if p.Page != 1 || p.Limit != MaxPageLimit {
		t.Fatalf("unexpected page %+v", p)
	}
	if (Page{Page: 3, Limit: 10}).Offset() != 20 {
		t.Fatal("unexpected offset")
	}
}
