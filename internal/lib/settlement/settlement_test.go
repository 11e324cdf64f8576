package settlement

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/deppfellow/go-marketplace/internal/config"
	"github.com/deppfellow/go-marketplace/internal/errs"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func defaultPolicy() Policy {
	return NewPolicy(config.SettlementConfig{CommissionRate: 0.10, MinimumWithdrawal: 100})
}

func TestComputeBalance(t *testing.T) {
	p := defaultPolicy()

	tests := []struct {
		name      string
		revenue   string
		completed string
		pending   string
		want      string
	}{
		{name: "no withdrawals", revenue: "1000", completed: "0", pending: "0", want: "900"},
		{name: "completed and pending", revenue: "1000", completed: "300", pending: "200", want: "400"},
		{name: "floored at zero", revenue: "100", completed: "500", pending: "0", want: "0"},
		{name: "no revenue", revenue: "0", completed: "0", pending: "0", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := p.ComputeBalance(d(tt.revenue), d(tt.completed), d(tt.pending))
			if !b.AvailableBalance.Equal(d(tt.want)) {
				t.Fatalf("expected %s, got %s", tt.want, b.AvailableBalance)
			}
		})
	}
}

func TestComputeBalanceExposesIntermediates(t *testing.T) {
	b := defaultPolicy().ComputeBalance(d("1000"), d("0"), d("0"))

	if !b.CommissionAmount.Equal(d("100")) {
		t.Fatalf("expected commission 100, got %s", b.CommissionAmount)
	}
	if !b.NetEarnings.Equal(d("900")) {
		t.Fatalf("expected net 900, got %s", b.NetEarnings)
	}
	if !b.CommissionRate.Equal(d("0.1")) {
		t.Fatalf("expected rate 0.1, got %s", b.CommissionRate)
	}
}

func TestBalanceMatchesFormula(t *testing.T) {
	p := defaultPolicy()
	revenues := []string{"0", "0.01", "99.99", "1000", "1234.56", "98765.43"}
	withdrawn := []string{"0", "10", "555.55"}

	for _, r := range revenues {
		for _, c := range withdrawn {
			for _, pend := range withdrawn {
				b := p.ComputeBalance(d(r), d(c), d(pend))
				want := decimal.Max(decimal.Zero, d(r).Mul(d("0.9")).Sub(d(c)).Sub(d(pend)))
				if !b.AvailableBalance.Equal(want) {
					t.Fatalf("R=%s completed=%s pending=%s: expected %s, got %s", r, c, pend, want, b.AvailableBalance)
				}
			}
		}
	}
}

func TestSplitNet(t *testing.T) {
	s := defaultPolicy().SplitNet(d("900"))

	if s.Gross.StringFixed(2) != "1000.00" {
		t.Fatalf("expected gross 1000.00, got %s", s.Gross.StringFixed(2))
	}
	if s.Commission.StringFixed(2) != "100.00" {
		t.Fatalf("expected commission 100.00, got %s", s.Commission.StringFixed(2))
	}
}

func TestSplitNetRoundTrip(t *testing.T) {
	for _, rate := range []float64{0, 0.05, 0.10, 0.15, 0.333} {
		p := NewPolicy(config.SettlementConfig{CommissionRate: rate, MinimumWithdrawal: 100})
		for _, a := range []string{"100", "100.01", "333.33", "900", "12345.67"} {
			s := p.SplitNet(d(a))
			if !d(a).Add(s.Commission).Round(2).Equal(s.Gross.Round(2)) {
				t.Fatalf("rate=%v amount=%s: %s + %s != %s", rate, a, a, s.Commission, s.Gross)
			}
		}
	}
}

func TestSplitGross(t *testing.T) {
	s := defaultPolicy().SplitGross(d("250.55"))

	if !s.Commission.Equal(d("25.06")) {
		t.Fatalf("expected commission 25.06, got %s", s.Commission)
	}
	if !s.Net.Add(s.Commission).Equal(s.Gross) {
		t.Fatalf("split does not add up: %s + %s != %s", s.Net, s.Commission, s.Gross)
	}
}

func TestCheckWithdrawal(t *testing.T) {
	p := defaultPolicy()
	balance := p.ComputeBalance(d("1000"), d("0"), d("0"))

	tests := []struct {
		name     string
		amount   string
		wantCode string
	}{
		{name: "exactly available", amount: "900"},
		{name: "exactly minimum", amount: "100"},
		{name: "one cent over", amount: "900.01", wantCode: errs.CodeInsufficientBalance},
		{name: "below minimum", amount: "99.99", wantCode: errs.CodeInvalidAmount},
		{name: "fifty", amount: "50", wantCode: errs.CodeInvalidAmount},
		{name: "zero", amount: "0", wantCode: errs.CodeInvalidAmount},
		{name: "negative", amount: "-5", wantCode: errs.CodeInvalidAmount},
		{name: "sub-cent", amount: "150.001", wantCode: errs.CodeInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.CheckWithdrawal(d(tt.amount), balance)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("expected acceptance, got %v", err)
				}
				return
			}

			var httpErr *errs.HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("expected HTTPError, got %v", err)
			}
			if httpErr.Code != tt.wantCode {
				t.Fatalf("expected %s, got %s", tt.wantCode, httpErr.Code)
			}
		})
	}
}

func TestCheckWithdrawalMinimumMessage(t *testing.T) {
	p := defaultPolicy()
	err := p.CheckWithdrawal(d("50"), p.ComputeBalance(d("1000"), d("0"), d("0")))

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Message != "Minimum withdrawal amount is 100" {
		t.Fatalf("unexpected message %q", httpErr.Message)
	}
}

func TestRoundedFloorsAvailable(t *testing.T) {
	b := defaultPolicy().ComputeBalance(d("10.05"), d("0"), d("0"))

	// 10.05 * 0.9 = 9.045
	if got := b.Rounded().AvailableBalance.StringFixed(2); got != "9.04" {
		t.Fatalf("expected 9.04, got %s", got)
	}
}

func TestCompareLedger(t *testing.T) {
	p := defaultPolicy()

	if drift := p.CompareLedger(d("900"), d("1000"), 3); drift.Diverged {
		t.Fatalf("expected no drift, got %s", drift.Difference)
	}
	if drift := p.CompareLedger(d("900.02"), d("1000"), 1); !drift.Diverged {
		t.Fatal("expected drift beyond one cent per row")
	}
	if drift := p.CompareLedger(d("900"), d("800"), 2); !drift.Diverged || !drift.Difference.Equal(d("180")) {
		t.Fatalf("expected 180 drift after refund, got %s", drift.Difference)
	}
}

func TestZeroCommissionNoFloorPolicy(t *testing.T) {
	p := NewPolicy(config.SettlementConfig{})

	split := p.SplitNet(d("0.50"))
	if !split.Gross.Equal(d("0.50")) || !split.Commission.IsZero() {
		t.Fatalf("expected gross equal to net without commission, got %+v", split)
	}
	if err := p.CheckWithdrawal(d("0.50"), p.ComputeBalance(d("1"), d("0"), d("0"))); err != nil {
		t.Fatalf("expected any positive amount to pass without a floor, got %v", err)
	}
	if err := p.CheckWithdrawal(d("0"), p.ComputeBalance(d("1"), d("0"), d("0"))); err == nil {
		t.Fatal("expected zero to stay invalid")
	}
}
