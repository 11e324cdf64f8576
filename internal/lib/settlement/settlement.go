// Package settlement holds the vendor payout arithmetic: the commission
// split, the derived available balance and the admission checks for a new
// withdrawal. Everything here is pure and works on shopspring decimals so
// aggregation keeps full precision until a value is persisted or rendered.
package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/deppfellow/go-marketplace/internal/config"
	"github.com/deppfellow/go-marketplace/internal/errs"
)

// MoneyPlaces is the number of decimal places money is persisted with.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Policy is the payout policy in force: the platform commission as a
// fraction of gross revenue and the smallest net amount a vendor may withdraw.
type Policy struct {
	CommissionRate    decimal.Decimal
	MinimumWithdrawal decimal.Decimal
}

// NewPolicy builds a Policy from the settlement config.
func NewPolicy(cfg config.SettlementConfig) Policy {
	return Policy{
		CommissionRate:    decimal.NewFromFloat(cfg.CommissionRate),
		MinimumWithdrawal: decimal.NewFromFloat(cfg.MinimumWithdrawal),
	}
}

// CommissionPercentage is the rate expressed as a percentage, e.g. 10.00.
func (p Policy) CommissionPercentage() decimal.Decimal {
	return p.CommissionRate.Mul(hundred).Round(MoneyPlaces)
}

// Balance is the derived payout position of a vendor with every intermediate
// value exposed.
type Balance struct {
	TotalRevenue         decimal.Decimal `json:"totalRevenue"`
	CommissionRate       decimal.Decimal `json:"commissionRate"`
	CommissionAmount     decimal.Decimal `json:"commissionAmount"`
	NetEarnings          decimal.Decimal `json:"netEarnings"`
	CompletedWithdrawals decimal.Decimal `json:"completedWithdrawals"`
	PendingWithdrawals   decimal.Decimal `json:"pendingWithdrawals"`
	AvailableBalance     decimal.Decimal `json:"availableBalance"`
}

// ComputeBalance derives the balance from the successful payment total and
// the sums of settled (APPROVED, COMPLETED) and in-flight (PENDING,
// PROCESSING) withdrawals. The available balance never drops below zero.
func (p Policy) ComputeBalance(totalRevenue, completed, pending decimal.Decimal) Balance {
	commission := totalRevenue.Mul(p.CommissionRate)
	net := totalRevenue.Sub(commission)

	available := net.Sub(completed).Sub(pending)
	if available.IsNegative() {
		available = decimal.Zero
	}

	return Balance{
		TotalRevenue:         totalRevenue,
		CommissionRate:       p.CommissionRate,
		CommissionAmount:     commission,
		NetEarnings:          net,
		CompletedWithdrawals: completed,
		PendingWithdrawals:   pending,
		AvailableBalance:     available,
	}
}

// Withdrawable is the largest amount, in whole cents, that may be requested.
func (b Balance) Withdrawable() decimal.Decimal {
	return b.AvailableBalance.RoundFloor(MoneyPlaces)
}

// Rounded returns the balance rounded for display. The available balance is
// floored so the figure shown is always requestable.
func (b Balance) Rounded() Balance {
	return Balance{
		TotalRevenue:         b.TotalRevenue.Round(MoneyPlaces),
		CommissionRate:       b.CommissionRate,
		CommissionAmount:     b.CommissionAmount.Round(MoneyPlaces),
		NetEarnings:          b.NetEarnings.Round(MoneyPlaces),
		CompletedWithdrawals: b.CompletedWithdrawals.Round(MoneyPlaces),
		PendingWithdrawals:   b.PendingWithdrawals.Round(MoneyPlaces),
		AvailableBalance:     b.Withdrawable(),
	}
}

// Split is a commission split between the platform and the vendor.
// Gross = Net + Commission holds exactly.
type Split struct {
	Gross      decimal.Decimal
	Commission decimal.Decimal
	Net        decimal.Decimal
}

// SplitNet inverts the commission formula for a requested net amount:
// gross = net / (1 - rate), commission = gross - net.
func (p Policy) SplitNet(net decimal.Decimal) Split {
	net = net.Round(MoneyPlaces)
	gross := net.Div(decimal.NewFromInt(1).Sub(p.CommissionRate)).Round(MoneyPlaces)

	return Split{
		Gross:      gross,
		Commission: gross.Sub(net),
		Net:        net,
	}
}

// SplitGross applies the commission to an amount paid by the end user.
func (p Policy) SplitGross(gross decimal.Decimal) Split {
	gross = gross.Round(MoneyPlaces)
	commission := gross.Mul(p.CommissionRate).Round(MoneyPlaces)

	return Split{
		Gross:      gross,
		Commission: commission,
		Net:        gross.Sub(commission),
	}
}

// CheckWithdrawal admits or rejects a requested net amount against the
// policy floor and the vendor's balance.
func (p Policy) CheckWithdrawal(amount decimal.Decimal, balance Balance) error {
	if !amount.IsPositive() {
		return errs.InvalidAmount("Withdrawal amount must be greater than 0")
	}
	if !amount.Equal(amount.Round(MoneyPlaces)) {
		return errs.InvalidAmount(fmt.Sprintf("Withdrawal amount must have at most %d decimal places", MoneyPlaces))
	}
	if amount.LessThan(p.MinimumWithdrawal) {
		return errs.InvalidAmount("Minimum withdrawal amount is " + p.MinimumWithdrawal.String())
	}
	if amount.GreaterThan(balance.Withdrawable()) {
		return errs.InsufficientBalance(fmt.Sprintf(
			"Insufficient balance. Available: %s, requested: %s",
			balance.Withdrawable().StringFixed(MoneyPlaces),
			amount.StringFixed(MoneyPlaces),
		))
	}
	return nil
}

// Drift compares the earnings ledger total for a vendor with the net earnings
// derived from payments. Per-row rounding in the ledger is absorbed by a
// tolerance of one cent per ledger row.
type Drift struct {
	LedgerNet  decimal.Decimal
	DerivedNet decimal.Decimal
	Difference decimal.Decimal
	Diverged   bool
}

// CompareLedger reports the drift between the ledger and the derived figures.
func (p Policy) CompareLedger(ledgerNet, totalRevenue decimal.Decimal, ledgerRows int) Drift {
	derived := totalRevenue.Sub(totalRevenue.Mul(p.CommissionRate))
	diff := ledgerNet.Sub(derived)
	tolerance := decimal.New(1, -MoneyPlaces).Mul(decimal.NewFromInt(int64(ledgerRows)))

	return Drift{
		LedgerNet:  ledgerNet,
		DerivedNet: derived,
		Difference: diff,
		Diverged:   diff.Abs().GreaterThan(tolerance),
	}
}
