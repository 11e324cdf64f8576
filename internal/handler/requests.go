package handler

import (
	"reflect"

	"github.com/shopspring/decimal"

	"github.com/deppfellow/go-marketplace/internal/repository"
	"github.com/deppfellow/go-marketplace/internal/validation"
)

// newRequest returns a zero value of the prototype's pointed-to type.
func newRequest[Req any](prototype Req) Req {
	t := reflect.TypeOf(prototype)
	if t == nil || t.Kind() != reflect.Pointer {
		return prototype
	}
	return reflect.New(t.Elem()).Interface().(Req)
}

// EmptyRequest is used by endpoints without input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error { return nil }

// IDRequest carries a UUID path parameter.
type IDRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (r *IDRequest) Validate() error {
	return validation.Struct(r)
}

type PageQuery struct {
	Page  int `query:"page" validate:"min=0"`
	Limit int `query:"limit" validate:"min=0,max=100"`
}

func (q PageQuery) toPage() repository.Page {
	return repository.Page{Page: q.Page, Limit: q.Limit}.Normalize()
}

type PageRequest struct {
	PageQuery
}

func (r *PageRequest) Validate() error {
	return validation.Struct(r)
}

// ---- withdrawals

type RequestWithdrawalRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	BankAccount *string         `json:"bankAccount" validate:"omitempty,min=4,max=64"`
	Notes       string          `json:"notes" validate:"max=500"`
}

// Validate checks the optional fields only. Amount rules, including a missing
// or non-positive amount, belong to the settlement policy.
func (r *RequestWithdrawalRequest) Validate() error {
	return validation.Struct(r)
}

type WithdrawalHistoryRequest struct {
	PageQuery
	Status string `query:"status" validate:"omitempty,oneof=PENDING PROCESSING APPROVED COMPLETED REJECTED"`
}

func (r *WithdrawalHistoryRequest) Validate() error {
	return validation.Struct(r)
}

type AdminListWithdrawalsRequest struct {
	PageQuery
	Status   string `query:"status" validate:"omitempty,oneof=PENDING PROCESSING APPROVED COMPLETED REJECTED"`
	VendorID string `query:"vendorId" validate:"omitempty,uuid"`
}

func (r *AdminListWithdrawalsRequest) Validate() error {
	return validation.Struct(r)
}

type TransitionStatusRequest struct {
	ID           string `param:"id" validate:"required,uuid"`
	Status       string `json:"status" validate:"required,oneof=PENDING PROCESSING APPROVED COMPLETED REJECTED"`
	AdminMessage string `json:"adminMessage" validate:"max=1000"`
}

func (r *TransitionStatusRequest) Validate() error {
	return validation.Struct(r)
}

// ---- earnings

type RecordEarningRequest struct {
	BookingID            string           `json:"bookingId" validate:"required,uuid"`
	VendorID             string           `json:"vendorId" validate:"required,uuid"`
	TotalPaid            decimal.Decimal  `json:"totalPaid"`
	CommissionPercentage *decimal.Decimal `json:"commissionPercentage"`
	CommissionAmount     *decimal.Decimal `json:"commissionAmount"`
	FinalAmount          *decimal.Decimal `json:"finalAmount"`
}

var hundred = decimal.NewFromInt(100)

func (r *RecordEarningRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	var errs validation.CustomValidationErrors
	if !r.TotalPaid.IsPositive() {
		errs = append(errs, validation.CustomValidationError{Field: "totalPaid", Message: "must be greater than 0"})
	}
	if p := r.CommissionPercentage; p != nil && (p.IsNegative() || p.GreaterThan(hundred)) {
		errs = append(errs, validation.CustomValidationError{Field: "commissionPercentage", Message: "must be between 0 and 100"})
	}
	if a := r.CommissionAmount; a != nil && (a.IsNegative() || a.GreaterThan(r.TotalPaid)) {
		errs = append(errs, validation.CustomValidationError{Field: "commissionAmount", Message: "must be between 0 and totalPaid"})
	}
	if f := r.FinalAmount; f != nil && (f.IsNegative() || f.GreaterThan(r.TotalPaid)) {
		errs = append(errs, validation.CustomValidationError{Field: "finalAmount", Message: "must be between 0 and totalPaid"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type VendorEarningsRequest struct {
	PageQuery
	ID string `param:"id" validate:"required,uuid"`
}

func (r *VendorEarningsRequest) Validate() error {
	return validation.Struct(r)
}

// ---- notifications

type ListNotificationsRequest struct {
	PageQuery
	UnreadOnly bool `query:"unread"`
}

func (r *ListNotificationsRequest) Validate() error {
	return validation.Struct(r)
}
