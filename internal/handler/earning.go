package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-marketplace/internal/model"
	"github.com/deppfellow/go-marketplace/internal/repository"
	"github.com/deppfellow/go-marketplace/internal/server"
	"github.com/deppfellow/go-marketplace/internal/service"
	"github.com/deppfellow/go-marketplace/internal/validation"
)

type earningService interface {
	Record(ctx context.Context, input service.RecordEarningInput) (*model.VendorEarning, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, page repository.Page) (*model.PaginatedResponse[model.VendorEarning], error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.VendorEarning, error)
	ListAll(ctx context.Context, page repository.Page) (*model.PaginatedResponse[model.VendorEarning], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EarningHandler exposes the earnings ledger: vendors read their own rows,
// admins record, browse and correct.
type EarningHandler struct {
	Handler
	earnings earningService
	vendors  vendorResolver
}

func NewEarningHandler(s *server.Server, earnings earningService, vendors vendorResolver) *EarningHandler {
	return &EarningHandler{
		Handler:  NewHandler(s),
		earnings: earnings,
		vendors:  vendors,
	}
}

func (h *EarningHandler) Mine(c echo.Context, req *PageRequest) (*model.PaginatedResponse[model.VendorEarning], error) {
	vendor, err := currentVendor(c, h.vendors)
	if err != nil {
		return nil, err
	}
	return h.earnings.ListByVendor(c.Request().Context(), vendor.ID, req.toPage())
}

func (h *EarningHandler) Record(c echo.Context, req *RecordEarningRequest) (*model.VendorEarning, error) {
	bookingID, err := validation.ParseUUID("bookingId", req.BookingID)
	if err != nil {
		return nil, err
	}
	vendorID, err := validation.ParseUUID("vendorId", req.VendorID)
	if err != nil {
		return nil, err
	}

	return h.earnings.Record(c.Request().Context(), service.RecordEarningInput{
		BookingID:            bookingID,
		VendorID:             vendorID,
		TotalPaid:            req.TotalPaid,
		CommissionPercentage: req.CommissionPercentage,
		CommissionAmount:     req.CommissionAmount,
		FinalAmount:          req.FinalAmount,
	})
}

func (h *EarningHandler) List(c echo.Context, req *PageRequest) (*model.PaginatedResponse[model.VendorEarning], error) {
	return h.earnings.ListAll(c.Request().Context(), req.toPage())
}

func (h *EarningHandler) ByVendor(c echo.Context, req *VendorEarningsRequest) (*model.PaginatedResponse[model.VendorEarning], error) {
	vendorID, err := validation.ParseUUID("id", req.ID)
	if err != nil {
		return nil, err
	}
	return h.earnings.ListByVendor(c.Request().Context(), vendorID, req.toPage())
}

func (h *EarningHandler) ByBooking(c echo.Context, req *IDRequest) ([]model.VendorEarning, error) {
	bookingID, err := validation.ParseUUID("id", req.ID)
	if err != nil {
		return nil, err
	}
	return h.earnings.ListByBooking(c.Request().Context(), bookingID)
}

func (h *EarningHandler) Delete(c echo.Context, req *IDRequest) error {
	id, err := validation.ParseUUID("id", req.ID)
	if err != nil {
		return err
	}
	return h.earnings.Delete(c.Request().Context(), id)
}
