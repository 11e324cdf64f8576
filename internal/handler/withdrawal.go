package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-marketplace/internal/lib/settlement"
	"github.com/deppfellow/go-marketplace/internal/model"
	"github.com/deppfellow/go-marketplace/internal/repository"
	"github.com/deppfellow/go-marketplace/internal/server"
	"github.com/deppfellow/go-marketplace/internal/service"
	"github.com/deppfellow/go-marketplace/internal/validation"
)

type withdrawalService interface {
	GetBalance(ctx context.Context, vendorID uuid.UUID) (*settlement.Balance, error)
	RequestWithdrawal(ctx context.Context, vendorID uuid.UUID, input service.RequestWithdrawalInput) (*model.Withdrawal, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, input service.TransitionInput) (*model.Withdrawal, error)
	Cancel(ctx context.Context, id, vendorID uuid.UUID) error
	Get(ctx context.Context, id, vendorID uuid.UUID) (*model.Withdrawal, error)
	History(ctx context.Context, vendorID uuid.UUID, status *model.WithdrawalStatus, page repository.Page) (*model.PaginatedResponse[model.Withdrawal], error)
	List(ctx context.Context, filter repository.WithdrawalFilter) (*model.PaginatedResponse[model.Withdrawal], error)
	Stats(ctx context.Context) (*model.WithdrawalStats, error)
}

// WithdrawalHandler serves the vendor cash-out routes and their admin
// counterparts.
type WithdrawalHandler struct {
	Handler
	withdrawals withdrawalService
	vendors     vendorResolver
}

func NewWithdrawalHandler(s *server.Server, withdrawals withdrawalService, vendors vendorResolver) *WithdrawalHandler {
	return &WithdrawalHandler{
		Handler:     NewHandler(s),
		withdrawals: withdrawals,
		vendors:     vendors,
	}
}

func (h *WithdrawalHandler) Request(c echo.Context, req *RequestWithdrawalRequest) (*model.Withdrawal, error) {
	vendor, err := currentVendor(c, h.vendors)
	if err != nil {
		return nil, err
	}

	return h.withdrawals.RequestWithdrawal(c.Request().Context(), vendor.ID, service.RequestWithdrawalInput{
		Amount:      req.Amount,
		BankAccount: req.BankAccount,
		Notes:       req.Notes,
	})
}

func (h *WithdrawalHandler) Balance(c echo.Context, _ *EmptyRequest) (*settlement.Balance, error) {
	vendor, err := currentVendor(c, h.vendors)
	if err != nil {
		return nil, err
	}
	return h.withdrawals.GetBalance(c.Request().Context(), vendor.ID)
}

func (h *WithdrawalHandler) History(c echo.Context, req *WithdrawalHistoryRequest) (*model.PaginatedResponse[model.Withdrawal], error) {
	vendor, err := currentVendor(c, h.vendors)
	if err != nil {
		return nil, err
	}
	return h.withdrawals.History(c.Request().Context(), vendor.ID, statusFilter(req.Status), req.toPage())
}

func (h *WithdrawalHandler) Get(c echo.Context, req *IDRequest) (*model.Withdrawal, error) {
	vendor, err := currentVendor(c, h.vendors)
	if err != nil {
		return nil, err
	}
	id, err := validation.ParseUUID("id", req.ID)
	if err != nil {
		return nil, err
	}
	return h.withdrawals.Get(c.Request().Context(), id, vendor.ID)
}

func (h *WithdrawalHandler) Cancel(c echo.Context, req *IDRequest) error {
	vendor, err := currentVendor(c, h.vendors)
	if err != nil {
		return err
	}
	id, err := validation.ParseUUID("id", req.ID)
	if err != nil {
		return err
	}
	return h.withdrawals.Cancel(c.Request().Context(), id, vendor.ID)
}

// ---- admin

func (h *WithdrawalHandler) List(c echo.Context, req *AdminListWithdrawalsRequest) (*model.PaginatedResponse[model.Withdrawal], error) {
	filter := repository.WithdrawalFilter{
		Status: statusFilter(req.Status),
		Page:   req.toPage(),
	}
	if req.VendorID != "" {
		vendorID, err := validation.ParseUUID("vendorId", req.VendorID)
		if err != nil {
			return nil, err
		}
		filter.VendorID = &vendorID
	}
	return h.withdrawals.List(c.Request().Context(), filter)
}

func (h *WithdrawalHandler) Stats(c echo.Context, _ *EmptyRequest) (*model.WithdrawalStats, error) {
	return h.withdrawals.Stats(c.Request().Context())
}

func (h *WithdrawalHandler) UpdateStatus(c echo.Context, req *TransitionStatusRequest) (*model.Withdrawal, error) {
	adminID, err := currentUserID(c)
	if err != nil {
		return nil, err
	}
	id, err := validation.ParseUUID("id", req.ID)
	if err != nil {
		return nil, err
	}

	return h.withdrawals.TransitionStatus(c.Request().Context(), id, service.TransitionInput{
		Status:       model.WithdrawalStatus(req.Status),
		AdminID:      adminID,
		AdminMessage: req.AdminMessage,
	})
}

func (h *WithdrawalHandler) VendorBalance(c echo.Context, req *IDRequest) (*settlement.Balance, error) {
	vendorID, err := validation.ParseUUID("id", req.ID)
	if err != nil {
		return nil, err
	}
	return h.withdrawals.GetBalance(c.Request().Context(), vendorID)
}

func statusFilter(status string) *model.WithdrawalStatus {
	if status == "" {
		return nil
	}
	s := model.WithdrawalStatus(status)
	return &s
}
