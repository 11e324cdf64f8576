package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-marketplace/internal/server"
	"github.com/deppfellow/go-marketplace/internal/service"
	"github.com/deppfellow/go-marketplace/internal/validation"
)

type paymentService interface {
	FinalizeBookingPayment(ctx context.Context, paymentID uuid.UUID) (*service.FinalizedPayment, error)
}

type PaymentHandler struct {
	Handler
	payments paymentService
}

func NewPaymentHandler(s *server.Server, payments paymentService) *PaymentHandler {
	return &PaymentHandler{
		Handler:  NewHandler(s),
		payments: payments,
	}
}

// Succeed finalizes a booking payment and records its ledger row.
func (h *PaymentHandler) Succeed(c echo.Context, req *IDRequest) (*service.FinalizedPayment, error) {
	id, err := validation.ParseUUID("id", req.ID)
	if err != nil {
		return nil, err
	}
	return h.payments.FinalizeBookingPayment(c.Request().Context(), id)
}
