package handler

import (
	"github.com/deppfellow/go-marketplace/internal/server"
	"github.com/deppfellow/go-marketplace/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Health       *HealthHandler
	OpenAPI      *OpenAPIHandler
	Withdrawal   *WithdrawalHandler
	Earning      *EarningHandler
	Payment      *PaymentHandler
	Notification *NotificationHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(s),
		OpenAPI:      NewOpenAPIHandler(s),
		Withdrawal:   NewWithdrawalHandler(s, services.Withdrawal, services.Vendor),
		Earning:      NewEarningHandler(s, services.Earning, services.Vendor),
		Payment:      NewPaymentHandler(s, services.Payment),
		Notification: NewNotificationHandler(s, services.Notification),
	}
}
