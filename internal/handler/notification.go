package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-marketplace/internal/model"
	"github.com/deppfellow/go-marketplace/internal/repository"
	"github.com/deppfellow/go-marketplace/internal/server"
	"github.com/deppfellow/go-marketplace/internal/validation"
)

type notificationService interface {
	List(ctx context.Context, userID string, unreadOnly bool, page repository.Page) (*model.PaginatedResponse[model.Notification], error)
	MarkRead(ctx context.Context, id uuid.UUID, userID string) (*model.Notification, error)
}

// NotificationHandler serves the caller's in-app inbox.
type NotificationHandler struct {
	Handler
	notifications notificationService
}

func NewNotificationHandler(s *server.Server, notifications notificationService) *NotificationHandler {
	return &NotificationHandler{
		Handler:       NewHandler(s),
		notifications: notifications,
	}
}

func (h *NotificationHandler) List(c echo.Context, req *ListNotificationsRequest) (*model.PaginatedResponse[model.Notification], error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, err
	}
	return h.notifications.List(c.Request().Context(), userID, req.UnreadOnly, req.toPage())
}

func (h *NotificationHandler) MarkRead(c echo.Context, req *IDRequest) (*model.Notification, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, err
	}
	id, err := validation.ParseUUID("id", req.ID)
	if err != nil {
		return nil, err
	}
	return h.notifications.MarkRead(c.Request().Context(), id, userID)
}
