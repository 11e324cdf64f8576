package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/deppfellow/go-marketplace/internal/model"
	"github.com/deppfellow/go-marketplace/internal/repository"
)

type notificationStore interface {
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, page repository.Page) ([]model.Notification, int, error)
	MarkRead(ctx context.Context, id uuid.UUID, recipientID string) (*model.Notification, error)
}

type NotificationService struct {
	notifications notificationStore
}

func NewNotificationService(notifications notificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page repository.Page) (*model.PaginatedResponse[model.Notification], error) {
	page = page.Normalize()
	items, total, err := s.notifications.ListByRecipient(ctx, userID, unreadOnly, page)
	if err != nil {
		return nil, err
	}
	return model.NewPaginatedResponse(items, page.Page, page.Limit, total), nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID, userID string) (*model.Notification, error) {
	return s.notifications.MarkRead(ctx, id, userID)
}
