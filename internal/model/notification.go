package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType groups notifications by the event that produced them.
type NotificationType string

const (
	NotificationWithdrawalRequested NotificationType = "withdrawal_requested"
	NotificationWithdrawalUpdated   NotificationType = "withdrawal_status_updated"
)

// Notification is an in-app message for a user.
type Notification struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	RecipientID string           `json:"recipientId" db:"recipient_id"`
	Type        NotificationType `json:"type" db:"type"`
	Message     string           `json:"message" db:"message"`
	IsRead      bool             `json:"isRead" db:"is_read"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
}
