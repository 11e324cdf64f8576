package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/deppfellow/go-marketplace/internal/model"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

const (
	TaskNotification        = "notification:send"
	TaskSettlementReconcile = "settlement:reconcile"

	notificationTimeout = 30 * time.Second
)

// NotificationPayload is one notification to deliver on every channel the
// recipient has: in-app always, email when an address is known.
type NotificationPayload struct {
	RecipientID      string                 `json:"recipient_id"`
	RecipientAddress string                 `json:"recipient_address,omitempty"`
	Type             model.NotificationType `json:"type"`
	Message          string                 `json:"message"`
	DeviceToken      string                 `json:"device_token,omitempty"`
	WithdrawalID     string                 `json:"withdrawal_id,omitempty"`
	Status           string                 `json:"status,omitempty"`
	Amount           string                 `json:"amount,omitempty"`
}

// NewNotificationTask builds a single-attempt notification task. A failed
// delivery is archived, never retried.
func NewNotificationTask(p NotificationPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskNotification,
		payload,
		asynq.MaxRetry(0),
		asynq.Queue(QueueDefault),
		asynq.Timeout(notificationTimeout),
	), nil
}

// NewReconcileTask builds the periodic ledger reconciliation task. Unique
// keeps runs from piling up when one overruns its interval.
func NewReconcileTask(interval time.Duration) *asynq.Task {
	return asynq.NewTask(
		TaskSettlementReconcile,
		nil,
		asynq.MaxRetry(0),
		asynq.Queue(QueueLow),
		asynq.Timeout(interval),
		asynq.Unique(interval),
	)
}
