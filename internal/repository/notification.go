package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/go-marketplace/internal/model"
)

const notificationColumns = `id, recipient_id, type, message, is_read, created_at`

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO notifications (recipient_id, type, message)
		VALUES (@recipient_id, @type, @message)
		RETURNING `+notificationColumns, pgx.NamedArgs{
		"recipient_id": n.RecipientID,
		"type":         n.Type,
		"message":      n.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}
	return collectOne[model.Notification](rows, "notification")
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, page Page) ([]model.Notification, int, error) {
	where := ` WHERE recipient_id = @recipient_id`
	if unreadOnly {
		where += ` AND NOT is_read`
	}
	args := pgx.NamedArgs{"recipient_id": recipientID}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	page = page.Normalize()
	args["limit"] = page.Limit
	args["offset"] = page.Offset()

	rows, err := r.db.Query(ctx, `SELECT `+notificationColumns+` FROM notifications`+where+`
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	items, err := collectAll[model.Notification](rows, "notification")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// MarkRead flags the notification as read. It only matches rows owned by
// recipientID, so another user's id reads as not found.
func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID, recipientID string) (*model.Notification, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = @id AND recipient_id = @recipient_id
		RETURNING `+notificationColumns, pgx.NamedArgs{
		"id":           id,
		"recipient_id": recipientID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	return collectOne[model.Notification](rows, "notification")
}
