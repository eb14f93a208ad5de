package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agroflow/agroflow-backend/pkg/database"
	"github.com/agroflow/agroflow-backend/pkg/errors"
)

// Notification types
const (
	TypeInfo    = "info"
	TypeSuccess = "succes"
	TypeWarning = "avertissement"
	TypeError   = "erreur"
)

// Notification is a per-recipient message with read state
type Notification struct {
	ID               string    `db:"id" json:"id"`
	RecipientID      string    `db:"recipient_id" json:"recipient_id"`
	NotificationType string    `db:"notification_type" json:"notification_type"`
	Module           string    `db:"module" json:"module"`
	Title            string    `db:"title" json:"title"`
	Message          string    `db:"message" json:"message"`
	IsRead           bool      `db:"is_read" json:"is_read"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// NotificationRepository handles notification persistence
type NotificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, notification *Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.NotificationType == "" {
		notification.NotificationType = TypeInfo
	}

	query := `
		INSERT INTO notifications (id, recipient_id, notification_type, module, title, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		notification.ID, notification.RecipientID, notification.NotificationType,
		notification.Module, notification.Title, notification.Message,
	).Scan(&notification.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// ListByRecipient lists a user's notifications, unread first
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*Notification, error) {
	var notifications []*Notification

	query := `
		SELECT id, recipient_id, notification_type, module, title, message, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1
	`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY is_read, created_at DESC`

	if err := r.db.SelectContext(ctx, &notifications, query, recipientID); err != nil {
		return nil, err
	}

	return notifications, nil
}

// MarkRead marks a notification as read for its recipient.
// Scoped by recipient so a user cannot mark another user's notifications.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`,
		id, recipientID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("notification")
	}

	return nil
}

// MarkAllRead marks all of a user's notifications as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND is_read = FALSE`,
		recipientID)
	if err != nil {
		return 0, err
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}

// CountUnread returns the number of unread notifications for a user
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`,
		recipientID)
	return count, err
}
