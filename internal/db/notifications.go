package db

import (
	"context"

	"github.com/google/uuid"

	"golists/internal/models"
)

// CreateNotification stores an in-app notification.
func (d *DB) CreateNotification(ctx context.Context, n *models.Notification) error {
	return d.Pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, kind, comment_id, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, n.UserID, n.Kind, n.CommentID, n.Message).Scan(&n.ID, &n.CreatedAt)
}

// ListNotifications returns a user's notifications, newest first.
func (d *DB) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, user_id, kind, comment_id, message, read_at, created_at
		FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR read_at IS NULL)
		ORDER BY created_at DESC
		LIMIT $3
	`, userID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.CommentID, &n.Message, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead marks one of userID's notifications as read.
func (d *DB) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotificationNotFound
	}
	return nil
}
