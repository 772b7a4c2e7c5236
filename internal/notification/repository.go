package notification

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles notification data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new notification repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const notificationColumns = `id, recipient_id, group_id, message, is_read, related_entity_type, related_entity_id, created_at`

func scanNotification(row interface{ Scan(...any) error }, n *Notification) error {
	return row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.GroupID,
		&n.Message,
		&n.IsRead,
		&n.RelatedEntityType,
		&n.RelatedEntityID,
		&n.CreatedAt,
	)
}

// recipientScope returns the WHERE clause and arguments selecting a recipient's
// notifications, optionally limited to one group
func recipientScope(recipientID int64, groupID *int64) (string, []any) {
	where := `recipient_id = $1`
	args := []any{recipientID}
	if groupID != nil {
		args = append(args, *groupID)
		where += fmt.Sprintf(` AND group_id = $%d`, len(args))
	}
	return where, args
}

// Create inserts a new notification into the database
func (r *Repository) Create(ctx context.Context, notification *Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, group_id, message, related_entity_type, related_entity_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + notificationColumns

	err := scanNotification(r.db.QueryRowContext(ctx, query,
		notification.RecipientID,
		notification.GroupID,
		notification.Message,
		notification.RelatedEntityType,
		notification.RelatedEntityID,
	), notification)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByID retrieves a notification by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	notification := &Notification{}
	if err := scanNotification(r.db.QueryRowContext(ctx, query, id), notification); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return notification, nil
}

// List retrieves a page of a user's notifications, newest first
func (r *Repository) List(ctx context.Context, recipientID int64, filter Filter, limit, offset int) ([]*Notification, int, error) {
	where, args := recipientScope(recipientID, filter.GroupID)
	if filter.UnreadOnly {
		where += ` AND is_read = false`
	}

	// Get total count
	var total int
	countQuery := `SELECT COUNT(*) FROM notifications WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	// Get notifications
	query := fmt.Sprintf(`SELECT %s FROM notifications WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		notificationColumns, where, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		notification := &Notification{}
		if err := scanNotification(rows, notification); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}

	return notifications, total, rows.Err()
}

// MarkAsRead marks a notification as read if it belongs to recipientID.
// It reports whether a row was updated.
func (r *Repository) MarkAsRead(ctx context.Context, id, recipientID int64) (bool, error) {
	query := `UPDATE notifications SET is_read = true WHERE id = $1 AND recipient_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// MarkAllAsRead marks a user's unread notifications as read and returns how many changed
func (r *Repository) MarkAllAsRead(ctx context.Context, recipientID int64, groupID *int64) (int64, error) {
	where, args := recipientScope(recipientID, groupID)
	query := `UPDATE notifications SET is_read = true WHERE ` + where + ` AND is_read = false`

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// CountUnread returns the count of a user's unread notifications
func (r *Repository) CountUnread(ctx context.Context, recipientID int64, groupID *int64) (int, error) {
	where, args := recipientScope(recipientID, groupID)

	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE ` + where + ` AND is_read = false`
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// CountUnreadByGroup returns a user's unread counts keyed by group
func (r *Repository) CountUnreadByGroup(ctx context.Context, recipientID int64) (map[int64]int, error) {
	query := `
		SELECT group_id, COUNT(*)
		FROM notifications
		WHERE recipient_id = $1 AND is_read = false AND group_id IS NOT NULL
		GROUP BY group_id
	`

	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread by group: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var groupID int64
		var count int
		if err := rows.Scan(&groupID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan unread count: %w", err)
		}
		counts[groupID] = count
	}
	return counts, rows.Err()
}
