package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
)

// PostgresNotificationsRepository 通知仓库 Postgres 实现
type PostgresNotificationsRepository struct {
	db *sql.DB
}

// NewPostgresNotificationsRepository 创建通知仓库
func NewPostgresNotificationsRepository(db *sql.DB) *PostgresNotificationsRepository {
	return &PostgresNotificationsRepository{db: db}
}

var _ NotificationsRepository = (*PostgresNotificationsRepository)(nil)

const notificationColumns = `notification_id::text, user_id::text, room_id::text, alert_id::text, message, status, created_at, read_at`

// BulkCreate 批量创建通知
// 拼一条多行 INSERT，整批要么全部写入要么全部失败（扇出不允许部分成功）
func (r *PostgresNotificationsRepository) BulkCreate(ctx context.Context, notifications []*domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO notifications (notification_id, user_id, room_id, alert_id, message, status, created_at) VALUES `)

	args := make([]interface{}, 0, len(notifications)*7)
	for i, n := range notifications {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 7
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args,
			n.NotificationID,
			n.UserID,
			n.RoomID,
			n.AlertID,
			n.Message,
			n.Status,
			n.CreatedAt,
		)
	}

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to bulk create notifications: %w", err)
	}
	return nil
}

// ListByUser 列出用户的全部通知（按创建时间倒序）
func (r *PostgresNotificationsRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListByAlert 列出某条警报扇出的全部通知
func (r *PostgresNotificationsRepository) ListByAlert(ctx context.Context, alertID string) ([]*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE alert_id = $1 ORDER BY created_at ASC`
	return r.list(ctx, query, alertID)
}

func (r *PostgresNotificationsRepository) list(ctx context.Context, query string, arg interface{}) ([]*domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.NotificationID, &n.UserID, &n.RoomID, &n.AlertID, &n.Message, &n.Status, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead 收件人标记已读；非收件人或不存在时返回 ErrNotFound
func (r *PostgresNotificationsRepository) MarkRead(ctx context.Context, notificationID, userID string, readAt time.Time) (*domain.Notification, error) {
	query := `
		UPDATE notifications
		SET status = 'READ', read_at = $3
		WHERE notification_id = $1 AND user_id = $2
		RETURNING ` + notificationColumns

	var n domain.Notification
	err := r.db.QueryRowContext(ctx, query, notificationID, userID, readAt).Scan(
		&n.NotificationID,
		&n.UserID,
		&n.RoomID,
		&n.AlertID,
		&n.Message,
		&n.Status,
		&n.CreatedAt,
		&n.ReadAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("notification %s for user %s: %w", notificationID, userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return &n, nil
}
