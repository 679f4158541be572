package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
)

// PostgresActivityLogRepository 审计日志仓库 Postgres 实现
// 仅追加：没有 UPDATE/DELETE 路径
type PostgresActivityLogRepository struct {
	db *sql.DB
}

// NewPostgresActivityLogRepository 创建审计日志仓库
func NewPostgresActivityLogRepository(db *sql.DB) *PostgresActivityLogRepository {
	return &PostgresActivityLogRepository{db: db}
}

var _ ActivityLogRepository = (*PostgresActivityLogRepository)(nil)

// Append 追加一条审计日志
func (r *PostgresActivityLogRepository) Append(ctx context.Context, entry *domain.RoomActivityLog) error {
	query := `
		INSERT INTO room_activity_log (log_id, room_id, actor_user_id, action, details, target_type, target_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.LogID,
		entry.RoomID,
		entry.ActorUserID,
		entry.Action,
		entry.Details,
		entry.TargetType,
		entry.TargetID,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append activity log: %w", err)
	}
	return nil
}

// ListByRoom 列出房间审计日志（按时间倒序）
func (r *PostgresActivityLogRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.RoomActivityLog, error) {
	query := `
		SELECT log_id::text, room_id::text, actor_user_id::text, action, details, target_type, target_id, created_at
		FROM room_activity_log
		WHERE room_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity log: %w", err)
	}
	defer rows.Close()

	var entries []*domain.RoomActivityLog
	for rows.Next() {
		var e domain.RoomActivityLog
		if err := rows.Scan(&e.LogID, &e.RoomID, &e.ActorUserID, &e.Action, &e.Details, &e.TargetType, &e.TargetID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity log: %w", err)
	}
	return entries, nil
}
