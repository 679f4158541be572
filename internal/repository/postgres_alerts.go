package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
)

// PostgresAlertsRepository 警报仓库 Postgres 实现
type PostgresAlertsRepository struct {
	db *sql.DB
}

// NewPostgresAlertsRepository 创建警报仓库
func NewPostgresAlertsRepository(db *sql.DB) *PostgresAlertsRepository {
	return &PostgresAlertsRepository{db: db}
}

var _ AlertsRepository = (*PostgresAlertsRepository)(nil)

const alertColumns = `alert_id::text, room_id::text, event_id::text, status, closed_by_user_id::text, created_at, closed_at`

func scanAlert(row *sql.Row) (*domain.Alert, error) {
	var a domain.Alert
	err := row.Scan(
		&a.AlertID,
		&a.RoomID,
		&a.EventID,
		&a.Status,
		&a.ClosedByUserID,
		&a.CreatedAt,
		&a.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAlert 根据 alert_id 获取警报
func (r *PostgresAlertsRepository) GetAlert(ctx context.Context, alertID string) (*domain.Alert, error) {
	if alertID == "" {
		return nil, fmt.Errorf("alert_id is required: %w", ErrNotFound)
	}

	query := `SELECT ` + alertColumns + ` FROM alerts WHERE alert_id = $1`

	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, alertID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("alert %s: %w", alertID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return alert, nil
}

// FindOpenAlert 获取房间当前 OPEN 警报；不存在时返回 ErrNotFound
func (r *PostgresAlertsRepository) FindOpenAlert(ctx context.Context, roomID string) (*domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE room_id = $1 AND status = 'OPEN'`

	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, roomID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no open alert for room %s: %w", roomID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find open alert: %w", err)
	}
	return alert, nil
}

// ListAlertsByRoom 列出房间全部警报（按创建时间倒序）
func (r *PostgresAlertsRepository) ListAlertsByRoom(ctx context.Context, roomID string) ([]*domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE room_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(&a.AlertID, &a.RoomID, &a.EventID, &a.Status, &a.ClosedByUserID, &a.CreatedAt, &a.ClosedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}
	return alerts, nil
}

// CloseOpenAlert 条件更新：仅当房间存在 OPEN 警报时关闭它
// 重复关闭时 WHERE 条件落空，返回 ErrNotFound，这保证了每个警报实例恰好关闭一次
func (r *PostgresAlertsRepository) CloseOpenAlert(ctx context.Context, roomID, closedByUserID string, closedAt time.Time) (*domain.Alert, error) {
	query := `
		UPDATE alerts
		SET status = 'CLOSED', closed_by_user_id = $2, closed_at = $3
		WHERE room_id = $1 AND status = 'OPEN'
		RETURNING ` + alertColumns

	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, roomID, closedByUserID, closedAt))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no open alert for room %s: %w", roomID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to close alert: %w", err)
	}
	return alert, nil
}
