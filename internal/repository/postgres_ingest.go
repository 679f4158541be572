package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PostgresIngestRepository 事件落库与警报判定的原子实现
//
// "检查无 OPEN 警报再创建" 是典型的 check-then-act 竞态，这里不做应用层检查，
// 直接依赖 alerts(room_id) WHERE status='OPEN' 部分唯一索引：
// INSERT ... ON CONFLICT DO NOTHING，并发触发时恰好一个写入者胜出，
// 失败方視为被现有警报吸收，静默返回。
type PostgresIngestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresIngestRepository 创建事件落库仓库
func NewPostgresIngestRepository(db *sql.DB, logger *zap.Logger) *PostgresIngestRepository {
	return &PostgresIngestRepository{db: db, logger: logger}
}

var _ IngestRepository = (*PostgresIngestRepository)(nil)

// RecordEvent 在单个事务内写入事件并评估警报开启
// 返回新开启的警报；房间未布防、已有 OPEN 警报或竞争失败时返回 nil
func (r *PostgresIngestRepository) RecordEvent(ctx context.Context, event *domain.SensorEvent) (*domain.Alert, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sensor_events (event_id, sensor_id, room_id, kind, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, event.EventID, event.SensorID, event.RoomID, event.Kind, event.State, event.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sensor event: %w", err)
	}

	var isArmed bool
	err = tx.QueryRowContext(ctx, `SELECT is_armed FROM rooms WHERE room_id = $1`, event.RoomID).Scan(&isArmed)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("room %s: %w", event.RoomID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to check room arming: %w", err)
	}

	var alert *domain.Alert
	if isArmed {
		var a domain.Alert
		err = tx.QueryRowContext(ctx, `
			INSERT INTO alerts (alert_id, room_id, event_id, status, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (room_id) WHERE status = 'OPEN' DO NOTHING
			RETURNING alert_id::text, room_id::text, event_id::text, status, created_at
		`, uuid.New().String(), event.RoomID, event.EventID, domain.AlertStatusOpen, event.CreatedAt).Scan(
			&a.AlertID,
			&a.RoomID,
			&a.EventID,
			&a.Status,
			&a.CreatedAt,
		)
		switch {
		case err == sql.ErrNoRows:
			// 已有 OPEN 警报（或并发竞争失败），事件被吸收
			r.logger.Debug("sensor event absorbed by existing open alert",
				zap.String("room_id", event.RoomID),
				zap.String("event_id", event.EventID),
			)
		case err != nil:
			return nil, fmt.Errorf("failed to open alert: %w", err)
		default:
			alert = &a
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sensor event: %w", err)
	}
	return alert, nil
}
