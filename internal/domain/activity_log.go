package domain

import (
	"database/sql"
	"time"
)

// RoomActivityLog 房间审计日志领域模型（对应 room_activity_log 表）
// 仅追加，创建后不更新不删除
// TargetType 与 TargetID 要么都有值要么都为 NULL（数据库 CHECK 约束）
type RoomActivityLog struct {
	LogID       string         `db:"log_id"`
	RoomID      string         `db:"room_id"`
	ActorUserID string         `db:"actor_user_id"`
	Action      ActivityAction `db:"action"`
	Details     sql.NullString `db:"details"`
	TargetType  sql.NullString `db:"target_type"`
	TargetID    sql.NullString `db:"target_id"`
	CreatedAt   time.Time      `db:"created_at"`
}
