package domain

import (
	"database/sql"
	"time"
)

// Alert 警报领域模型（对应 alerts 表）
// 不变量：每个房间同一时刻至多一条 status=OPEN 的警报
// （由 alerts(room_id) WHERE status='OPEN' 部分唯一索引保证）
type Alert struct {
	AlertID        string         `db:"alert_id"`
	RoomID         string         `db:"room_id"`
	EventID        string         `db:"event_id"` // 触发本警报的传感器事件
	Status         AlertStatus    `db:"status"`
	ClosedByUserID sql.NullString `db:"closed_by_user_id"`
	CreatedAt      time.Time      `db:"created_at"`
	ClosedAt       sql.NullTime   `db:"closed_at"`
}

// Notification 通知领域模型（对应 notifications 表）
// 仅在警报打开时由扇出批量创建，每个房间成员一条
type Notification struct {
	NotificationID string             `db:"notification_id"`
	UserID         string             `db:"user_id"`
	RoomID         string             `db:"room_id"`
	AlertID        string             `db:"alert_id"`
	Message        string             `db:"message"`
	Status         NotificationStatus `db:"status"`
	CreatedAt      time.Time          `db:"created_at"`
	ReadAt         sql.NullTime       `db:"read_at"`
}
