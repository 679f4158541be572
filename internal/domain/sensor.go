package domain

import (
	"database/sql"
	"time"
)

// Sensor 传感器领域模型（对应 sensors 表）
// DeviceSecretHash 为设备共享密钥的 bcrypt 哈希；明文仅在创建时返回一次
type Sensor struct {
	SensorID         string         `db:"sensor_id"`
	RoomID           string         `db:"room_id"`
	Name             string         `db:"name"`
	Kind             SensorKind     `db:"kind"`
	IsActive         bool           `db:"is_active"`
	DeviceSecretHash sql.NullString `db:"device_secret_hash"` // nullable，未配置密钥的传感器拒绝设备上报
	CreatedAt        time.Time      `db:"created_at"`
}

// SensorEvent 传感器事件领域模型（对应 sensor_events 表）
// 创建后不可变；kind 在创建时从传感器复制
type SensorEvent struct {
	EventID   string         `db:"event_id"`
	SensorID  string         `db:"sensor_id"`
	RoomID    string         `db:"room_id"`
	Kind      SensorKind     `db:"kind"`
	State     sql.NullString `db:"state"` // 仅 OPEN 类型事件携带 OPEN/CLOSED；MOTION 恒为 NULL
	CreatedAt time.Time      `db:"created_at"`
}
