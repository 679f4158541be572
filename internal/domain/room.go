package domain

import (
	"time"
)

// Room 房间领域模型（对应 rooms 表）
// 删除房间时级联删除其传感器、警报、成员与审计日志
type Room struct {
	RoomID    string    `db:"room_id"`
	Name      string    `db:"name"`
	IsArmed   bool      `db:"is_armed"` // 布防标志，true 时传感器触发可产生警报
	CreatedAt time.Time `db:"created_at"`
}

// RoomMember 房间成员领域模型（对应 room_members 表）
// (room_id, user_id) 唯一
type RoomMember struct {
	MemberID string    `db:"member_id"`
	RoomID   string    `db:"room_id"`
	UserID   string    `db:"user_id"`
	Role     RoomRole  `db:"member_role"`
	AddedAt  time.Time `db:"added_at"`
}
