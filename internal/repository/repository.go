package repository

import (
	"context"
	"errors"
	"time"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"

	"github.com/lib/pq"
)

// Package repository 实体仓库接口与 Postgres 实现
// 每个实体一个接口，service 层只依赖接口，便于用内存假实现做场景测试

// 哨兵错误：service 层据此映射为符号化业务错误
var (
	// ErrNotFound 目标行不存在
	ErrNotFound = errors.New("not found")
	// ErrConflict 唯一约束冲突（重复成员、重复邮箱等）
	ErrConflict = errors.New("conflict")
)

// IsUniqueViolation 判断是否为 Postgres 唯一约束冲突（SQLSTATE 23505）
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// UsersRepository 用户仓库
type UsersRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateEmail(ctx context.Context, userID, email string) (*domain.User, error)
	SetStatus(ctx context.Context, userID string, status domain.UserStatus) (*domain.User, error)
}

// RoomsRepository 房间仓库
type RoomsRepository interface {
	// CreateRoomWithOwner 在同一事务中创建房间并将创建者写入成员表（OWNER）
	CreateRoomWithOwner(ctx context.Context, room *domain.Room, owner *domain.RoomMember) error
	GetRoom(ctx context.Context, roomID string) (*domain.Room, error)
	ListRoomsByUser(ctx context.Context, userID string) ([]*domain.Room, error)
	UpdateRoom(ctx context.Context, room *domain.Room) error
	// DeleteRoom 删除房间，传感器/警报/成员/审计日志随外键级联删除
	DeleteRoom(ctx context.Context, roomID string) error
}

// RoomMembersRepository 房间成员仓库
type RoomMembersRepository interface {
	GetMember(ctx context.Context, roomID, userID string) (*domain.RoomMember, error)
	ListMembers(ctx context.Context, roomID string) ([]*domain.RoomMember, error)
	// AddMember (room_id, user_id) 重复时返回 ErrConflict
	AddMember(ctx context.Context, member *domain.RoomMember) error
	UpdateMemberRole(ctx context.Context, roomID, userID string, role domain.RoomRole) (*domain.RoomMember, error)
	RemoveMember(ctx context.Context, roomID, userID string) error
}

// SensorsRepository 传感器仓库
type SensorsRepository interface {
	CreateSensor(ctx context.Context, sensor *domain.Sensor) error
	GetSensor(ctx context.Context, sensorID string) (*domain.Sensor, error)
	ListSensorsByRoom(ctx context.Context, roomID string) ([]*domain.Sensor, error)
	UpdateSensor(ctx context.Context, sensor *domain.Sensor) error
	RemoveSensor(ctx context.Context, sensorID string) error
}

// IngestRepository 事件落库 + 警报判定的原子单元
type IngestRepository interface {
	// RecordEvent 在单个事务内写入传感器事件并评估警报开启：
	// 房间未布防或已有 OPEN 警报时只落事件；否则尝试开启警报。
	// 并发竞争由 alerts(room_id) WHERE status='OPEN' 部分唯一索引裁决，
	// 竞争失败方吸收为无操作（返回 nil 警报，不报错）。
	RecordEvent(ctx context.Context, event *domain.SensorEvent) (*domain.Alert, error)
}

// AlertsRepository 警报仓库
type AlertsRepository interface {
	GetAlert(ctx context.Context, alertID string) (*domain.Alert, error)
	// FindOpenAlert 返回房间当前 OPEN 警报；不存在时返回 ErrNotFound
	FindOpenAlert(ctx context.Context, roomID string) (*domain.Alert, error)
	ListAlertsByRoom(ctx context.Context, roomID string) ([]*domain.Alert, error)
	// CloseOpenAlert 条件更新房间当前 OPEN 警报为 CLOSED；
	// 无 OPEN 警报时返回 ErrNotFound（重复关闭天然失败）
	CloseOpenAlert(ctx context.Context, roomID, closedByUserID string, closedAt time.Time) (*domain.Alert, error)
}

// NotificationsRepository 通知仓库
type NotificationsRepository interface {
	// BulkCreate 单条多行 INSERT，整批成功或整批失败
	BulkCreate(ctx context.Context, notifications []*domain.Notification) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error)
	ListByAlert(ctx context.Context, alertID string) ([]*domain.Notification, error)
	// MarkRead 仅允许收件人本人标记已读
	MarkRead(ctx context.Context, notificationID, userID string, readAt time.Time) (*domain.Notification, error)
}

// ActivityLogRepository 审计日志仓库（仅追加）
type ActivityLogRepository interface {
	Append(ctx context.Context, entry *domain.RoomActivityLog) error
	ListByRoom(ctx context.Context, roomID string) ([]*domain.RoomActivityLog, error)
}
