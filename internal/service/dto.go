package service

import (
	"time"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
)

// DTO 层：对外响应结构
// 领域模型里的 sql.Null* 字段在这里转成指针，序列化为 null 而不是 {Valid:false}

// UserDTO 用户信息（不含密码哈希）
type UserDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserDTO(u *domain.User) *UserDTO {
	return &UserDTO{
		ID:        u.UserID,
		Email:     u.Email,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	}
}

// RoomDTO 房间信息
type RoomDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsArmed   bool      `json:"isArmed"`
	CreatedAt time.Time `json:"createdAt"`
}

func toRoomDTO(r *domain.Room) *RoomDTO {
	return &RoomDTO{
		ID:        r.RoomID,
		Name:      r.Name,
		IsArmed:   r.IsArmed,
		CreatedAt: r.CreatedAt,
	}
}

// MemberDTO 房间成员信息
type MemberDTO struct {
	ID      string    `json:"id"`
	RoomID  string    `json:"roomId"`
	UserID  string    `json:"userId"`
	Role    string    `json:"memberRole"`
	AddedAt time.Time `json:"addedAt"`
}

func toMemberDTO(m *domain.RoomMember) *MemberDTO {
	return &MemberDTO{
		ID:      m.MemberID,
		RoomID:  m.RoomID,
		UserID:  m.UserID,
		Role:    string(m.Role),
		AddedAt: m.AddedAt,
	}
}

// SensorDTO 传感器信息（不含密钥哈希）
type SensorDTO struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	Name      string    `json:"name"`
	Kind      string    `json:"type"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func toSensorDTO(s *domain.Sensor) *SensorDTO {
	return &SensorDTO{
		ID:        s.SensorID,
		RoomID:    s.RoomID,
		Name:      s.Name,
		Kind:      string(s.Kind),
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
	}
}

// SensorEventDTO 传感器事件信息
type SensorEventDTO struct {
	ID        string    `json:"id"`
	SensorID  string    `json:"sensorId"`
	RoomID    string    `json:"roomId"`
	Kind      string    `json:"eventType"`
	State     *string   `json:"state"` // MOTION 事件恒为 null
	CreatedAt time.Time `json:"createdAt"`
}

func toSensorEventDTO(e *domain.SensorEvent) *SensorEventDTO {
	dto := &SensorEventDTO{
		ID:        e.EventID,
		SensorID:  e.SensorID,
		RoomID:    e.RoomID,
		Kind:      string(e.Kind),
		CreatedAt: e.CreatedAt,
	}
	if e.State.Valid {
		state := e.State.String
		dto.State = &state
	}
	return dto
}

// AlertDTO 警报信息
type AlertDTO struct {
	ID             string     `json:"id"`
	RoomID         string     `json:"roomId"`
	EventID        string     `json:"eventId"`
	Status         string     `json:"status"`
	ClosedByUserID *string    `json:"closedByUserId"`
	CreatedAt      time.Time  `json:"createdAt"`
	ClosedAt       *time.Time `json:"closedAt"`
}

func toAlertDTO(a *domain.Alert) *AlertDTO {
	dto := &AlertDTO{
		ID:        a.AlertID,
		RoomID:    a.RoomID,
		EventID:   a.EventID,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
	}
	if a.ClosedByUserID.Valid {
		v := a.ClosedByUserID.String
		dto.ClosedByUserID = &v
	}
	if a.ClosedAt.Valid {
		v := a.ClosedAt.Time
		dto.ClosedAt = &v
	}
	return dto
}

// NotificationDTO 通知信息
type NotificationDTO struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	RoomID    string     `json:"roomId"`
	AlertID   string     `json:"alertId"`
	Message   string     `json:"message"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt"`
}

func toNotificationDTO(n *domain.Notification) *NotificationDTO {
	dto := &NotificationDTO{
		ID:        n.NotificationID,
		UserID:    n.UserID,
		RoomID:    n.RoomID,
		AlertID:   n.AlertID,
		Message:   n.Message,
		Status:    string(n.Status),
		CreatedAt: n.CreatedAt,
	}
	if n.ReadAt.Valid {
		v := n.ReadAt.Time
		dto.ReadAt = &v
	}
	return dto
}

// ActivityDTO 审计日志条目
type ActivityDTO struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"roomId"`
	ActorUserID string    `json:"actorUserId"`
	Action      string    `json:"action"`
	Details     *string   `json:"details"`
	TargetType  *string   `json:"targetType"`
	TargetID    *string   `json:"targetId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toActivityDTO(e *domain.RoomActivityLog) *ActivityDTO {
	dto := &ActivityDTO{
		ID:          e.LogID,
		RoomID:      e.RoomID,
		ActorUserID: e.ActorUserID,
		Action:      string(e.Action),
		CreatedAt:   e.CreatedAt,
	}
	if e.Details.Valid {
		v := e.Details.String
		dto.Details = &v
	}
	if e.TargetType.Valid {
		v := e.TargetType.String
		dto.TargetType = &v
	}
	if e.TargetID.Valid {
		v := e.TargetID.String
		dto.TargetID = &v
	}
	return dto
}
