package domain

// PlatformRole 平台级用户角色（与房间角色相互独立）
type PlatformRole string

const (
	PlatformRoleUser  PlatformRole = "USER"
	PlatformRoleAdmin PlatformRole = "ADMIN"
)

// UserStatus 平台级用户状态
// BLOCKED 用户在身份解析阶段即被拒绝，不进入任何授权判定
type UserStatus string

const (
	UserStatusActive  UserStatus = "ACTIVE"
	UserStatusBlocked UserStatus = "BLOCKED"
)

// RoomRole 房间内成员角色，权限顺序 OWNER > ADMIN > DEFAULT
type RoomRole string

const (
	RoomRoleOwner   RoomRole = "OWNER"
	RoomRoleAdmin   RoomRole = "ADMIN"
	RoomRoleDefault RoomRole = "DEFAULT"
)

// Valid 判断是否为合法的房间角色
func (r RoomRole) Valid() bool {
	switch r {
	case RoomRoleOwner, RoomRoleAdmin, RoomRoleDefault:
		return true
	}
	return false
}

// SensorKind 传感器类型
// MOTION 为无状态触发器；OPEN 为门窗磁，携带 OPEN/CLOSED 状态
type SensorKind string

const (
	SensorKindMotion SensorKind = "MOTION"
	SensorKindOpen   SensorKind = "OPEN"
)

// Valid 判断是否为合法的传感器类型
func (k SensorKind) Valid() bool {
	return k == SensorKindMotion || k == SensorKindOpen
}

// SensorState 门窗磁事件状态（仅 OPEN 类型传感器的事件携带）
type SensorState string

const (
	SensorStateOpen   SensorState = "OPEN"
	SensorStateClosed SensorState = "CLOSED"
)

// Valid 判断是否为合法的事件状态
func (s SensorState) Valid() bool {
	return s == SensorStateOpen || s == SensorStateClosed
}

// AlertStatus 警报状态
// 每个房间同一时刻至多存在一条 OPEN 警报（由数据库部分唯一索引保证）
type AlertStatus string

const (
	AlertStatusOpen   AlertStatus = "OPEN"
	AlertStatusClosed AlertStatus = "CLOSED"
)

// NotificationStatus 通知状态
// 本服务只产出 PENDING；SENT/FAILED 由外部投递器更新，READ 由收件人更新
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusRead    NotificationStatus = "READ"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// ActivityAction 审计日志动作
type ActivityAction string

const (
	ActionArmRoom      ActivityAction = "ARM_ROOM"
	ActionDisarmRoom   ActivityAction = "DISARM_ROOM"
	ActionUpdateRoom   ActivityAction = "UPDATE_ROOM"
	ActionAddSensor    ActivityAction = "ADD_SENSOR"
	ActionUpdateSensor ActivityAction = "UPDATE_SENSOR"
	ActionRemoveSensor ActivityAction = "REMOVE_SENSOR"
	ActionCreateAlert  ActivityAction = "CREATE_ALERT"
	ActionCloseAlert   ActivityAction = "CLOSE_ALERT"
	ActionAddMember    ActivityAction = "ADD_MEMBER"
	ActionUpdateMember ActivityAction = "UPDATE_MEMBER"
	ActionRemoveMember ActivityAction = "REMOVE_MEMBER"
)

// ActivityTargetType 审计日志目标实体类型
// target_type 与 target_id 要么同时存在，要么同时为空
type ActivityTargetType string

const (
	TargetRoom       ActivityTargetType = "ROOM"
	TargetSensor     ActivityTargetType = "SENSOR"
	TargetAlert      ActivityTargetType = "ALERT"
	TargetRoomMember ActivityTargetType = "ROOM_MEMBER"
	TargetUser       ActivityTargetType = "USER"
)
