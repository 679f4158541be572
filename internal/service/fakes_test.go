package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/repository"
)

// memStore 内存版仓库实现，场景测试用
// 单个结构体同时实现全部仓库接口，行为对齐 Postgres 实现的约定
// （哨兵错误、条件更新、OPEN 警报唯一性）
type memStore struct {
	mu            sync.Mutex
	users         map[string]*domain.User
	rooms         map[string]*domain.Room
	members       map[string]*domain.RoomMember // key: roomID + "/" + userID
	sensors       map[string]*domain.Sensor
	events        []*domain.SensorEvent
	alerts        map[string]*domain.Alert
	notifications map[string]*domain.Notification
	activity      []*domain.RoomActivityLog

	failBulkCreate bool
	failAppend     bool
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[string]*domain.User),
		rooms:         make(map[string]*domain.Room),
		members:       make(map[string]*domain.RoomMember),
		sensors:       make(map[string]*domain.Sensor),
		alerts:        make(map[string]*domain.Alert),
		notifications: make(map[string]*domain.Notification),
	}
}

var (
	_ repository.UsersRepository         = (*memStore)(nil)
	_ repository.RoomsRepository         = (*memStore)(nil)
	_ repository.RoomMembersRepository   = (*memStore)(nil)
	_ repository.SensorsRepository       = (*memStore)(nil)
	_ repository.IngestRepository        = (*memStore)(nil)
	_ repository.AlertsRepository        = (*memStore)(nil)
	_ repository.NotificationsRepository = (*memStore)(nil)
	_ repository.ActivityLogRepository   = (*memStore)(nil)
)

func memberKey(roomID, userID string) string {
	return roomID + "/" + userID
}

// --- UsersRepository ---

func (m *memStore) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrConflict
		}
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *memStore) GetUser(_ context.Context, userID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) ListUsers(_ context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) UpdateEmail(_ context.Context, userID, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if id != userID && u.Email == email {
			return nil, repository.ErrConflict
		}
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Email = email
	cp := *u
	return &cp, nil
}

func (m *memStore) SetStatus(_ context.Context, userID string, status domain.UserStatus) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Status = status
	cp := *u
	return &cp, nil
}

// --- RoomsRepository ---

func (m *memStore) CreateRoomWithOwner(_ context.Context, room *domain.Room, owner *domain.RoomMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rc := *room
	oc := *owner
	m.rooms[room.RoomID] = &rc
	m.members[memberKey(owner.RoomID, owner.UserID)] = &oc
	return nil
}

func (m *memStore) GetRoom(_ context.Context, roomID string) (*domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) ListRoomsByUser(_ context.Context, userID string) ([]*domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Room
	for _, mem := range m.members {
		if mem.UserID == userID {
			if r, ok := m.rooms[mem.RoomID]; ok {
				cp := *r
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (m *memStore) UpdateRoom(_ context.Context, room *domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.RoomID]; !ok {
		return repository.ErrNotFound
	}
	cp := *room
	m.rooms[room.RoomID] = &cp
	return nil
}

func (m *memStore) DeleteRoom(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[roomID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rooms, roomID)
	// 外键级联
	for k, mem := range m.members {
		if mem.RoomID == roomID {
			delete(m.members, k)
		}
	}
	for id, s := range m.sensors {
		if s.RoomID == roomID {
			delete(m.sensors, id)
		}
	}
	for id, a := range m.alerts {
		if a.RoomID == roomID {
			delete(m.alerts, id)
		}
	}
	return nil
}

// --- RoomMembersRepository ---

func (m *memStore) GetMember(_ context.Context, roomID, userID string) (*domain.RoomMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[memberKey(roomID, userID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *mem
	return &cp, nil
}

func (m *memStore) ListMembers(_ context.Context, roomID string) ([]*domain.RoomMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.RoomMember
	for _, mem := range m.members {
		if mem.RoomID == roomID {
			cp := *mem
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) AddMember(_ context.Context, member *domain.RoomMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memberKey(member.RoomID, member.UserID)
	if _, ok := m.members[key]; ok {
		return repository.ErrConflict
	}
	cp := *member
	m.members[key] = &cp
	return nil
}

func (m *memStore) UpdateMemberRole(_ context.Context, roomID, userID string, role domain.RoomRole) (*domain.RoomMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[memberKey(roomID, userID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	mem.Role = role
	cp := *mem
	return &cp, nil
}

func (m *memStore) RemoveMember(_ context.Context, roomID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memberKey(roomID, userID)
	if _, ok := m.members[key]; !ok {
		return repository.ErrNotFound
	}
	delete(m.members, key)
	return nil
}

// --- SensorsRepository ---

func (m *memStore) CreateSensor(_ context.Context, sensor *domain.Sensor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sensor
	m.sensors[sensor.SensorID] = &cp
	return nil
}

func (m *memStore) GetSensor(_ context.Context, sensorID string) (*domain.Sensor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sensors[sensorID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) ListSensorsByRoom(_ context.Context, roomID string) ([]*domain.Sensor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Sensor
	for _, s := range m.sensors {
		if s.RoomID == roomID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) UpdateSensor(_ context.Context, sensor *domain.Sensor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sensors[sensor.SensorID]; !ok {
		return repository.ErrNotFound
	}
	cp := *sensor
	m.sensors[sensor.SensorID] = &cp
	return nil
}

func (m *memStore) RemoveSensor(_ context.Context, sensorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sensors[sensorID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.sensors, sensorID)
	return nil
}

// --- IngestRepository ---

func (m *memStore) RecordEvent(_ context.Context, event *domain.SensorEvent) (*domain.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[event.RoomID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ec := *event
	m.events = append(m.events, &ec)

	if !room.IsArmed {
		return nil, nil
	}
	for _, a := range m.alerts {
		if a.RoomID == event.RoomID && a.Status == domain.AlertStatusOpen {
			return nil, nil
		}
	}
	alert := &domain.Alert{
		AlertID:   uuid.New().String(),
		RoomID:    event.RoomID,
		EventID:   event.EventID,
		Status:    domain.AlertStatusOpen,
		CreatedAt: event.CreatedAt,
	}
	m.alerts[alert.AlertID] = alert
	cp := *alert
	return &cp, nil
}

// --- AlertsRepository ---

func (m *memStore) GetAlert(_ context.Context, alertID string) (*domain.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[alertID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) FindOpenAlert(_ context.Context, roomID string) (*domain.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alerts {
		if a.RoomID == roomID && a.Status == domain.AlertStatusOpen {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) ListAlertsByRoom(_ context.Context, roomID string) ([]*domain.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Alert
	for _, a := range m.alerts {
		if a.RoomID == roomID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) CloseOpenAlert(_ context.Context, roomID, closedByUserID string, closedAt time.Time) (*domain.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alerts {
		if a.RoomID == roomID && a.Status == domain.AlertStatusOpen {
			a.Status = domain.AlertStatusClosed
			a.ClosedByUserID.String = closedByUserID
			a.ClosedByUserID.Valid = true
			a.ClosedAt.Time = closedAt
			a.ClosedAt.Valid = true
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- NotificationsRepository ---

func (m *memStore) BulkCreate(_ context.Context, notifications []*domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failBulkCreate {
		return repository.ErrConflict
	}
	for _, n := range notifications {
		cp := *n
		m.notifications[n.NotificationID] = &cp
	}
	return nil
}

func (m *memStore) ListByUser(_ context.Context, userID string) ([]*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) ListByAlert(_ context.Context, alertID string) ([]*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Notification
	for _, n := range m.notifications {
		if n.AlertID == alertID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) MarkRead(_ context.Context, notificationID, userID string, readAt time.Time) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[notificationID]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNotFound
	}
	n.Status = domain.NotificationStatusRead
	n.ReadAt.Time = readAt
	n.ReadAt.Valid = true
	cp := *n
	return &cp, nil
}

// --- ActivityLogRepository ---

func (m *memStore) Append(_ context.Context, entry *domain.RoomActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppend {
		return repository.ErrConflict
	}
	cp := *entry
	m.activity = append(m.activity, &cp)
	return nil
}

func (m *memStore) ListByRoom(_ context.Context, roomID string) ([]*domain.RoomActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.RoomActivityLog
	for _, e := range m.activity {
		if e.RoomID == roomID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// actionsByRoom 按记录顺序返回房间的审计动作，断言用
func (m *memStore) actionsByRoom(roomID string) []domain.ActivityAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ActivityAction
	for _, e := range m.activity {
		if e.RoomID == roomID {
			out = append(out, e.Action)
		}
	}
	return out
}

// capturingPublisher 记录发布过的警报
type capturingPublisher struct {
	mu     sync.Mutex
	alerts []*domain.Alert
}

func (p *capturingPublisher) PublishAlertOpened(_ context.Context, alert *domain.Alert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, alert)
	return nil
}
