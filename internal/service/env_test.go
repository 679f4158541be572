package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SecureSpaceProject/secure-space-backend/internal/config"
	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
)

// testEnv 全量服务装配，底层共用同一个 memStore
type testEnv struct {
	store     *memStore
	publisher *capturingPublisher

	auth          AuthService
	users         UserService
	admin         AdminService
	rooms         RoomService
	members       MemberService
	sensors       SensorService
	ingest        IngestService
	alerts        AlertService
	notifications NotificationService
	activity      ActivityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	publisher := &capturingPublisher{}
	logger := zap.NewNop()
	jwtCfg := config.JWTConfig{AccessSecret: "test-secret", AccessTTL: 15 * time.Minute}

	activity := NewActivityService(store, store, logger)
	notifications := NewNotificationService(store, store, logger)
	return &testEnv{
		store:         store,
		publisher:     publisher,
		auth:          NewAuthService(store, jwtCfg, logger),
		users:         NewUserService(store, logger),
		admin:         NewAdminService(store, logger),
		rooms:         NewRoomService(store, store, activity, logger),
		members:       NewMemberService(store, store, store, activity, logger),
		sensors:       NewSensorService(store, store, store, activity, logger),
		ingest:        NewIngestService(store, store, store, notifications, activity, publisher, logger),
		alerts:        NewAlertService(store, store, activity, logger),
		notifications: notifications,
		activity:      activity,
	}
}

func (e *testEnv) mustRegister(t *testing.T, email string) *UserDTO {
	t.Helper()
	u, err := e.auth.Register(context.Background(), email, "password-123")
	require.NoError(t, err)
	return u
}

func (e *testEnv) mustCreateRoom(t *testing.T, ownerID, name string) *RoomDTO {
	t.Helper()
	r, err := e.rooms.CreateRoom(context.Background(), ownerID, name)
	require.NoError(t, err)
	return r
}

func (e *testEnv) mustAddMember(t *testing.T, actorID, roomID, userID string, role domain.RoomRole) *MemberDTO {
	t.Helper()
	m, err := e.members.AddMember(context.Background(), actorID, roomID, userID, role)
	require.NoError(t, err)
	return m
}

func (e *testEnv) mustCreateSensor(t *testing.T, actorID, roomID, name string, kind domain.SensorKind) *CreatedSensor {
	t.Helper()
	s, err := e.sensors.CreateSensor(context.Background(), actorID, roomID, name, kind)
	require.NoError(t, err)
	return s
}

func (e *testEnv) mustArm(t *testing.T, actorID, roomID string) {
	t.Helper()
	armed := true
	_, err := e.rooms.UpdateRoom(context.Background(), actorID, roomID, UpdateRoomInput{IsArmed: &armed})
	require.NoError(t, err)
}
