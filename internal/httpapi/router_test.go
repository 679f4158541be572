package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
	"github.com/SecureSpaceProject/secure-space-backend/internal/service"
)

type routerFixture struct {
	auth    *fakeAuth
	rooms   *fakeRooms
	members *fakeMembers
	ingest  *fakeIngest
	handler http.Handler
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	f := &routerFixture{
		auth:    &fakeAuth{},
		rooms:   &fakeRooms{},
		members: &fakeMembers{},
		ingest:  &fakeIngest{},
	}
	f.handler = NewRouter(f.auth, Handlers{
		Auth:          NewAuthHandler(f.auth),
		Users:         NewUserHandler(&fakeUsers{}),
		Admin:         NewAdminHandler(&fakeAdmin{}),
		Rooms:         NewRoomHandler(f.rooms, &fakeAlerts{}, &fakeActivity{}),
		Members:       NewMemberHandler(f.members),
		Sensors:       NewSensorHandler(&fakeSensors{}, f.ingest),
		IoT:           NewIoTHandler(f.ingest),
		Notifications: NewNotificationHandler(&fakeNotifications{}),
	}, zap.NewNop())
	return f
}

func (f *routerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.OK)
	return body.Error
}

func TestHealthz(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
}

func TestProtectedRoute_RequiresBearerToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, string(errs.CodeAuthRequired), decodeError(t, rec))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoute_BlockedUser(t *testing.T) {
	f := newRouterFixture(t)
	f.auth.identifyFn = func(context.Context, string) (*domain.User, error) {
		return nil, errs.New(errs.CodeUserBlocked)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := f.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, string(errs.CodeUserBlocked), decodeError(t, rec))
}

func TestRegister_Created(t *testing.T) {
	f := newRouterFixture(t)
	f.auth.registerFn = func(_ context.Context, email, password string) (*service.UserDTO, error) {
		assert.Equal(t, "alice@example.com", email)
		assert.Equal(t, "password-123", password)
		return &service.UserDTO{ID: "u1", Email: email}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"email":"alice@example.com","password":"password-123"}`))
	rec := f.do(req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"u1"`)
}

func TestRegister_MalformedBody(t *testing.T) {
	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{not json`))
	rec := f.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(errs.CodeValidationFailed), decodeError(t, rec))
}

func TestUpdateRoom_ErrorMapping(t *testing.T) {
	f := newRouterFixture(t)
	f.auth.identifyFn = func(context.Context, string) (*domain.User, error) {
		return &domain.User{UserID: "u1", Role: domain.PlatformRoleUser, Status: domain.UserStatusActive}, nil
	}
	f.rooms.updateFn = func(_ context.Context, userID, roomID string, input service.UpdateRoomInput) (*service.RoomDTO, error) {
		assert.Equal(t, "u1", userID)
		assert.Equal(t, "room-1", roomID)
		require.NotNil(t, input.IsArmed)
		assert.True(t, *input.IsArmed)
		return nil, errs.New(errs.CodeForbidden)
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/rooms/room-1", strings.NewReader(`{"isArmed":true}`))
	req.Header.Set("Authorization", "Bearer token")
	rec := f.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, string(errs.CodeForbidden), decodeError(t, rec))
}

func TestUpdateMemberRole_PathValues(t *testing.T) {
	f := newRouterFixture(t)
	f.auth.identifyFn = func(context.Context, string) (*domain.User, error) {
		return &domain.User{UserID: "u1", Status: domain.UserStatusActive}, nil
	}
	f.members.updateRoleFn = func(_ context.Context, actorUserID, roomID, targetUserID string, role domain.RoomRole) (*service.MemberDTO, error) {
		assert.Equal(t, "u1", actorUserID)
		assert.Equal(t, "room-1", roomID)
		assert.Equal(t, "u2", targetUserID)
		assert.Equal(t, domain.RoomRoleAdmin, role)
		return &service.MemberDTO{ID: "m1", Role: string(role)}, nil
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/rooms/room-1/members/u2",
		strings.NewReader(`{"memberRole":"ADMIN"}`))
	req.Header.Set("Authorization", "Bearer token")
	rec := f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIoTIngest_DeviceSecretHeader(t *testing.T) {
	f := newRouterFixture(t)

	// 缺少密钥头直接 401，不触达服务层
	req := httptest.NewRequest(http.MethodPost, "/api/v1/iot/sensors/s1/events", strings.NewReader(`{}`))
	rec := f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, string(errs.CodeAuthRequired), decodeError(t, rec))

	f.ingest.deviceFn = func(_ context.Context, sensorID, secret string, state *string) (*service.IngestResult, error) {
		assert.Equal(t, "s1", sensorID)
		assert.Equal(t, "shh", secret)
		require.NotNil(t, state)
		assert.Equal(t, "OPEN", *state)
		return &service.IngestResult{Event: &service.SensorEventDTO{ID: "e1"}}, nil
	}
	req = httptest.NewRequest(http.MethodPost, "/api/v1/iot/sensors/s1/events", strings.NewReader(`{"state":"OPEN"}`))
	req.Header.Set("X-Device-Secret", "shh")
	rec = f.do(req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"e1"`)
}

func TestIoTIngest_WrongSecretMapsTo401(t *testing.T) {
	f := newRouterFixture(t)
	f.ingest.deviceFn = func(context.Context, string, string, *string) (*service.IngestResult, error) {
		return nil, errs.New(errs.CodeInvalidCredentials)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/iot/sensors/s1/events", strings.NewReader(`{}`))
	req.Header.Set("X-Device-Secret", "wrong")
	rec := f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, string(errs.CodeInvalidCredentials), decodeError(t, rec))
}
