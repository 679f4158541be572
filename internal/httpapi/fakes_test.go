package httpapi

import (
	"context"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
	"github.com/SecureSpaceProject/secure-space-backend/internal/service"
)

// 服务接口的函数式假实现：未覆写的方法一律返回 INTERNAL

var errUnstubbed = errs.New(errs.CodeInternal)

type fakeAuth struct {
	registerFn func(ctx context.Context, email, password string) (*service.UserDTO, error)
	loginFn    func(ctx context.Context, email, password string) (*service.LoginResult, error)
	identifyFn func(ctx context.Context, token string) (*domain.User, error)
}

func (f *fakeAuth) Register(ctx context.Context, email, password string) (*service.UserDTO, error) {
	if f.registerFn == nil {
		return nil, errUnstubbed
	}
	return f.registerFn(ctx, email, password)
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	if f.loginFn == nil {
		return nil, errUnstubbed
	}
	return f.loginFn(ctx, email, password)
}

func (f *fakeAuth) Identify(ctx context.Context, token string) (*domain.User, error) {
	if f.identifyFn == nil {
		return nil, errUnstubbed
	}
	return f.identifyFn(ctx, token)
}

type fakeUsers struct{ service.UserService }

type fakeAdmin struct{ service.AdminService }

type fakeRooms struct {
	service.RoomService
	updateFn func(ctx context.Context, userID, roomID string, input service.UpdateRoomInput) (*service.RoomDTO, error)
}

func (f *fakeRooms) UpdateRoom(ctx context.Context, userID, roomID string, input service.UpdateRoomInput) (*service.RoomDTO, error) {
	if f.updateFn == nil {
		return nil, errUnstubbed
	}
	return f.updateFn(ctx, userID, roomID, input)
}

type fakeAlerts struct{ service.AlertService }

type fakeActivity struct{ service.ActivityService }

type fakeMembers struct {
	service.MemberService
	updateRoleFn func(ctx context.Context, actorUserID, roomID, targetUserID string, role domain.RoomRole) (*service.MemberDTO, error)
}

func (f *fakeMembers) UpdateMemberRole(ctx context.Context, actorUserID, roomID, targetUserID string, role domain.RoomRole) (*service.MemberDTO, error) {
	if f.updateRoleFn == nil {
		return nil, errUnstubbed
	}
	return f.updateRoleFn(ctx, actorUserID, roomID, targetUserID, role)
}

type fakeSensors struct{ service.SensorService }

type fakeIngest struct {
	service.IngestService
	deviceFn func(ctx context.Context, sensorID, secret string, state *string) (*service.IngestResult, error)
}

func (f *fakeIngest) IngestDeviceEvent(ctx context.Context, sensorID, secret string, state *string) (*service.IngestResult, error) {
	if f.deviceFn == nil {
		return nil, errUnstubbed
	}
	return f.deviceFn(ctx, sensorID, secret, state)
}

type fakeNotifications struct{ service.NotificationService }
