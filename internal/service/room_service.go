package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SecureSpaceProject/secure-space-backend/internal/authz"
	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
	"github.com/SecureSpaceProject/secure-space-backend/internal/repository"
)

// UpdateRoomInput 房间更新入参，nil 字段表示不改动
type UpdateRoomInput struct {
	Name    *string `json:"name"`
	IsArmed *bool   `json:"isArmed"`
}

// RoomService 房间生命周期与布防状态
type RoomService interface {
	CreateRoom(ctx context.Context, userID, name string) (*RoomDTO, error)
	GetMyRooms(ctx context.Context, userID string) ([]*RoomDTO, error)
	GetRoom(ctx context.Context, userID, roomID string) (*RoomDTO, error)
	UpdateRoom(ctx context.Context, userID, roomID string, input UpdateRoomInput) (*RoomDTO, error)
	DeleteRoom(ctx context.Context, userID, roomID string) error
}

type roomService struct {
	rooms    repository.RoomsRepository
	members  repository.RoomMembersRepository
	activity ActivityService
	logger   *zap.Logger
	now      func() time.Time
}

// NewRoomService 创建房间服务
func NewRoomService(
	rooms repository.RoomsRepository,
	members repository.RoomMembersRepository,
	activity ActivityService,
	logger *zap.Logger,
) RoomService {
	return &roomService{
		rooms:    rooms,
		members:  members,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *roomService) CreateRoom(ctx context.Context, userID, name string) (*RoomDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.New(errs.CodeValidationFailed)
	}

	now := s.now()
	room := &domain.Room{
		RoomID:    uuid.New().String(),
		Name:      name,
		IsArmed:   false,
		CreatedAt: now,
	}
	owner := &domain.RoomMember{
		MemberID: uuid.New().String(),
		RoomID:   room.RoomID,
		UserID:   userID,
		Role:     domain.RoomRoleOwner,
		AddedAt:  now,
	}
	if err := s.rooms.CreateRoomWithOwner(ctx, room, owner); err != nil {
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	s.logger.Info("Room created",
		zap.String("room_id", room.RoomID),
		zap.String("owner_user_id", userID))
	return toRoomDTO(room), nil
}

func (s *roomService) GetMyRooms(ctx context.Context, userID string) ([]*RoomDTO, error) {
	rooms, err := s.rooms.ListRoomsByUser(ctx, userID)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	out := make([]*RoomDTO, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoomDTO(r))
	}
	return out, nil
}

func (s *roomService) GetRoom(ctx context.Context, userID, roomID string) (*RoomDTO, error) {
	actor, err := memberOrNil(ctx, s.members, roomID, userID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanViewRoom(actor); !d.Allowed {
		return nil, d.Err()
	}

	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeRoomNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	return toRoomDTO(room), nil
}

func (s *roomService) UpdateRoom(ctx context.Context, userID, roomID string, input UpdateRoomInput) (*RoomDTO, error) {
	if input.Name == nil && input.IsArmed == nil {
		return nil, errs.New(errs.CodeValidationFailed)
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, errs.New(errs.CodeValidationFailed)
	}

	actor, err := memberOrNil(ctx, s.members, roomID, userID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanUpdateRoom(actor); !d.Allowed {
		return nil, d.Err()
	}

	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeRoomNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	renamed := input.Name != nil && *input.Name != room.Name
	armChanged := input.IsArmed != nil && *input.IsArmed != room.IsArmed
	if renamed {
		room.Name = strings.TrimSpace(*input.Name)
	}
	if armChanged {
		room.IsArmed = *input.IsArmed
	}

	if err := s.rooms.UpdateRoom(ctx, room); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeRoomNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	// 布防切换与改名分别记录，单次请求两者都变则两条日志
	if armChanged {
		action := domain.ActionDisarmRoom
		if room.IsArmed {
			action = domain.ActionArmRoom
		}
		s.activity.Record(ctx, roomID, userID, action, domain.TargetRoom, roomID)
	}
	if renamed {
		s.activity.Record(ctx, roomID, userID, domain.ActionUpdateRoom, domain.TargetRoom, roomID)
	}

	return toRoomDTO(room), nil
}

func (s *roomService) DeleteRoom(ctx context.Context, userID, roomID string) error {
	actor, err := memberOrNil(ctx, s.members, roomID, userID)
	if err != nil {
		return err
	}
	if d := authz.CanDeleteRoom(actor); !d.Allowed {
		return d.Err()
	}

	if err := s.rooms.DeleteRoom(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.New(errs.CodeRoomNotFound)
		}
		return errs.Wrap(errs.CodeInternal, err)
	}

	// 审计日志随房间级联删除，删除操作只留运行日志
	s.logger.Info("Room deleted",
		zap.String("room_id", roomID),
		zap.String("actor_user_id", userID))
	return nil
}
