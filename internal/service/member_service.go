package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SecureSpaceProject/secure-space-backend/internal/authz"
	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
	"github.com/SecureSpaceProject/secure-space-backend/internal/repository"
)

// MemberService 房间成员管理
// 授予/改动/移除的角色上限规则见 authz 包
type MemberService interface {
	AddMember(ctx context.Context, actorUserID, roomID, targetUserID string, role domain.RoomRole) (*MemberDTO, error)
	ListMembers(ctx context.Context, actorUserID, roomID string) ([]*MemberDTO, error)
	UpdateMemberRole(ctx context.Context, actorUserID, roomID, targetUserID string, role domain.RoomRole) (*MemberDTO, error)
	RemoveMember(ctx context.Context, actorUserID, roomID, targetUserID string) error
}

type memberService struct {
	rooms    repository.RoomsRepository
	members  repository.RoomMembersRepository
	users    repository.UsersRepository
	activity ActivityService
	logger   *zap.Logger
	now      func() time.Time
}

// NewMemberService 创建成员管理服务
func NewMemberService(
	rooms repository.RoomsRepository,
	members repository.RoomMembersRepository,
	users repository.UsersRepository,
	activity ActivityService,
	logger *zap.Logger,
) MemberService {
	return &memberService{
		rooms:    rooms,
		members:  members,
		users:    users,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *memberService) AddMember(ctx context.Context, actorUserID, roomID, targetUserID string, role domain.RoomRole) (*MemberDTO, error) {
	if !role.Valid() {
		return nil, errs.New(errs.CodeValidationFailed)
	}

	actor, err := memberOrNil(ctx, s.members, roomID, actorUserID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanAddMember(actor, role); !d.Allowed {
		return nil, d.Err()
	}

	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeRoomNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	if _, err := s.users.GetUser(ctx, targetUserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeUserNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	member := &domain.RoomMember{
		MemberID: uuid.New().String(),
		RoomID:   roomID,
		UserID:   targetUserID,
		Role:     role,
		AddedAt:  s.now(),
	}
	if err := s.members.AddMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, errs.New(errs.CodeConflict)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	s.activity.Record(ctx, roomID, actorUserID, domain.ActionAddMember, domain.TargetRoomMember, member.MemberID)
	return toMemberDTO(member), nil
}

func (s *memberService) ListMembers(ctx context.Context, actorUserID, roomID string) ([]*MemberDTO, error) {
	actor, err := memberOrNil(ctx, s.members, roomID, actorUserID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanViewRoom(actor); !d.Allowed {
		return nil, d.Err()
	}

	list, err := s.members.ListMembers(ctx, roomID)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	out := make([]*MemberDTO, 0, len(list))
	for _, m := range list {
		out = append(out, toMemberDTO(m))
	}
	return out, nil
}

func (s *memberService) UpdateMemberRole(ctx context.Context, actorUserID, roomID, targetUserID string, role domain.RoomRole) (*MemberDTO, error) {
	if !role.Valid() {
		return nil, errs.New(errs.CodeValidationFailed)
	}

	actor, err := memberOrNil(ctx, s.members, roomID, actorUserID)
	if err != nil {
		return nil, err
	}

	target, err := s.members.GetMember(ctx, roomID, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeMemberNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	if d := authz.CanUpdateMemberRole(actor, target.Role, role); !d.Allowed {
		return nil, d.Err()
	}

	updated, err := s.members.UpdateMemberRole(ctx, roomID, targetUserID, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeMemberNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	s.activity.Record(ctx, roomID, actorUserID, domain.ActionUpdateMember, domain.TargetRoomMember, updated.MemberID)
	return toMemberDTO(updated), nil
}

func (s *memberService) RemoveMember(ctx context.Context, actorUserID, roomID, targetUserID string) error {
	actor, err := memberOrNil(ctx, s.members, roomID, actorUserID)
	if err != nil {
		return err
	}

	target, err := s.members.GetMember(ctx, roomID, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.New(errs.CodeMemberNotFound)
		}
		return errs.Wrap(errs.CodeInternal, err)
	}

	if d := authz.CanRemoveMember(actor, target.Role); !d.Allowed {
		return d.Err()
	}

	if err := s.members.RemoveMember(ctx, roomID, targetUserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.New(errs.CodeMemberNotFound)
		}
		return errs.Wrap(errs.CodeInternal, err)
	}

	s.activity.Record(ctx, roomID, actorUserID, domain.ActionRemoveMember, domain.TargetRoomMember, target.MemberID)
	return nil
}
