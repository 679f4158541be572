package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SecureSpaceProject/secure-space-backend/internal/authz"
	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
	"github.com/SecureSpaceProject/secure-space-backend/internal/repository"
)

// ActivityService 房间审计日志服务
// Record 是尽力而为的：写入失败只记日志，绝不回滚触发它的业务操作
type ActivityService interface {
	Record(ctx context.Context, roomID, actorUserID string, action domain.ActivityAction, targetType domain.ActivityTargetType, targetID string)
	ListRoomActivity(ctx context.Context, actorUserID, roomID string) ([]*ActivityDTO, error)
}

type activityService struct {
	activity repository.ActivityLogRepository
	members  repository.RoomMembersRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewActivityService 创建审计日志服务
func NewActivityService(
	activity repository.ActivityLogRepository,
	members repository.RoomMembersRepository,
	logger *zap.Logger,
) ActivityService {
	return &activityService{
		activity: activity,
		members:  members,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *activityService) Record(ctx context.Context, roomID, actorUserID string, action domain.ActivityAction, targetType domain.ActivityTargetType, targetID string) {
	entry := &domain.RoomActivityLog{
		LogID:       uuid.New().String(),
		RoomID:      roomID,
		ActorUserID: actorUserID,
		Action:      action,
		CreatedAt:   s.now(),
	}
	if targetID != "" {
		entry.TargetType = sql.NullString{String: string(targetType), Valid: true}
		entry.TargetID = sql.NullString{String: targetID, Valid: true}
	}

	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to append room activity log",
			zap.String("room_id", roomID),
			zap.String("actor_user_id", actorUserID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

func (s *activityService) ListRoomActivity(ctx context.Context, actorUserID, roomID string) ([]*ActivityDTO, error) {
	actor, err := memberOrNil(ctx, s.members, roomID, actorUserID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanViewRoom(actor); !d.Allowed {
		return nil, d.Err()
	}

	entries, err := s.activity.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	out := make([]*ActivityDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toActivityDTO(e))
	}
	return out, nil
}
