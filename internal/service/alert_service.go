package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/SecureSpaceProject/secure-space-backend/internal/authz"
	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
	"github.com/SecureSpaceProject/secure-space-backend/internal/repository"
)

// AlertService 警报查询与关闭
type AlertService interface {
	// GetActiveAlert 返回房间当前 OPEN 警报，没有则返回 ALERT_NOT_FOUND
	GetActiveAlert(ctx context.Context, actorUserID, roomID string) (*AlertDTO, error)
	ListAlerts(ctx context.Context, actorUserID, roomID string) ([]*AlertDTO, error)
	// CloseAlert 关闭房间当前 OPEN 警报；重复关闭返回 ALERT_NOT_FOUND
	CloseAlert(ctx context.Context, actorUserID, roomID string) (*AlertDTO, error)
}

type alertService struct {
	alerts   repository.AlertsRepository
	members  repository.RoomMembersRepository
	activity ActivityService
	logger   *zap.Logger
	now      func() time.Time
}

// NewAlertService 创建警报服务
func NewAlertService(
	alerts repository.AlertsRepository,
	members repository.RoomMembersRepository,
	activity ActivityService,
	logger *zap.Logger,
) AlertService {
	return &alertService{
		alerts:   alerts,
		members:  members,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *alertService) GetActiveAlert(ctx context.Context, actorUserID, roomID string) (*AlertDTO, error) {
	actor, err := memberOrNil(ctx, s.members, roomID, actorUserID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanViewRoom(actor); !d.Allowed {
		return nil, d.Err()
	}

	alert, err := s.alerts.FindOpenAlert(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeAlertNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	return toAlertDTO(alert), nil
}

func (s *alertService) ListAlerts(ctx context.Context, actorUserID, roomID string) ([]*AlertDTO, error) {
	actor, err := memberOrNil(ctx, s.members, roomID, actorUserID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanViewRoom(actor); !d.Allowed {
		return nil, d.Err()
	}

	alerts, err := s.alerts.ListAlertsByRoom(ctx, roomID)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	out := make([]*AlertDTO, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertDTO(a))
	}
	return out, nil
}

func (s *alertService) CloseAlert(ctx context.Context, actorUserID, roomID string) (*AlertDTO, error) {
	actor, err := memberOrNil(ctx, s.members, roomID, actorUserID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanCloseAlert(actor); !d.Allowed {
		return nil, d.Err()
	}

	// 条件更新天然裁决并发关闭：只有一个请求能赢，其余拿到 ALERT_NOT_FOUND
	alert, err := s.alerts.CloseOpenAlert(ctx, roomID, actorUserID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeAlertNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	s.activity.Record(ctx, roomID, actorUserID, domain.ActionCloseAlert, domain.TargetAlert, alert.AlertID)
	s.logger.Info("Alert closed",
		zap.String("alert_id", alert.AlertID),
		zap.String("room_id", roomID),
		zap.String("closed_by", actorUserID))
	return toAlertDTO(alert), nil
}
