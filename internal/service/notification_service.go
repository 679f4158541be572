package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
	"github.com/SecureSpaceProject/secure-space-backend/internal/repository"
)

// alertOpenedMessage 警报通知的固定文案
const alertOpenedMessage = "У кімнаті зафіксовано спрацювання датчика. Тривогу увімкнено."

// NotificationService 通知扇出与收件箱
// 通知只能由 FanOutAlert 产生，其他组件一律不得直接写通知
type NotificationService interface {
	// FanOutAlert 为警报房间当前每个成员各创建一条 PENDING 通知，
	// 整批单语句写入；返回创建的通知数
	FanOutAlert(ctx context.Context, alert *domain.Alert) (int, error)
	ListMy(ctx context.Context, userID string) ([]*NotificationDTO, error)
	MarkRead(ctx context.Context, userID, notificationID string) (*NotificationDTO, error)
}

type notificationService struct {
	notifications repository.NotificationsRepository
	members       repository.RoomMembersRepository
	logger        *zap.Logger
	now           func() time.Time
}

// NewNotificationService 创建通知服务
func NewNotificationService(
	notifications repository.NotificationsRepository,
	members repository.RoomMembersRepository,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		notifications: notifications,
		members:       members,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *notificationService) FanOutAlert(ctx context.Context, alert *domain.Alert) (int, error) {
	// 收件人集合取扇出瞬间的成员表快照
	recipients, err := s.members.ListMembers(ctx, alert.RoomID)
	if err != nil {
		return 0, errs.Wrap(errs.CodeInternal, err)
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	now := s.now()
	batch := make([]*domain.Notification, 0, len(recipients))
	for _, m := range recipients {
		batch = append(batch, &domain.Notification{
			NotificationID: uuid.New().String(),
			UserID:         m.UserID,
			RoomID:         alert.RoomID,
			AlertID:        alert.AlertID,
			Message:        alertOpenedMessage,
			Status:         domain.NotificationStatusPending,
			CreatedAt:      now,
		})
	}
	if err := s.notifications.BulkCreate(ctx, batch); err != nil {
		return 0, errs.Wrap(errs.CodeInternal, err)
	}

	s.logger.Info("Alert notifications fanned out",
		zap.String("alert_id", alert.AlertID),
		zap.String("room_id", alert.RoomID),
		zap.Int("recipients", len(batch)))
	return len(batch), nil
}

func (s *notificationService) ListMy(ctx context.Context, userID string) ([]*NotificationDTO, error) {
	list, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	out := make([]*NotificationDTO, 0, len(list))
	for _, n := range list {
		out = append(out, toNotificationDTO(n))
	}
	return out, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) (*NotificationDTO, error) {
	n, err := s.notifications.MarkRead(ctx, notificationID, userID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// 不存在与他人的通知不作区分
			return nil, errs.New(errs.CodeNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	return toNotificationDTO(n), nil
}
