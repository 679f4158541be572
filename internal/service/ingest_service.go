package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SecureSpaceProject/secure-space-backend/internal/authz"
	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
	"github.com/SecureSpaceProject/secure-space-backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// AlertPublisher 警报开启事件的对外发布（Redis Stream）
// 发布失败不影响已提交的事件与警报，只记日志
type AlertPublisher interface {
	PublishAlertOpened(ctx context.Context, alert *domain.Alert) error
}

// IngestResult 摄入结果：事件总会返回，警报仅在本次摄入开启时返回
type IngestResult struct {
	Event *SensorEventDTO `json:"event"`
	Alert *AlertDTO       `json:"alert,omitempty"`
}

// IngestService 传感器事件摄入
// 设备通道凭设备密钥认证，用户通道凭房间成员身份授权；
// 事件落库与警报判定在仓库层的单个事务内完成
type IngestService interface {
	IngestDeviceEvent(ctx context.Context, sensorID, presentedSecret string, state *string) (*IngestResult, error)
	IngestUserEvent(ctx context.Context, actorUserID, sensorID string, state *string) (*IngestResult, error)
}

type ingestService struct {
	sensors       repository.SensorsRepository
	members       repository.RoomMembersRepository
	ingest        repository.IngestRepository
	notifications NotificationService
	activity      ActivityService
	publisher     AlertPublisher // 可为 nil（未启用 Redis）
	logger        *zap.Logger
	now           func() time.Time
}

// NewIngestService 创建摄入服务
func NewIngestService(
	sensors repository.SensorsRepository,
	members repository.RoomMembersRepository,
	ingest repository.IngestRepository,
	notifications NotificationService,
	activity ActivityService,
	publisher AlertPublisher,
	logger *zap.Logger,
) IngestService {
	return &ingestService{
		sensors:       sensors,
		members:       members,
		ingest:        ingest,
		notifications: notifications,
		activity:      activity,
		publisher:     publisher,
		logger:        logger,
		now:           time.Now,
	}
}

// eventState 按传感器类型裁定事件状态：
// MOTION 事件无状态（请求携带的 state 直接忽略）；
// OPEN 事件必须携带 OPEN/CLOSED
func eventState(kind domain.SensorKind, state *string) (sql.NullString, error) {
	if kind == domain.SensorKindMotion {
		return sql.NullString{}, nil
	}
	if state == nil || !domain.SensorState(*state).Valid() {
		return sql.NullString{}, errs.New(errs.CodeInvalidState)
	}
	return sql.NullString{String: *state, Valid: true}, nil
}

func (s *ingestService) IngestDeviceEvent(ctx context.Context, sensorID, presentedSecret string, state *string) (*IngestResult, error) {
	sensor, err := s.sensors.GetSensor(ctx, sensorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeSensorNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	if !sensor.DeviceSecretHash.Valid {
		return nil, errs.New(errs.CodeAuthRequired)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(sensor.DeviceSecretHash.String), []byte(presentedSecret)); err != nil {
		s.logger.Warn("Device secret mismatch", zap.String("sensor_id", sensorID))
		return nil, errs.New(errs.CodeInvalidCredentials)
	}

	return s.record(ctx, sensor, state, "")
}

func (s *ingestService) IngestUserEvent(ctx context.Context, actorUserID, sensorID string, state *string) (*IngestResult, error) {
	sensor, err := s.sensors.GetSensor(ctx, sensorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeSensorNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	// 任意房间成员都可以手动触发事件
	actor, err := memberOrNil(ctx, s.members, sensor.RoomID, actorUserID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanViewRoom(actor); !d.Allowed {
		return nil, d.Err()
	}

	return s.record(ctx, sensor, state, actorUserID)
}

// record 事件落库，必要时开启警报并触发通知扇出与对外发布。
// actorUserID 为空表示设备通道，警报审计只在用户通道记录。
func (s *ingestService) record(ctx context.Context, sensor *domain.Sensor, state *string, actorUserID string) (*IngestResult, error) {
	st, err := eventState(sensor.Kind, state)
	if err != nil {
		return nil, err
	}

	event := &domain.SensorEvent{
		EventID:   uuid.New().String(),
		SensorID:  sensor.SensorID,
		RoomID:    sensor.RoomID,
		Kind:      sensor.Kind,
		State:     st,
		CreatedAt: s.now(),
	}

	alert, err := s.ingest.RecordEvent(ctx, event)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeRoomNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	result := &IngestResult{Event: toSensorEventDTO(event)}
	if alert == nil {
		return result, nil
	}
	result.Alert = toAlertDTO(alert)

	s.logger.Info("Alert opened",
		zap.String("alert_id", alert.AlertID),
		zap.String("room_id", alert.RoomID),
		zap.String("event_id", alert.EventID))

	if actorUserID != "" {
		s.activity.Record(ctx, alert.RoomID, actorUserID, domain.ActionCreateAlert, domain.TargetAlert, alert.AlertID)
	}

	if _, err := s.notifications.FanOutAlert(ctx, alert); err != nil {
		// 事件与警报已提交，扇出失败原样上抛由调用方重试
		s.logger.Error("Notification fanout failed",
			zap.String("alert_id", alert.AlertID), zap.Error(err))
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishAlertOpened(ctx, alert); err != nil {
			s.logger.Error("Failed to publish alert opened event",
				zap.String("alert_id", alert.AlertID), zap.Error(err))
		}
	}

	return result, nil
}
