package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/SecureSpaceProject/secure-space-backend/internal/authz"
	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
	"github.com/SecureSpaceProject/secure-space-backend/internal/repository"
)

// 设备密钥参数：24 字节随机数 base64url 编码，哈希成本低于用户口令
const (
	deviceSecretBytes      = 24
	deviceSecretBcryptCost = 10
)

// CreatedSensor 创建结果：明文设备密钥仅在此处返回一次，之后只存哈希
type CreatedSensor struct {
	Sensor       *SensorDTO `json:"sensor"`
	DeviceSecret string     `json:"deviceSecret"`
}

// UpdateSensorInput 传感器更新入参，类型与密钥不可变
type UpdateSensorInput struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"isActive"`
}

// SensorService 传感器注册与管理
type SensorService interface {
	CreateSensor(ctx context.Context, actorUserID, roomID, name string, kind domain.SensorKind) (*CreatedSensor, error)
	ListSensors(ctx context.Context, actorUserID, roomID string) ([]*SensorDTO, error)
	UpdateSensor(ctx context.Context, actorUserID, sensorID string, input UpdateSensorInput) (*SensorDTO, error)
	RemoveSensor(ctx context.Context, actorUserID, sensorID string) error
}

type sensorService struct {
	sensors  repository.SensorsRepository
	members  repository.RoomMembersRepository
	rooms    repository.RoomsRepository
	activity ActivityService
	logger   *zap.Logger
	now      func() time.Time
}

// NewSensorService 创建传感器服务
func NewSensorService(
	sensors repository.SensorsRepository,
	members repository.RoomMembersRepository,
	rooms repository.RoomsRepository,
	activity ActivityService,
	logger *zap.Logger,
) SensorService {
	return &sensorService{
		sensors:  sensors,
		members:  members,
		rooms:    rooms,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

func newDeviceSecret() (string, error) {
	buf := make([]byte, deviceSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *sensorService) CreateSensor(ctx context.Context, actorUserID, roomID, name string, kind domain.SensorKind) (*CreatedSensor, error) {
	name = strings.TrimSpace(name)
	if name == "" || !kind.Valid() {
		return nil, errs.New(errs.CodeValidationFailed)
	}

	actor, err := memberOrNil(ctx, s.members, roomID, actorUserID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanManageSensors(actor); !d.Allowed {
		return nil, d.Err()
	}

	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeRoomNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	secret, err := newDeviceSecret()
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), deviceSecretBcryptCost)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	sensor := &domain.Sensor{
		SensorID:         uuid.New().String(),
		RoomID:           roomID,
		Name:             name,
		Kind:             kind,
		IsActive:         true,
		DeviceSecretHash: sql.NullString{String: string(hash), Valid: true},
		CreatedAt:        s.now(),
	}
	if err := s.sensors.CreateSensor(ctx, sensor); err != nil {
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	s.activity.Record(ctx, roomID, actorUserID, domain.ActionAddSensor, domain.TargetSensor, sensor.SensorID)
	s.logger.Info("Sensor created",
		zap.String("sensor_id", sensor.SensorID),
		zap.String("room_id", roomID),
		zap.String("kind", string(kind)))

	return &CreatedSensor{Sensor: toSensorDTO(sensor), DeviceSecret: secret}, nil
}

func (s *sensorService) ListSensors(ctx context.Context, actorUserID, roomID string) ([]*SensorDTO, error) {
	actor, err := memberOrNil(ctx, s.members, roomID, actorUserID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanViewRoom(actor); !d.Allowed {
		return nil, d.Err()
	}

	sensors, err := s.sensors.ListSensorsByRoom(ctx, roomID)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, err)
	}
	out := make([]*SensorDTO, 0, len(sensors))
	for _, sensor := range sensors {
		out = append(out, toSensorDTO(sensor))
	}
	return out, nil
}

// loadSensorForManage 加载传感器并校验操作者对所属房间的管理权限
func (s *sensorService) loadSensorForManage(ctx context.Context, actorUserID, sensorID string) (*domain.Sensor, error) {
	sensor, err := s.sensors.GetSensor(ctx, sensorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeSensorNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	actor, err := memberOrNil(ctx, s.members, sensor.RoomID, actorUserID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanManageSensors(actor); !d.Allowed {
		return nil, d.Err()
	}
	return sensor, nil
}

func (s *sensorService) UpdateSensor(ctx context.Context, actorUserID, sensorID string, input UpdateSensorInput) (*SensorDTO, error) {
	if input.Name == nil && input.IsActive == nil {
		return nil, errs.New(errs.CodeValidationFailed)
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, errs.New(errs.CodeValidationFailed)
	}

	sensor, err := s.loadSensorForManage(ctx, actorUserID, sensorID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		sensor.Name = strings.TrimSpace(*input.Name)
	}
	if input.IsActive != nil {
		sensor.IsActive = *input.IsActive
	}
	if err := s.sensors.UpdateSensor(ctx, sensor); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.CodeSensorNotFound)
		}
		return nil, errs.Wrap(errs.CodeInternal, err)
	}

	s.activity.Record(ctx, sensor.RoomID, actorUserID, domain.ActionUpdateSensor, domain.TargetSensor, sensor.SensorID)
	return toSensorDTO(sensor), nil
}

func (s *sensorService) RemoveSensor(ctx context.Context, actorUserID, sensorID string) error {
	sensor, err := s.loadSensorForManage(ctx, actorUserID, sensorID)
	if err != nil {
		return err
	}

	if err := s.sensors.RemoveSensor(ctx, sensorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.New(errs.CodeSensorNotFound)
		}
		return errs.Wrap(errs.CodeInternal, err)
	}

	s.activity.Record(ctx, sensor.RoomID, actorUserID, domain.ActionRemoveSensor, domain.TargetSensor, sensorID)
	return nil
}
