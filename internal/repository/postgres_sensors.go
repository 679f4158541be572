package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
)

// PostgresSensorsRepository 传感器仓库 Postgres 实现
type PostgresSensorsRepository struct {
	db *sql.DB
}

// NewPostgresSensorsRepository 创建传感器仓库
func NewPostgresSensorsRepository(db *sql.DB) *PostgresSensorsRepository {
	return &PostgresSensorsRepository{db: db}
}

var _ SensorsRepository = (*PostgresSensorsRepository)(nil)

const sensorColumns = `sensor_id::text, room_id::text, name, kind, is_active, device_secret_hash, created_at`

// CreateSensor 创建传感器
func (r *PostgresSensorsRepository) CreateSensor(ctx context.Context, sensor *domain.Sensor) error {
	query := `
		INSERT INTO sensors (sensor_id, room_id, name, kind, is_active, device_secret_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		sensor.SensorID,
		sensor.RoomID,
		sensor.Name,
		sensor.Kind,
		sensor.IsActive,
		sensor.DeviceSecretHash,
		sensor.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sensor: %w", err)
	}
	return nil
}

// GetSensor 根据 sensor_id 获取传感器
func (r *PostgresSensorsRepository) GetSensor(ctx context.Context, sensorID string) (*domain.Sensor, error) {
	if sensorID == "" {
		return nil, fmt.Errorf("sensor_id is required: %w", ErrNotFound)
	}

	query := `SELECT ` + sensorColumns + ` FROM sensors WHERE sensor_id = $1`

	var s domain.Sensor
	err := r.db.QueryRowContext(ctx, query, sensorID).Scan(
		&s.SensorID,
		&s.RoomID,
		&s.Name,
		&s.Kind,
		&s.IsActive,
		&s.DeviceSecretHash,
		&s.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sensor %s: %w", sensorID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get sensor: %w", err)
	}
	return &s, nil
}

// ListSensorsByRoom 列出房间全部传感器（按创建时间升序）
func (r *PostgresSensorsRepository) ListSensorsByRoom(ctx context.Context, roomID string) ([]*domain.Sensor, error) {
	query := `SELECT ` + sensorColumns + ` FROM sensors WHERE room_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}
	defer rows.Close()

	var sensors []*domain.Sensor
	for rows.Next() {
		var s domain.Sensor
		if err := rows.Scan(&s.SensorID, &s.RoomID, &s.Name, &s.Kind, &s.IsActive, &s.DeviceSecretHash, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sensor: %w", err)
		}
		sensors = append(sensors, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sensors: %w", err)
	}
	return sensors, nil
}

// UpdateSensor 更新传感器名称与启用状态（kind 与密钥哈希不可变更）
func (r *PostgresSensorsRepository) UpdateSensor(ctx context.Context, sensor *domain.Sensor) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE sensors SET name = $2, is_active = $3 WHERE sensor_id = $1
	`, sensor.SensorID, sensor.Name, sensor.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update sensor: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("sensor %s: %w", sensor.SensorID, ErrNotFound)
	}
	return nil
}

// RemoveSensor 删除传感器；其事件随外键级联删除
func (r *PostgresSensorsRepository) RemoveSensor(ctx context.Context, sensorID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sensors WHERE sensor_id = $1`, sensorID)
	if err != nil {
		return fmt.Errorf("failed to remove sensor: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("sensor %s: %w", sensorID, ErrNotFound)
	}
	return nil
}
