package stream

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/SecureSpaceProject/secure-space-backend/internal/config"
	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
)

// AlertsOpenedStream 警报开启事件的下游流
// 投递器等外部消费者通过消费者组从这里接走消息
const AlertsOpenedStream = "alerts:opened"

// NewRedisClient 创建 Redis 客户端
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping 测试 Redis 连接
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// Publisher 通过 Redis Streams 对外发布警报事件
type Publisher struct {
	client *redis.Client
	logger *zap.Logger
}

// NewPublisher 创建发布器
func NewPublisher(client *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// alertOpenedPayload 流消息的 JSON 载荷
type alertOpenedPayload struct {
	AlertID   string `json:"alertId"`
	RoomID    string `json:"roomId"`
	EventID   string `json:"eventId"`
	CreatedAt int64  `json:"createdAt"`
}

// PublishAlertOpened 发布警报开启消息（XADD）
func (p *Publisher) PublishAlertOpened(ctx context.Context, alert *domain.Alert) error {
	payload, err := json.Marshal(alertOpenedPayload{
		AlertID:   alert.AlertID,
		RoomID:    alert.RoomID,
		EventID:   alert.EventID,
		CreatedAt: alert.CreatedAt.Unix(),
	})
	if err != nil {
		return err
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: AlertsOpenedStream,
		Values: map[string]interface{}{
			"data": string(payload),
		},
	}).Result()
	if err != nil {
		return err
	}

	p.logger.Debug("Published alert opened message",
		zap.String("stream", AlertsOpenedStream),
		zap.String("message_id", id),
		zap.String("alert_id", alert.AlertID))
	return nil
}
