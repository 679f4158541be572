package mqttingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/SecureSpaceProject/secure-space-backend/internal/config"
	"github.com/SecureSpaceProject/secure-space-backend/internal/service"
)

// Package mqttingest 设备事件的 MQTT 接入通道
// 设备向 securespace/sensors/<sensorID>/events 发布事件，
// 认证与 HTTP 设备通道一致：载荷里携带设备密钥

// devicePayload MQTT 事件载荷
type devicePayload struct {
	DeviceSecret string  `json:"deviceSecret"`
	State        *string `json:"state,omitempty"`
}

// Consumer MQTT 事件消费者
type Consumer struct {
	client mqtt.Client
	cfg    *config.MQTTConfig
	ingest service.IngestService
	logger *zap.Logger
}

// NewConsumer 连接 Broker 并创建消费者
func NewConsumer(cfg *config.MQTTConfig, ingest service.IngestService, logger *zap.Logger) (*Consumer, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &Consumer{
		client: client,
		cfg:    cfg,
		ingest: ingest,
		logger: logger,
	}, nil
}

// Start 订阅事件主题
func (c *Consumer) Start() error {
	if token := c.client.Subscribe(c.cfg.Topic, c.cfg.QoS, c.handleMessage); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", c.cfg.Topic, token.Error())
	}
	c.logger.Info("MQTT ingest started",
		zap.String("broker", c.cfg.Broker),
		zap.String("topic", c.cfg.Topic))
	return nil
}

// Stop 取消订阅并断开连接
func (c *Consumer) Stop() {
	if token := c.client.Unsubscribe(c.cfg.Topic); token.Wait() && token.Error() != nil {
		c.logger.Warn("Failed to unsubscribe", zap.Error(token.Error()))
	}
	c.client.Disconnect(250)
}

func (c *Consumer) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	sensorID, err := sensorIDFromTopic(msg.Topic())
	if err != nil {
		c.logger.Warn("Dropping MQTT message with malformed topic",
			zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}

	var payload devicePayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		c.logger.Warn("Dropping MQTT message with malformed payload",
			zap.String("sensor_id", sensorID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := c.ingest.IngestDeviceEvent(ctx, sensorID, payload.DeviceSecret, payload.State)
	if err != nil {
		c.logger.Warn("MQTT event rejected",
			zap.String("sensor_id", sensorID), zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.String("sensor_id", sensorID),
		zap.String("event_id", result.Event.ID),
	}
	if result.Alert != nil {
		fields = append(fields, zap.String("alert_id", result.Alert.ID))
	}
	c.logger.Info("MQTT event ingested", fields...)
}

// sensorIDFromTopic 从 securespace/sensors/<sensorID>/events 提取传感器 ID
func sensorIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "securespace" || parts[1] != "sensors" || parts[3] != "events" || parts[2] == "" {
		return "", fmt.Errorf("unexpected topic shape: %s", topic)
	}
	return parts[2], nil
}
