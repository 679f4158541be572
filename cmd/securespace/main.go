package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/SecureSpaceProject/secure-space-backend/internal/config"
	"github.com/SecureSpaceProject/secure-space-backend/internal/database"
	"github.com/SecureSpaceProject/secure-space-backend/internal/httpapi"
	"github.com/SecureSpaceProject/secure-space-backend/internal/logger"
	"github.com/SecureSpaceProject/secure-space-backend/internal/mqttingest"
	"github.com/SecureSpaceProject/secure-space-backend/internal/repository"
	"github.com/SecureSpaceProject/secure-space-backend/internal/service"
	"github.com/SecureSpaceProject/secure-space-backend/internal/stream"
)

func main() {
	// .env 可选，不存在时静默走环境变量
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "secure-space-backend")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// 仓库
	users := repository.NewPostgresUsersRepository(db)
	rooms := repository.NewPostgresRoomsRepository(db)
	members := repository.NewPostgresRoomMembersRepository(db)
	sensors := repository.NewPostgresSensorsRepository(db)
	ingestRepo := repository.NewPostgresIngestRepository(db, log)
	alerts := repository.NewPostgresAlertsRepository(db)
	notifications := repository.NewPostgresNotificationsRepository(db)
	activityLog := repository.NewPostgresActivityLogRepository(db)

	// 警报事件对外发布（可选）
	var publisher service.AlertPublisher
	if cfg.Redis.Enabled {
		redisClient := stream.NewRedisClient(&cfg.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := stream.Ping(ctx, redisClient); err != nil {
			cancel()
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cancel()
		defer redisClient.Close()
		publisher = stream.NewPublisher(redisClient, log)
	} else {
		log.Warn("Redis disabled, alert events will not be published")
	}

	// 服务
	activitySvc := service.NewActivityService(activityLog, members, log)
	notificationSvc := service.NewNotificationService(notifications, members, log)
	authSvc := service.NewAuthService(users, cfg.JWT, log)
	userSvc := service.NewUserService(users, log)
	adminSvc := service.NewAdminService(users, log)
	roomSvc := service.NewRoomService(rooms, members, activitySvc, log)
	memberSvc := service.NewMemberService(rooms, members, users, activitySvc, log)
	sensorSvc := service.NewSensorService(sensors, members, rooms, activitySvc, log)
	ingestSvc := service.NewIngestService(sensors, members, ingestRepo, notificationSvc, activitySvc, publisher, log)
	alertSvc := service.NewAlertService(alerts, members, activitySvc, log)

	// MQTT 接入（可选）
	if cfg.MQTT.Enabled {
		consumer, err := mqttingest.NewConsumer(&cfg.MQTT, ingestSvc, log)
		if err != nil {
			log.Fatal("Failed to connect to MQTT broker", zap.Error(err))
		}
		if err := consumer.Start(); err != nil {
			log.Fatal("Failed to start MQTT ingest", zap.Error(err))
		}
		defer consumer.Stop()
	}

	handler := httpapi.NewRouter(authSvc, httpapi.Handlers{
		Auth:          httpapi.NewAuthHandler(authSvc),
		Users:         httpapi.NewUserHandler(userSvc),
		Admin:         httpapi.NewAdminHandler(adminSvc),
		Rooms:         httpapi.NewRoomHandler(roomSvc, alertSvc, activitySvc),
		Members:       httpapi.NewMemberHandler(memberSvc),
		Sensors:       httpapi.NewSensorHandler(sensorSvc, ingestSvc),
		IoT:           httpapi.NewIoTHandler(ingestSvc),
		Notifications: httpapi.NewNotificationHandler(notificationSvc),
	}, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErrChan:
		log.Fatal("HTTP server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}
