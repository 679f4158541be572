package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/SecureSpaceProject/secure-space-backend/internal/service"
)

// Handlers 路由装配需要的全部处理器
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Admin         *AdminHandler
	Rooms         *RoomHandler
	Members       *MemberHandler
	Sensors       *SensorHandler
	IoT           *IoTHandler
	Notifications *NotificationHandler
}

// NewRouter 组装路由，使用标准库 http.ServeMux（方法 + 路径通配模式）
func NewRouter(auth service.AuthService, h Handlers, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Ok("ok"))
	})

	// 认证
	mux.HandleFunc("POST /api/v1/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", h.Auth.Login)

	// 用户自助
	mux.HandleFunc("GET /api/v1/users/me", requireAuth(auth, h.Users.GetMe))
	mux.HandleFunc("PATCH /api/v1/users/me", requireAuth(auth, h.Users.UpdateMe))

	// 平台管理
	mux.HandleFunc("GET /api/v1/admin/users", requireAuth(auth, h.Admin.ListUsers))
	mux.HandleFunc("PATCH /api/v1/admin/users/{userID}/status", requireAuth(auth, h.Admin.SetUserStatus))

	// 房间
	mux.HandleFunc("POST /api/v1/rooms", requireAuth(auth, h.Rooms.CreateRoom))
	mux.HandleFunc("GET /api/v1/rooms", requireAuth(auth, h.Rooms.ListMyRooms))
	mux.HandleFunc("GET /api/v1/rooms/{roomID}", requireAuth(auth, h.Rooms.GetRoom))
	mux.HandleFunc("PATCH /api/v1/rooms/{roomID}", requireAuth(auth, h.Rooms.UpdateRoom))
	mux.HandleFunc("DELETE /api/v1/rooms/{roomID}", requireAuth(auth, h.Rooms.DeleteRoom))
	mux.HandleFunc("GET /api/v1/rooms/{roomID}/activity", requireAuth(auth, h.Rooms.ListActivity))

	// 警报
	mux.HandleFunc("GET /api/v1/rooms/{roomID}/alerts", requireAuth(auth, h.Rooms.ListAlerts))
	mux.HandleFunc("GET /api/v1/rooms/{roomID}/alerts/active", requireAuth(auth, h.Rooms.GetActiveAlert))
	mux.HandleFunc("POST /api/v1/rooms/{roomID}/alerts/close", requireAuth(auth, h.Rooms.CloseAlert))

	// 成员
	mux.HandleFunc("POST /api/v1/rooms/{roomID}/members", requireAuth(auth, h.Members.AddMember))
	mux.HandleFunc("GET /api/v1/rooms/{roomID}/members", requireAuth(auth, h.Members.ListMembers))
	mux.HandleFunc("PATCH /api/v1/rooms/{roomID}/members/{userID}", requireAuth(auth, h.Members.UpdateMemberRole))
	mux.HandleFunc("DELETE /api/v1/rooms/{roomID}/members/{userID}", requireAuth(auth, h.Members.RemoveMember))

	// 传感器
	mux.HandleFunc("POST /api/v1/rooms/{roomID}/sensors", requireAuth(auth, h.Sensors.CreateSensor))
	mux.HandleFunc("GET /api/v1/rooms/{roomID}/sensors", requireAuth(auth, h.Sensors.ListSensors))
	mux.HandleFunc("PATCH /api/v1/sensors/{sensorID}", requireAuth(auth, h.Sensors.UpdateSensor))
	mux.HandleFunc("DELETE /api/v1/sensors/{sensorID}", requireAuth(auth, h.Sensors.RemoveSensor))
	mux.HandleFunc("POST /api/v1/sensors/{sensorID}/events", requireAuth(auth, h.Sensors.TriggerEvent))

	// 设备通道（设备密钥认证）
	mux.HandleFunc("POST /api/v1/iot/sensors/{sensorID}/events", h.IoT.IngestEvent)

	// 通知
	mux.HandleFunc("GET /api/v1/notifications", requireAuth(auth, h.Notifications.ListMy))
	mux.HandleFunc("POST /api/v1/notifications/{notificationID}/read", requireAuth(auth, h.Notifications.MarkRead))

	return withAccessLog(logger, mux)
}
