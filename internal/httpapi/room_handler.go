package httpapi

import (
	"net/http"

	"github.com/SecureSpaceProject/secure-space-backend/internal/service"
)

// RoomHandler 房间与房间内资源（警报、审计日志）
type RoomHandler struct {
	rooms    service.RoomService
	alerts   service.AlertService
	activity service.ActivityService
}

func NewRoomHandler(rooms service.RoomService, alerts service.AlertService, activity service.ActivityService) *RoomHandler {
	return &RoomHandler{rooms: rooms, alerts: alerts, activity: activity}
}

// CreateRoom POST /api/v1/rooms
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	room, err := h.rooms.CreateRoom(r.Context(), CurrentUser(r).UserID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(room))
}

// ListMyRooms GET /api/v1/rooms
func (h *RoomHandler) ListMyRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.GetMyRooms(r.Context(), CurrentUser(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(rooms))
}

// GetRoom GET /api/v1/rooms/{roomID}
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.rooms.GetRoom(r.Context(), CurrentUser(r).UserID, r.PathValue("roomID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(room))
}

// UpdateRoom PATCH /api/v1/rooms/{roomID}
func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateRoomInput
	if err := readBodyJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	room, err := h.rooms.UpdateRoom(r.Context(), CurrentUser(r).UserID, r.PathValue("roomID"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(room))
}

// DeleteRoom DELETE /api/v1/rooms/{roomID}
func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.rooms.DeleteRoom(r.Context(), CurrentUser(r).UserID, r.PathValue("roomID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(struct{}{}))
}

// GetActiveAlert GET /api/v1/rooms/{roomID}/alerts/active
func (h *RoomHandler) GetActiveAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := h.alerts.GetActiveAlert(r.Context(), CurrentUser(r).UserID, r.PathValue("roomID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(alert))
}

// ListAlerts GET /api/v1/rooms/{roomID}/alerts
func (h *RoomHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.ListAlerts(r.Context(), CurrentUser(r).UserID, r.PathValue("roomID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(alerts))
}

// CloseAlert POST /api/v1/rooms/{roomID}/alerts/close
func (h *RoomHandler) CloseAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := h.alerts.CloseAlert(r.Context(), CurrentUser(r).UserID, r.PathValue("roomID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(alert))
}

// ListActivity GET /api/v1/rooms/{roomID}/activity
func (h *RoomHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := h.activity.ListRoomActivity(r.Context(), CurrentUser(r).UserID, r.PathValue("roomID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(entries))
}
