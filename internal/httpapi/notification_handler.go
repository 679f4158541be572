package httpapi

import (
	"net/http"

	"github.com/SecureSpaceProject/secure-space-backend/internal/service"
)

// NotificationHandler 收件箱
type NotificationHandler struct {
	notifications service.NotificationService
}

func NewNotificationHandler(notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListMy GET /api/v1/notifications
func (h *NotificationHandler) ListMy(w http.ResponseWriter, r *http.Request) {
	list, err := h.notifications.ListMy(r.Context(), CurrentUser(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(list))
}

// MarkRead POST /api/v1/notifications/{notificationID}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.MarkRead(r.Context(), CurrentUser(r).UserID, r.PathValue("notificationID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(n))
}
