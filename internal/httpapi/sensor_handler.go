package httpapi

import (
	"net/http"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
	"github.com/SecureSpaceProject/secure-space-backend/internal/service"
)

// SensorHandler 传感器管理与用户通道的事件触发
type SensorHandler struct {
	sensors service.SensorService
	ingest  service.IngestService
}

func NewSensorHandler(sensors service.SensorService, ingest service.IngestService) *SensorHandler {
	return &SensorHandler{sensors: sensors, ingest: ingest}
}

// CreateSensor POST /api/v1/rooms/{roomID}/sensors
// 响应包含明文设备密钥，仅此一次
func (h *SensorHandler) CreateSensor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Kind string `json:"type"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.sensors.CreateSensor(r.Context(),
		CurrentUser(r).UserID, r.PathValue("roomID"), req.Name, domain.SensorKind(req.Kind))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(created))
}

// ListSensors GET /api/v1/rooms/{roomID}/sensors
func (h *SensorHandler) ListSensors(w http.ResponseWriter, r *http.Request) {
	sensors, err := h.sensors.ListSensors(r.Context(), CurrentUser(r).UserID, r.PathValue("roomID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sensors))
}

// UpdateSensor PATCH /api/v1/sensors/{sensorID}
func (h *SensorHandler) UpdateSensor(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateSensorInput
	if err := readBodyJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sensor, err := h.sensors.UpdateSensor(r.Context(), CurrentUser(r).UserID, r.PathValue("sensorID"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sensor))
}

// RemoveSensor DELETE /api/v1/sensors/{sensorID}
func (h *SensorHandler) RemoveSensor(w http.ResponseWriter, r *http.Request) {
	if err := h.sensors.RemoveSensor(r.Context(), CurrentUser(r).UserID, r.PathValue("sensorID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(struct{}{}))
}

type eventRequest struct {
	State *string `json:"state,omitempty"`
}

// TriggerEvent POST /api/v1/sensors/{sensorID}/events（用户通道，任意房间成员）
func (h *SensorHandler) TriggerEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.ingest.IngestUserEvent(r.Context(), CurrentUser(r).UserID, r.PathValue("sensorID"), req.State)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(result))
}

// IoTHandler 设备通道的事件接入，凭设备密钥认证（不走用户鉴权）
type IoTHandler struct {
	ingest service.IngestService
}

func NewIoTHandler(ingest service.IngestService) *IoTHandler {
	return &IoTHandler{ingest: ingest}
}

// IngestEvent POST /api/v1/iot/sensors/{sensorID}/events
// 设备密钥通过 X-Device-Secret 请求头携带
func (h *IoTHandler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("X-Device-Secret")
	if secret == "" {
		writeError(w, errs.New(errs.CodeAuthRequired))
		return
	}
	var req eventRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.ingest.IngestDeviceEvent(r.Context(), r.PathValue("sensorID"), secret, req.State)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(result))
}
