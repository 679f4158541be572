package httpapi

import (
	"net/http"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/service"
)

// MemberHandler 房间成员管理
type MemberHandler struct {
	members service.MemberService
}

func NewMemberHandler(members service.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

// AddMember POST /api/v1/rooms/{roomID}/members
func (h *MemberHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		Role   string `json:"memberRole"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	member, err := h.members.AddMember(r.Context(),
		CurrentUser(r).UserID, r.PathValue("roomID"), req.UserID, domain.RoomRole(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(member))
}

// ListMembers GET /api/v1/rooms/{roomID}/members
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.members.ListMembers(r.Context(), CurrentUser(r).UserID, r.PathValue("roomID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(members))
}

// UpdateMemberRole PATCH /api/v1/rooms/{roomID}/members/{userID}
func (h *MemberHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"memberRole"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	member, err := h.members.UpdateMemberRole(r.Context(),
		CurrentUser(r).UserID, r.PathValue("roomID"), r.PathValue("userID"), domain.RoomRole(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(member))
}

// RemoveMember DELETE /api/v1/rooms/{roomID}/members/{userID}
func (h *MemberHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.members.RemoveMember(r.Context(),
		CurrentUser(r).UserID, r.PathValue("roomID"), r.PathValue("userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(struct{}{}))
}
