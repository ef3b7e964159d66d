package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"roomledger/internal/middleware"
	"roomledger/internal/validator"

	"github.com/go-chi/chi/v5"
)

type createGroupRequest struct {
	Name string `json:"name"`
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateGroupName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	group, err := h.groups.CreateGroup(r.Context(), userID, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, group)
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	groups, err := h.groups.ListGroups(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	group, err := h.groups.GetGroup(r.Context(), groupID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	if err := h.groups.DeleteGroup(r.Context(), userID, groupID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	members, err := h.groups.ListMembers(r.Context(), groupID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

type addMemberRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	actorID, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	targetID := req.UserID
	if targetID == "" && req.Username != "" {
		user, err := h.users.GetByUsername(r.Context(), req.Username)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(w, http.StatusNotFound, "user not found")
				return
			}
			respondError(w, http.StatusInternalServerError, "unable to resolve user")
			return
		}
		targetID = user.ID
	}
	if targetID == "" {
		respondError(w, http.StatusBadRequest, "user_id or username is required")
		return
	}
	if err := h.groups.AddMember(r.Context(), actorID, groupID, targetID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"user_id": targetID})
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	targetID := chi.URLParam(r, "userID")
	if err := h.groups.RemoveMember(r.Context(), actorID, groupID, targetID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	if err := h.groups.LeaveGroup(r.Context(), userID, groupID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// LeaveCheck lets the UI grey the leave button out before the member tries.
func (h *Handler) LeaveCheck(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	canLeave, err := h.groups.CanLeaveGroup(r.Context(), userID, groupID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"can_leave": canLeave})
}

// memberContext resolves the caller and the group from the request and
// verifies membership. Every group-scoped route goes through it.
func (h *Handler) memberContext(w http.ResponseWriter, r *http.Request) (userID, groupID string, ok bool) {
	userID, authed := middleware.UserIDFromContext(r.Context())
	if !authed {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return "", "", false
	}
	groupID = chi.URLParam(r, "groupID")
	if _, err := h.groups.RequireMember(r.Context(), groupID, userID); err != nil {
		respondServiceError(w, err)
		return "", "", false
	}
	return userID, groupID, true
}
