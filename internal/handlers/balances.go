package handlers

import (
	"net/http"
	"strings"

	"roomledger/internal/auth"
	"roomledger/internal/websocket"
)

func (h *Handler) GroupBalances(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	balances, err := h.groups.GroupBalances(r.Context(), groupID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderBalances(balances))
}

func (h *Handler) MyBalance(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	balance, err := h.groups.UserBalance(r.Context(), userID, groupID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderBalance(balance))
}

func (h *Handler) SuggestSettlements(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	lines, err := h.groups.SuggestSettlements(r.Context(), groupID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderDebtLines(lines))
}

func (h *Handler) MyStats(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	stats, err := h.groups.UserStats(r.Context(), userID, groupID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderUserStats(stats))
}

// WSNotifications upgrades to a websocket for payment notices. Browsers
// can't set headers on websocket requests, so the token may arrive as a
// query parameter instead of a bearer header.
func (h *Handler) WSNotifications(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		header := r.Header.Get("Authorization")
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
