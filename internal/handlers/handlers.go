package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"roomledger/internal/services"
	"roomledger/internal/split"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Outstanding-balance conflicts keep their full message so the UI can show
// the member which amount still stands between them and the door.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrExpenseNotFound),
		errors.Is(err, services.ErrPaymentNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotGroupMember),
		errors.Is(err, services.ErrNotGroupAdmin),
		errors.Is(err, services.ErrNotRecipient):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrOutstandingBalance),
		errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrPaymentFinalized):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrSamePartyPayment),
		errors.Is(err, split.ErrNoParticipants),
		errors.Is(err, split.ErrNonPositiveAmount),
		errors.Is(err, split.ErrDuplicateUser):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
