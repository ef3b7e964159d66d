package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"roomledger/internal/middleware"
	"roomledger/internal/models"
	"roomledger/internal/money"
	"roomledger/internal/services"

	"github.com/go-chi/chi/v5"
)

type initiatePaymentRequest struct {
	ToUserID string `json:"to_user_id"`
	Amount   string `json:"amount"`
}

func (h *Handler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	var req initiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := money.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	payment, err := h.settlements.InitiatePayment(r.Context(), userID, services.InitiatePaymentRequest{
		GroupID:     groupID,
		ToUserID:    req.ToUserID,
		AmountMinor: amountMinor,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, renderPayment(payment))
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	payments, err := h.settlements.ListPayments(r.Context(), groupID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderPayments(payments))
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	h.resolvePayment(w, r, h.settlements.ConfirmPayment)
}

func (h *Handler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	h.resolvePayment(w, r, h.settlements.RejectPayment)
}

// Confirm and reject differ only in the service call; only the recipient
// may do either, which the service enforces.
func (h *Handler) resolvePayment(w http.ResponseWriter, r *http.Request, resolve func(ctx context.Context, actorID, paymentID string) (models.Payment, error)) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	paymentID := chi.URLParam(r, "paymentID")
	payment, err := resolve(r.Context(), userID, paymentID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderPayment(payment))
}
