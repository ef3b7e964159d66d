package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"roomledger/internal/money"
	"roomledger/internal/services"
	"roomledger/internal/split"
	"roomledger/internal/validator"

	"github.com/go-chi/chi/v5"
)

type expenseRequest struct {
	Amount       string   `json:"amount"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	SpentAt      string   `json:"spent_at"`
	Participants []string `json:"participants"`
}

func (h *Handler) decodeExpenseRequest(w http.ResponseWriter, r *http.Request, groupID, payerID string) (services.ExpenseRequest, bool) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return services.ExpenseRequest{}, false
	}
	amountMinor, err := money.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return services.ExpenseRequest{}, false
	}
	if err := validator.ValidateDescription(req.Description); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return services.ExpenseRequest{}, false
	}
	spentAt := time.Now().UTC()
	if req.SpentAt != "" {
		spentAt, err = time.Parse(time.RFC3339, req.SpentAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, "spent_at must be RFC 3339")
			return services.ExpenseRequest{}, false
		}
	}
	return services.ExpenseRequest{
		GroupID:        groupID,
		PayerID:        payerID,
		AmountMinor:    amountMinor,
		Description:    req.Description,
		Category:       req.Category,
		SpentAt:        spentAt,
		ParticipantIDs: req.Participants,
	}, true
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeExpenseRequest(w, r, groupID, userID)
	if !ok {
		return
	}
	expense, err := h.expenses.CreateExpense(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, renderExpense(expense))
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	expenses, err := h.expenses.ListExpenses(r.Context(), groupID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderExpenses(expenses))
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeExpenseRequest(w, r, groupID, userID)
	if !ok {
		return
	}
	expenseID := chi.URLParam(r, "expenseID")
	expense, err := h.expenses.UpdateExpense(r.Context(), userID, expenseID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderExpense(expense))
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := h.memberContext(w, r)
	if !ok {
		return
	}
	expenseID := chi.URLParam(r, "expenseID")
	if err := h.expenses.DeleteExpense(r.Context(), userID, groupID, expenseID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type allocateRequest struct {
	Amount       string   `json:"amount"`
	Participants []string `json:"participants"`
}

// AllocateShares previews a split without persisting anything. Same
// allocator as expense creation, so the preview always matches what a
// created expense would store.
func (h *Handler) AllocateShares(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := money.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	shares, err := split.Allocate(amountMinor, req.Participants)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	rendered := make(map[string]string, len(shares))
	for userID, minor := range shares {
		rendered[userID] = money.FormatMinor(minor)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"total":  money.FormatMinor(amountMinor),
		"shares": rendered,
	})
}
