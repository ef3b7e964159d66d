package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"roomledger/internal/models"
	"roomledger/internal/services"
)

func TestCreateExpense(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAuditStore{}, stubGroupService{}, stubExpenseService{
		createExpenseFn: func(_ context.Context, actorID string, req services.ExpenseRequest) (models.ExpenseWithSplits, error) {
			if req.AmountMinor != 10000 {
				t.Fatalf("expected 10000 minor units, got %d", req.AmountMinor)
			}
			if req.PayerID != "user-1" {
				t.Fatalf("expected payer user-1, got %s", req.PayerID)
			}
			return models.ExpenseWithSplits{
				Expense: models.Expense{ID: "e1", GroupID: req.GroupID, PayerID: actorID, AmountMinor: req.AmountMinor, Description: req.Description},
				Splits: []models.Split{
					{ExpenseID: "e1", UserID: "user-1", AmountMinor: 3334, Paid: true},
					{ExpenseID: "e1", UserID: "user-2", AmountMinor: 3333},
					{ExpenseID: "e1", UserID: "user-3", AmountMinor: 3333},
				},
			}, nil
		},
	}, stubSettlementService{})

	body := []byte(`{"amount":"100.00","description":"groceries","category":"food","participants":["user-1","user-2","user-3"]}`)
	req := authedRequest(t, http.MethodPost, "/groups/g1/expenses", body)
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Amount string `json:"amount"`
		Splits []struct {
			UserID string `json:"user_id"`
			Amount string `json:"amount"`
		} `json:"splits"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Amount != "100.00" {
		t.Fatalf("expected amount 100.00, got %s", resp.Amount)
	}
	if len(resp.Splits) != 3 {
		t.Fatalf("expected 3 splits, got %d", len(resp.Splits))
	}
	if resp.Splits[0].Amount != "33.34" {
		t.Fatalf("expected first split 33.34, got %s", resp.Splits[0].Amount)
	}
}

func TestCreateExpenseRejectsBadAmount(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAuditStore{}, stubGroupService{}, stubExpenseService{}, stubSettlementService{})

	body := []byte(`{"amount":"abc","description":"groceries","participants":["user-1"]}`)
	req := authedRequest(t, http.MethodPost, "/groups/g1/expenses", body)
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateExpenseNonMemberParticipant(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAuditStore{}, stubGroupService{}, stubExpenseService{
		createExpenseFn: func(context.Context, string, services.ExpenseRequest) (models.ExpenseWithSplits, error) {
			return models.ExpenseWithSplits{}, services.ErrNotGroupMember
		},
	}, stubSettlementService{})

	body := []byte(`{"amount":"10.00","description":"snacks","participants":["stranger"]}`)
	req := authedRequest(t, http.MethodPost, "/groups/g1/expenses", body)
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestAllocatePreview(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAuditStore{}, stubGroupService{}, stubExpenseService{}, stubSettlementService{})

	body := []byte(`{"amount":"100.00","participants":["a","b","c"]}`)
	req := authedRequest(t, http.MethodPost, "/allocate", body)
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Total  string            `json:"total"`
		Shares map[string]string `json:"shares"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Total != "100.00" {
		t.Fatalf("expected total 100.00, got %s", resp.Total)
	}
	if resp.Shares["a"] != "33.34" || resp.Shares["b"] != "33.33" || resp.Shares["c"] != "33.33" {
		t.Fatalf("unexpected shares: %v", resp.Shares)
	}
}

func TestAllocatePreviewNoParticipants(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAuditStore{}, stubGroupService{}, stubExpenseService{}, stubSettlementService{})

	body := []byte(`{"amount":"100.00","participants":[]}`)
	req := authedRequest(t, http.MethodPost, "/allocate", body)
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
