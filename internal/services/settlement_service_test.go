package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"roomledger/internal/models"
	"roomledger/internal/store"
)

func TestInitiatePaymentInvalidAmount(t *testing.T) {
	service := NewSettlementService(fakeTxRunner{}, stubPaymentStore{}, stubBalanceReader{}, stubAuditStore{}, newStubHub())
	_, err := service.InitiatePayment(context.Background(), "u1", InitiatePaymentRequest{
		GroupID: "g1", ToUserID: "u2", AmountMinor: 0,
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestInitiatePaymentToSelf(t *testing.T) {
	service := NewSettlementService(fakeTxRunner{}, stubPaymentStore{}, stubBalanceReader{}, stubAuditStore{}, newStubHub())
	_, err := service.InitiatePayment(context.Background(), "u1", InitiatePaymentRequest{
		GroupID: "g1", ToUserID: "u1", AmountMinor: 100,
	})
	if !errors.Is(err, ErrSamePartyPayment) {
		t.Fatalf("expected ErrSamePartyPayment, got %v", err)
	}
}

func TestInitiatePaymentNonMember(t *testing.T) {
	balances := stubBalanceReader{
		requireMemberFn: func(_ context.Context, _, userID string) (models.GroupMember, error) {
			if userID == "outsider" {
				return models.GroupMember{}, ErrNotGroupMember
			}
			return models.GroupMember{UserID: userID}, nil
		},
	}
	service := NewSettlementService(fakeTxRunner{}, stubPaymentStore{}, balances, stubAuditStore{}, newStubHub())
	_, err := service.InitiatePayment(context.Background(), "u1", InitiatePaymentRequest{
		GroupID: "g1", ToUserID: "outsider", AmountMinor: 100,
	})
	if !errors.Is(err, ErrNotGroupMember) {
		t.Fatalf("expected ErrNotGroupMember, got %v", err)
	}
}

func TestInitiatePaymentCreatesPendingAndNotifies(t *testing.T) {
	var created models.Payment
	payments := stubPaymentStore{
		createFn: func(_ context.Context, _ store.Execer, payment models.Payment) error {
			created = payment
			return nil
		},
	}
	hub := newStubHub()
	service := NewSettlementService(fakeTxRunner{}, payments, stubBalanceReader{}, stubAuditStore{}, hub)
	payment, err := service.InitiatePayment(context.Background(), "debtor", InitiatePaymentRequest{
		GroupID: "g1", ToUserID: "creditor", AmountMinor: 2500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Status != models.PaymentPending {
		t.Fatalf("expected pending status, got %s", payment.Status)
	}
	if created.FromUserID != "debtor" || created.ToUserID != "creditor" || created.AmountMinor != 2500 {
		t.Fatalf("unexpected stored payment: %#v", created)
	}
	notices := hub.notices["creditor"]
	if len(notices) != 1 || notices[0].Type != "payment_initiated" || notices[0].Amount != "25.00" {
		t.Fatalf("recipient not notified: %#v", hub.notices)
	}
	if len(hub.notices["debtor"]) != 0 {
		t.Fatalf("sender must not be notified on initiate: %#v", hub.notices)
	}
}

func awaitingPayment(status string) stubPaymentStore {
	return stubPaymentStore{
		getForUpdateFn: func(_ context.Context, _ store.Getter, paymentID string) (models.Payment, error) {
			return models.Payment{
				ID: paymentID, GroupID: "g1",
				FromUserID: "debtor", ToUserID: "creditor",
				AmountMinor: 2500, Status: status,
			}, nil
		},
	}
}

func TestConfirmPaymentWrongActor(t *testing.T) {
	service := NewSettlementService(fakeTxRunner{}, awaitingPayment(models.PaymentPending), stubBalanceReader{}, stubAuditStore{}, newStubHub())
	_, err := service.ConfirmPayment(context.Background(), "debtor", "p1")
	if !errors.Is(err, ErrNotRecipient) {
		t.Fatalf("expected ErrNotRecipient, got %v", err)
	}
}

func TestConfirmPaymentAlreadyFinal(t *testing.T) {
	for _, status := range []string{models.PaymentConfirmed, models.PaymentRejected} {
		service := NewSettlementService(fakeTxRunner{}, awaitingPayment(status), stubBalanceReader{}, stubAuditStore{}, newStubHub())
		_, err := service.ConfirmPayment(context.Background(), "creditor", "p1")
		if !errors.Is(err, ErrPaymentFinalized) {
			t.Fatalf("status %s: expected ErrPaymentFinalized, got %v", status, err)
		}
	}
}

func TestConfirmPaymentNotFound(t *testing.T) {
	service := NewSettlementService(fakeTxRunner{}, stubPaymentStore{}, stubBalanceReader{}, stubAuditStore{}, newStubHub())
	_, err := service.ConfirmPayment(context.Background(), "creditor", "nope")
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestConfirmPaymentSetsConfirmedAtAndNotifiesSender(t *testing.T) {
	var updatedStatus string
	var updatedAt *time.Time
	payments := awaitingPayment(models.PaymentPending)
	payments.updateStatusFn = func(_ context.Context, _ store.Execer, _, status string, confirmedAt *time.Time) error {
		updatedStatus = status
		updatedAt = confirmedAt
		return nil
	}
	hub := newStubHub()
	service := NewSettlementService(fakeTxRunner{}, payments, stubBalanceReader{
		groupBalancesFn: func(context.Context, string) ([]models.Balance, error) {
			return []models.Balance{{UserID: "debtor", NetMinor: -100}}, nil
		},
	}, stubAuditStore{}, hub)

	payment, err := service.ConfirmPayment(context.Background(), "creditor", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updatedStatus != models.PaymentConfirmed || updatedAt == nil {
		t.Fatalf("expected confirmed with timestamp, got %s/%v", updatedStatus, updatedAt)
	}
	if payment.ConfirmedAt == nil {
		t.Fatal("returned payment missing confirmed_at")
	}
	notices := hub.notices["debtor"]
	if len(notices) != 1 || notices[0].Type != "payment_confirmed" {
		t.Fatalf("sender not notified: %#v", hub.notices)
	}
}

func TestConfirmPaymentLegacyCompletedStatus(t *testing.T) {
	service := NewSettlementService(fakeTxRunner{}, awaitingPayment(models.PaymentCompleted), stubBalanceReader{}, stubAuditStore{}, newStubHub())
	payment, err := service.ConfirmPayment(context.Background(), "creditor", "p1")
	if err != nil {
		t.Fatalf("completed payments must still be confirmable: %v", err)
	}
	if payment.Status != models.PaymentConfirmed {
		t.Fatalf("unexpected status: %s", payment.Status)
	}
}

func TestConfirmPaymentBroadcastsGroupSettled(t *testing.T) {
	hub := newStubHub()
	service := NewSettlementService(fakeTxRunner{}, awaitingPayment(models.PaymentPending), stubBalanceReader{
		groupBalancesFn: func(context.Context, string) ([]models.Balance, error) {
			return []models.Balance{
				{UserID: "debtor", NetMinor: 0},
				{UserID: "creditor", NetMinor: 0},
			}, nil
		},
		listMembersFn: func(context.Context, string) ([]models.GroupMember, error) {
			return []models.GroupMember{{UserID: "debtor"}, {UserID: "creditor"}}, nil
		},
	}, stubAuditStore{}, hub)

	if _, err := service.ConfirmPayment(context.Background(), "creditor", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, userID := range []string{"debtor", "creditor"} {
		found := false
		for _, notice := range hub.notices[userID] {
			if notice.Type == "group_settled" {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing group_settled notice for %s: %#v", userID, hub.notices)
		}
	}
}

func TestConfirmPaymentSettledCheckFailureDoesNotUndo(t *testing.T) {
	hub := newStubHub()
	service := NewSettlementService(fakeTxRunner{}, awaitingPayment(models.PaymentPending), stubBalanceReader{
		groupBalancesFn: func(context.Context, string) ([]models.Balance, error) {
			return nil, errors.New("store down")
		},
	}, stubAuditStore{}, hub)

	payment, err := service.ConfirmPayment(context.Background(), "creditor", "p1")
	if err != nil {
		t.Fatalf("confirmation must survive settled-check failure: %v", err)
	}
	if payment.Status != models.PaymentConfirmed {
		t.Fatalf("unexpected status: %s", payment.Status)
	}
}

func TestRejectPaymentLeavesNoTimestamp(t *testing.T) {
	var updatedStatus string
	var updatedAt *time.Time
	payments := awaitingPayment(models.PaymentPending)
	payments.updateStatusFn = func(_ context.Context, _ store.Execer, _, status string, confirmedAt *time.Time) error {
		updatedStatus = status
		updatedAt = confirmedAt
		return nil
	}
	hub := newStubHub()
	service := NewSettlementService(fakeTxRunner{}, payments, stubBalanceReader{}, stubAuditStore{}, hub)

	payment, err := service.RejectPayment(context.Background(), "creditor", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updatedStatus != models.PaymentRejected || updatedAt != nil {
		t.Fatalf("expected rejected with nil timestamp, got %s/%v", updatedStatus, updatedAt)
	}
	if payment.ConfirmedAt != nil {
		t.Fatal("rejected payment must not carry confirmed_at")
	}
	notices := hub.notices["debtor"]
	if len(notices) != 1 || notices[0].Type != "payment_rejected" {
		t.Fatalf("sender not notified of rejection: %#v", hub.notices)
	}
}
