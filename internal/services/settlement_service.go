package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"roomledger/internal/db"
	"roomledger/internal/ledger"
	"roomledger/internal/models"
	"roomledger/internal/money"
	"roomledger/internal/store"
	"roomledger/internal/websocket"
)

type PaymentStore interface {
	Create(ctx context.Context, tx store.Execer, payment models.Payment) error
	Get(ctx context.Context, paymentID string) (models.Payment, error)
	GetForUpdate(ctx context.Context, tx store.Getter, paymentID string) (models.Payment, error)
	UpdateStatus(ctx context.Context, tx store.Execer, paymentID, status string, confirmedAt *time.Time) error
	ListByGroup(ctx context.Context, groupID string) ([]models.Payment, error)
}

type BalanceReader interface {
	GroupBalances(ctx context.Context, groupID string) ([]models.Balance, error)
	RequireMember(ctx context.Context, groupID, userID string) (models.GroupMember, error)
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)
}

type Notifier interface {
	Notify(userID string, notice websocket.Notice)
	NotifyAll(userIDs []string, notice websocket.Notice)
}

// SettlementService runs the payment state machine. A payment starts
// pending, and only the recipient can move it to confirmed or rejected, both
// terminal. Balances react to the transition atomically: the ledger counts a
// payment entirely or not at all, so a confirmation can never be half
// visible.
type SettlementService struct {
	txRunner db.TxRunner
	payments PaymentStore
	balances BalanceReader
	audit    AuditStore
	hub      Notifier
	now      func() time.Time
}

func NewSettlementService(txRunner db.TxRunner, payments PaymentStore, balances BalanceReader, audit AuditStore, hub Notifier) *SettlementService {
	return &SettlementService{
		txRunner: txRunner,
		payments: payments,
		balances: balances,
		audit:    audit,
		hub:      hub,
		now:      time.Now,
	}
}

type InitiatePaymentRequest struct {
	GroupID     string
	ToUserID    string
	AmountMinor int64
}

// InitiatePayment records a pending settlement from the caller to a fellow
// member. Pending payments never move balances: the recipient has to confirm
// before the ledger counts it, so one party can't unilaterally change the
// other's displayed position.
func (s *SettlementService) InitiatePayment(ctx context.Context, fromUserID string, req InitiatePaymentRequest) (models.Payment, error) {
	if req.AmountMinor <= 0 {
		return models.Payment{}, ErrInvalidAmount
	}
	if fromUserID == req.ToUserID {
		return models.Payment{}, ErrSamePartyPayment
	}
	if _, err := s.balances.RequireMember(ctx, req.GroupID, fromUserID); err != nil {
		return models.Payment{}, err
	}
	if _, err := s.balances.RequireMember(ctx, req.GroupID, req.ToUserID); err != nil {
		return models.Payment{}, err
	}

	payment := models.Payment{
		ID:          uuid.NewString(),
		GroupID:     req.GroupID,
		FromUserID:  fromUserID,
		ToUserID:    req.ToUserID,
		AmountMinor: req.AmountMinor,
		Status:      models.PaymentPending,
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.payments.Create(ctx, tx, payment); err != nil {
			return fmt.Errorf("insert payment %s: %w", payment.ID, err)
		}
		data, _ := json.Marshal(map[string]any{
			"to":     req.ToUserID,
			"amount": req.AmountMinor,
		})
		return s.audit.Log(ctx, tx, fromUserID, "payment_initiate", "payment", payment.ID, string(data))
	})
	if err != nil {
		return models.Payment{}, err
	}

	s.hub.Notify(req.ToUserID, websocket.Notice{
		Type:       "payment_initiated",
		GroupID:    req.GroupID,
		PaymentID:  payment.ID,
		FromUserID: fromUserID,
		ToUserID:   req.ToUserID,
		Amount:     money.FormatMinor(req.AmountMinor),
	})
	return payment, nil
}

// ConfirmPayment moves a pending (or legacy completed) payment to confirmed.
// Recipient only. The row is locked for the duration of the transition, so
// racing confirm/reject calls serialize and the loser sees
// ErrPaymentFinalized.
func (s *SettlementService) ConfirmPayment(ctx context.Context, actorID, paymentID string) (models.Payment, error) {
	payment, err := s.transition(ctx, actorID, paymentID, models.PaymentConfirmed, "payment_confirm")
	if err != nil {
		return models.Payment{}, err
	}

	s.hub.Notify(payment.FromUserID, websocket.Notice{
		Type:       "payment_confirmed",
		GroupID:    payment.GroupID,
		PaymentID:  payment.ID,
		FromUserID: payment.FromUserID,
		ToUserID:   payment.ToUserID,
		Amount:     money.FormatMinor(payment.AmountMinor),
	})
	s.announceIfSettled(ctx, payment.GroupID)
	return payment, nil
}

// RejectPayment declines a pending payment. The payment never counted toward
// any balance and never will.
func (s *SettlementService) RejectPayment(ctx context.Context, actorID, paymentID string) (models.Payment, error) {
	payment, err := s.transition(ctx, actorID, paymentID, models.PaymentRejected, "payment_reject")
	if err != nil {
		return models.Payment{}, err
	}

	s.hub.Notify(payment.FromUserID, websocket.Notice{
		Type:       "payment_rejected",
		GroupID:    payment.GroupID,
		PaymentID:  payment.ID,
		FromUserID: payment.FromUserID,
		ToUserID:   payment.ToUserID,
		Amount:     money.FormatMinor(payment.AmountMinor),
	})
	return payment, nil
}

func (s *SettlementService) ListPayments(ctx context.Context, groupID string) ([]models.Payment, error) {
	payments, err := s.payments.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("fetch payments for group %s: %w", groupID, err)
	}
	return payments, nil
}

func (s *SettlementService) transition(ctx context.Context, actorID, paymentID, status, action string) (models.Payment, error) {
	var payment models.Payment
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		payment, err = s.payments.GetForUpdate(ctx, tx, paymentID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPaymentNotFound
		}
		if err != nil {
			return fmt.Errorf("fetch payment %s: %w", paymentID, err)
		}
		if payment.ToUserID != actorID {
			return ErrNotRecipient
		}
		if !payment.Confirmable() {
			return ErrPaymentFinalized
		}
		var confirmedAt *time.Time
		if status == models.PaymentConfirmed {
			now := s.now()
			confirmedAt = &now
		}
		if err := s.payments.UpdateStatus(ctx, tx, paymentID, status, confirmedAt); err != nil {
			return fmt.Errorf("update payment %s status: %w", paymentID, err)
		}
		payment.Status = status
		payment.ConfirmedAt = confirmedAt
		return s.audit.Log(ctx, tx, actorID, action, "payment", paymentID, "{}")
	})
	if err != nil {
		return models.Payment{}, err
	}
	return payment, nil
}

// announceIfSettled broadcasts a celebratory notice when every balance in
// the group has hit zero. Best effort: a read failure here is logged and
// never unwinds the confirmation that triggered it.
func (s *SettlementService) announceIfSettled(ctx context.Context, groupID string) {
	balances, err := s.balances.GroupBalances(ctx, groupID)
	if err != nil {
		slog.Warn("settled check failed after payment confirmation", "group_id", groupID, "err", err)
		return
	}
	if !ledger.Settled(balances) {
		return
	}
	members, err := s.balances.ListMembers(ctx, groupID)
	if err != nil {
		slog.Warn("member list failed for settled notice", "group_id", groupID, "err", err)
		return
	}
	userIDs := make([]string, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	s.hub.NotifyAll(userIDs, websocket.Notice{Type: "group_settled", GroupID: groupID})
}
