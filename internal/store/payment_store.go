package store

import (
	"context"
	"time"

	"roomledger/internal/models"
)

type PaymentStore struct {
	db DB
}

func NewPaymentStore(db DB) *PaymentStore {
	return &PaymentStore{db: db}
}

func (s *PaymentStore) Create(ctx context.Context, tx Execer, payment models.Payment) error {
	query := `
		INSERT INTO payments (id, group_id, from_user, to_user, amount_minor, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query,
		payment.ID, payment.GroupID, payment.FromUserID, payment.ToUserID,
		payment.AmountMinor, payment.Status,
	)
	return err
}

func (s *PaymentStore) Get(ctx context.Context, paymentID string) (models.Payment, error) {
	var row models.Payment
	err := s.db.GetContext(ctx, &row, `
		SELECT id, group_id, from_user, to_user, amount_minor, status, created_at, confirmed_at
		FROM payments
		WHERE id = $1
	`, paymentID)
	return row, err
}

// GetForUpdate locks the payment row so two racing confirmations serialize
// on it.
func (s *PaymentStore) GetForUpdate(ctx context.Context, tx Getter, paymentID string) (models.Payment, error) {
	var row models.Payment
	err := tx.GetContext(ctx, &row, `
		SELECT id, group_id, from_user, to_user, amount_minor, status, created_at, confirmed_at
		FROM payments
		WHERE id = $1
		FOR UPDATE
	`, paymentID)
	return row, err
}

func (s *PaymentStore) UpdateStatus(ctx context.Context, tx Execer, paymentID, status string, confirmedAt *time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE payments SET status = $1, confirmed_at = $2 WHERE id = $3
	`, status, confirmedAt, paymentID)
	return err
}

func (s *PaymentStore) ListByGroup(ctx context.Context, groupID string) ([]models.Payment, error) {
	var rows []models.Payment
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, group_id, from_user, to_user, amount_minor, status, created_at, confirmed_at
		FROM payments
		WHERE group_id = $1
		ORDER BY created_at DESC
	`, groupID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
