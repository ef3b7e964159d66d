package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"roomledger/internal/db"
	"roomledger/internal/models"
	"roomledger/internal/split"
	"roomledger/internal/store"
)

type ExpenseStore interface {
	InsertWithSplits(ctx context.Context, tx store.Execer, expense models.Expense, splits []models.Split) error
	Update(ctx context.Context, tx store.Execer, expense models.Expense, splits []models.Split) error
	Delete(ctx context.Context, tx store.Execer, expenseID string) error
	Get(ctx context.Context, expenseID string) (models.Expense, error)
	ListByGroup(ctx context.Context, groupID string) ([]models.ExpenseWithSplits, error)
}

type MembershipChecker interface {
	GetMember(ctx context.Context, groupID, userID string) (models.GroupMember, error)
	Get(ctx context.Context, groupID string) (models.Group, error)
}

type ExpenseService struct {
	txRunner db.TxRunner
	groups   MembershipChecker
	expenses ExpenseStore
	audit    AuditStore
	now      func() time.Time
}

func NewExpenseService(txRunner db.TxRunner, groups MembershipChecker, expenses ExpenseStore, audit AuditStore) *ExpenseService {
	return &ExpenseService{
		txRunner: txRunner,
		groups:   groups,
		expenses: expenses,
		audit:    audit,
		now:      time.Now,
	}
}

type ExpenseRequest struct {
	GroupID        string
	PayerID        string
	AmountMinor    int64
	Description    string
	Category       string
	SpentAt        time.Time
	ParticipantIDs []string
}

// CreateExpense validates the request, allocates cent-exact shares across
// the participants and writes the expense plus all split rows atomically.
// The payer is appended to the participants if omitted; their split row is
// marked paid immediately since they fronted the money.
func (s *ExpenseService) CreateExpense(ctx context.Context, actorID string, req ExpenseRequest) (models.ExpenseWithSplits, error) {
	expense := models.Expense{
		ID:          uuid.NewString(),
		GroupID:     req.GroupID,
		PayerID:     req.PayerID,
		AmountMinor: req.AmountMinor,
		Description: req.Description,
		Category:    req.Category,
		SpentAt:     req.SpentAt,
	}
	splits, err := s.buildSplits(ctx, expense, req.ParticipantIDs)
	if err != nil {
		return models.ExpenseWithSplits{}, err
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.expenses.InsertWithSplits(ctx, tx, expense, splits); err != nil {
			return fmt.Errorf("insert expense %s: %w", expense.ID, err)
		}
		data, _ := json.Marshal(map[string]any{
			"amount":       expense.AmountMinor,
			"participants": len(splits),
		})
		return s.audit.Log(ctx, tx, actorID, "expense_create", "expense", expense.ID, string(data))
	})
	if err != nil {
		return models.ExpenseWithSplits{}, err
	}
	return models.ExpenseWithSplits{Expense: expense, Splits: splits}, nil
}

// UpdateExpense re-validates and fully re-splits. The expense row update and
// the delete-and-reinsert of split rows share one transaction, so a
// concurrent balance query never sees the expense with stale splits.
func (s *ExpenseService) UpdateExpense(ctx context.Context, actorID, expenseID string, req ExpenseRequest) (models.ExpenseWithSplits, error) {
	existing, err := s.getExpense(ctx, expenseID)
	if err != nil {
		return models.ExpenseWithSplits{}, err
	}
	if existing.GroupID != req.GroupID {
		return models.ExpenseWithSplits{}, ErrExpenseNotFound
	}
	expense := models.Expense{
		ID:          expenseID,
		GroupID:     req.GroupID,
		PayerID:     req.PayerID,
		AmountMinor: req.AmountMinor,
		Description: req.Description,
		Category:    req.Category,
		SpentAt:     req.SpentAt,
		CreatedAt:   existing.CreatedAt,
	}
	splits, err := s.buildSplits(ctx, expense, req.ParticipantIDs)
	if err != nil {
		return models.ExpenseWithSplits{}, err
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.expenses.Update(ctx, tx, expense, splits); err != nil {
			return fmt.Errorf("update expense %s: %w", expenseID, err)
		}
		return s.audit.Log(ctx, tx, actorID, "expense_update", "expense", expenseID, "{}")
	})
	if err != nil {
		return models.ExpenseWithSplits{}, err
	}
	return models.ExpenseWithSplits{Expense: expense, Splits: splits}, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, actorID, groupID, expenseID string) error {
	existing, err := s.getExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if existing.GroupID != groupID {
		return ErrExpenseNotFound
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.expenses.Delete(ctx, tx, expenseID); err != nil {
			return fmt.Errorf("delete expense %s: %w", expenseID, err)
		}
		return s.audit.Log(ctx, tx, actorID, "expense_delete", "expense", expenseID, "{}")
	})
}

func (s *ExpenseService) ListExpenses(ctx context.Context, groupID string) ([]models.ExpenseWithSplits, error) {
	expenses, err := s.expenses.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("fetch expenses for group %s: %w", groupID, err)
	}
	return expenses, nil
}

func (s *ExpenseService) getExpense(ctx context.Context, expenseID string) (models.Expense, error) {
	expense, err := s.expenses.Get(ctx, expenseID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Expense{}, ErrExpenseNotFound
	}
	if err != nil {
		return models.Expense{}, fmt.Errorf("fetch expense %s: %w", expenseID, err)
	}
	return expense, nil
}

func (s *ExpenseService) buildSplits(ctx context.Context, expense models.Expense, participantIDs []string) ([]models.Split, error) {
	participants := participantIDs
	payerIncluded := false
	for _, userID := range participants {
		if userID == expense.PayerID {
			payerIncluded = true
			break
		}
	}
	if !payerIncluded {
		participants = append(append([]string{}, participants...), expense.PayerID)
	}

	for _, userID := range participants {
		if _, err := s.groups.GetMember(ctx, expense.GroupID, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrNotGroupMember, userID)
			}
			return nil, fmt.Errorf("check membership of %s in group %s: %w", userID, expense.GroupID, err)
		}
	}

	shares, err := split.Allocate(expense.AmountMinor, participants)
	if err != nil {
		return nil, err
	}
	now := s.now()
	splits := make([]models.Split, 0, len(participants))
	for _, userID := range participants {
		row := models.Split{
			ExpenseID:   expense.ID,
			UserID:      userID,
			AmountMinor: shares[userID],
		}
		if userID == expense.PayerID {
			row.Paid = true
			row.PaidAt = &now
		}
		splits = append(splits, row)
	}
	return splits, nil
}
