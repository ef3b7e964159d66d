package store

import (
	"context"

	"roomledger/internal/models"
)

type ExpenseStore struct {
	db DB
}

func NewExpenseStore(db DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

// InsertWithSplits writes the expense row and all of its split rows. The
// caller supplies a transaction so either everything commits or nothing
// does; a reader must never observe an expense without its splits.
func (s *ExpenseStore) InsertWithSplits(ctx context.Context, tx Execer, expense models.Expense, splits []models.Split) error {
	query := `
		INSERT INTO expenses (id, group_id, payer_id, amount_minor, description, category, spent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.ExecContext(ctx, query,
		expense.ID, expense.GroupID, expense.PayerID, expense.AmountMinor,
		expense.Description, expense.Category, expense.SpentAt,
	); err != nil {
		return err
	}
	return s.insertSplits(ctx, tx, expense.ID, splits)
}

// Update rewrites the expense row and replaces its splits in one shot
// (delete-and-reinsert). Must run inside the same transaction as any
// membership checks the caller performed.
func (s *ExpenseStore) Update(ctx context.Context, tx Execer, expense models.Expense, splits []models.Split) error {
	query := `
		UPDATE expenses
		SET payer_id = $1, amount_minor = $2, description = $3, category = $4, spent_at = $5
		WHERE id = $6
	`
	if _, err := tx.ExecContext(ctx, query,
		expense.PayerID, expense.AmountMinor, expense.Description,
		expense.Category, expense.SpentAt, expense.ID,
	); err != nil {
		return err
	}
	return s.ReplaceSplits(ctx, tx, expense.ID, splits)
}

func (s *ExpenseStore) ReplaceSplits(ctx context.Context, tx Execer, expenseID string, splits []models.Split) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_splits WHERE expense_id = $1`, expenseID); err != nil {
		return err
	}
	return s.insertSplits(ctx, tx, expenseID, splits)
}

func (s *ExpenseStore) insertSplits(ctx context.Context, tx Execer, expenseID string, splits []models.Split) error {
	query := `
		INSERT INTO expense_splits (expense_id, user_id, amount_minor, paid, paid_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, split := range splits {
		if _, err := tx.ExecContext(ctx, query,
			expenseID, split.UserID, split.AmountMinor, split.Paid, split.PaidAt,
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExpenseStore) Delete(ctx context.Context, tx Execer, expenseID string) error {
	// Splits go with it via ON DELETE CASCADE.
	_, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, expenseID)
	return err
}

func (s *ExpenseStore) Get(ctx context.Context, expenseID string) (models.Expense, error) {
	var row models.Expense
	err := s.db.GetContext(ctx, &row, `
		SELECT id, group_id, payer_id, amount_minor, description, category, spent_at, created_at
		FROM expenses
		WHERE id = $1
	`, expenseID)
	return row, err
}

// ListByGroup returns the group's expenses with their full split sets
// attached, newest first.
func (s *ExpenseStore) ListByGroup(ctx context.Context, groupID string) ([]models.ExpenseWithSplits, error) {
	var expenses []models.Expense
	err := s.db.SelectContext(ctx, &expenses, `
		SELECT id, group_id, payer_id, amount_minor, description, category, spent_at, created_at
		FROM expenses
		WHERE group_id = $1
		ORDER BY spent_at DESC, created_at DESC
	`, groupID)
	if err != nil {
		return nil, err
	}

	var splits []models.Split
	err = s.db.SelectContext(ctx, &splits, `
		SELECT s.expense_id, s.user_id, s.amount_minor, s.paid, s.paid_at
		FROM expense_splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.group_id = $1
		ORDER BY s.expense_id, s.user_id
	`, groupID)
	if err != nil {
		return nil, err
	}

	byExpense := make(map[string][]models.Split, len(expenses))
	for _, split := range splits {
		byExpense[split.ExpenseID] = append(byExpense[split.ExpenseID], split)
	}
	result := make([]models.ExpenseWithSplits, 0, len(expenses))
	for _, expense := range expenses {
		result = append(result, models.ExpenseWithSplits{
			Expense: expense,
			Splits:  byExpense[expense.ID],
		})
	}
	return result, nil
}
