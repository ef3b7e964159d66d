package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"roomledger/internal/models"
)

func TestExpenseStoreInsertWithSplits(t *testing.T) {
	ctx := context.Background()
	var queries []string
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			queries = append(queries, query)
			return stubResult{rows: 1}, nil
		},
	}
	store := NewExpenseStore(stubDB{})
	expense := models.Expense{
		ID: "e1", GroupID: "g1", PayerID: "u1", AmountMinor: 10000,
		Description: "groceries", Category: "food", SpentAt: time.Now(),
	}
	splits := []models.Split{
		{ExpenseID: "e1", UserID: "u1", AmountMinor: 3334, Paid: true},
		{ExpenseID: "e1", UserID: "u2", AmountMinor: 3333},
		{ExpenseID: "e1", UserID: "u3", AmountMinor: 3333},
	}
	if err := store.InsertWithSplits(ctx, execer, expense, splits); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 4 {
		t.Fatalf("expected 1 expense insert + 3 split inserts, got %d queries", len(queries))
	}
	if !strings.Contains(queries[0], "INSERT INTO expenses") {
		t.Fatalf("unexpected first query: %s", queries[0])
	}
	for _, q := range queries[1:] {
		if !strings.Contains(q, "INSERT INTO expense_splits") {
			t.Fatalf("unexpected split query: %s", q)
		}
	}
}

func TestExpenseStoreReplaceSplitsDeletesFirst(t *testing.T) {
	ctx := context.Background()
	var queries []string
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			queries = append(queries, query)
			return stubResult{rows: 1}, nil
		},
	}
	store := NewExpenseStore(stubDB{})
	splits := []models.Split{{ExpenseID: "e1", UserID: "u1", AmountMinor: 500}}
	if err := store.ReplaceSplits(ctx, execer, "e1", splits); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 2 || !strings.Contains(queries[0], "DELETE FROM expense_splits") {
		t.Fatalf("replace must delete before reinserting: %#v", queries)
	}
}

func TestExpenseStoreListByGroupAttachesSplits(t *testing.T) {
	ctx := context.Background()
	store := NewExpenseStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if args[0] != "g1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			switch d := dest.(type) {
			case *[]models.Expense:
				*d = []models.Expense{
					{ID: "e1", GroupID: "g1", PayerID: "u1", AmountMinor: 6000},
					{ID: "e2", GroupID: "g1", PayerID: "u2", AmountMinor: 4000},
				}
			case *[]models.Split:
				*d = []models.Split{
					{ExpenseID: "e1", UserID: "u1", AmountMinor: 3000},
					{ExpenseID: "e1", UserID: "u2", AmountMinor: 3000},
					{ExpenseID: "e2", UserID: "u2", AmountMinor: 4000},
				}
			default:
				t.Fatalf("unexpected dest type for query %s", query)
			}
			return nil
		},
	})
	expenses, err := store.ListByGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(expenses))
	}
	if len(expenses[0].Splits) != 2 || len(expenses[1].Splits) != 1 {
		t.Fatalf("splits not attached: %#v", expenses)
	}
}
