// Package ledger derives member balances and suggested transfers from a
// group's expenses, splits and settlement payments. All functions are pure;
// callers fetch a fresh snapshot from storage per invocation.
package ledger

import (
	"sort"

	"roomledger/internal/models"
)

// Aggregate computes each member's net position from expenses-with-splits
// and payments.
//
// A member's share of an expense comes only from their persisted split row.
// Group size is never used as a fallback: if an expense predates a member
// joining, no split row exists for them and the expense contributes nothing
// to their totals on either side.
//
// Only counted payments (completed or confirmed) move balances. Sending a
// settlement payment raises the sender's net position, receiving one lowers
// the receiver's.
//
// The result contains every member with any activity, sorted by net balance
// descending (ties broken by user ID so output is deterministic). Members
// with zero activity do not appear.
func Aggregate(expenses []models.ExpenseWithSplits, payments []models.Payment) []models.Balance {
	totals := make(map[string]*models.Balance)
	at := func(userID string) *models.Balance {
		b, ok := totals[userID]
		if !ok {
			b = &models.Balance{UserID: userID}
			totals[userID] = b
		}
		return b
	}

	for _, expense := range expenses {
		at(expense.PayerID).PaidMinor += expense.AmountMinor
		for _, s := range expense.Splits {
			at(s.UserID).ShareMinor += s.AmountMinor
		}
	}
	for _, payment := range payments {
		if !payment.Counted() {
			continue
		}
		at(payment.FromUserID).SentMinor += payment.AmountMinor
		at(payment.ToUserID).ReceivedMinor += payment.AmountMinor
	}

	balances := make([]models.Balance, 0, len(totals))
	for _, b := range totals {
		b.NetMinor = b.PaidMinor - b.ShareMinor + b.SentMinor - b.ReceivedMinor
		balances = append(balances, *b)
	}
	sort.Slice(balances, func(i, j int) bool {
		if balances[i].NetMinor != balances[j].NetMinor {
			return balances[i].NetMinor > balances[j].NetMinor
		}
		return balances[i].UserID < balances[j].UserID
	})
	return balances
}

// BalanceFor pulls one member's balance out of an Aggregate result,
// returning a zero-valued balance if the member had no activity.
func BalanceFor(balances []models.Balance, userID string) models.Balance {
	for _, b := range balances {
		if b.UserID == userID {
			return b
		}
	}
	return models.Balance{UserID: userID}
}

// Settled reports whether every balance is exactly zero. Amounts are integer
// minor units, so there is no floating-point noise to tolerate.
func Settled(balances []models.Balance) bool {
	for _, b := range balances {
		if b.NetMinor != 0 {
			return false
		}
	}
	return true
}
