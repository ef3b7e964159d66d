package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"roomledger/internal/models"
)

// CategoryStat is one category's slice of a member's spending.
type CategoryStat struct {
	Category   string `json:"category"`
	ShareMinor int64  `json:"-"`
	// Percent of the member's total share, rounded to one decimal place.
	Percent decimal.Decimal `json:"percent"`
}

// UserStats summarises one member's spending for the personal dashboard.
type UserStats struct {
	UserID          string         `json:"user_id"`
	ShareMinor      int64          `json:"-"`
	ExpenseCount    int            `json:"expense_count"`
	Categories      []CategoryStat `json:"categories"`
	MonthShareMinor map[string]int64
}

// ComputeUserStats attributes expense shares to one member, by category and
// by calendar month (keys "2006-01"). Attribution follows the same rule as
// the balance computation: split rows only, so expenses the member has no
// split for contribute nothing.
func ComputeUserStats(expenses []models.ExpenseWithSplits, userID string) UserStats {
	stats := UserStats{
		UserID:          userID,
		MonthShareMinor: make(map[string]int64),
	}
	byCategory := make(map[string]int64)
	for _, expense := range expenses {
		for _, s := range expense.Splits {
			if s.UserID != userID {
				continue
			}
			stats.ShareMinor += s.AmountMinor
			stats.ExpenseCount++
			byCategory[expense.Category] += s.AmountMinor
			stats.MonthShareMinor[expense.SpentAt.Format("2006-01")] += s.AmountMinor
		}
	}
	if stats.ShareMinor > 0 {
		total := decimal.NewFromInt(stats.ShareMinor)
		hundred := decimal.NewFromInt(100)
		for category, share := range byCategory {
			stats.Categories = append(stats.Categories, CategoryStat{
				Category:   category,
				ShareMinor: share,
				Percent:    decimal.NewFromInt(share).Mul(hundred).Div(total).Round(1),
			})
		}
		sort.Slice(stats.Categories, func(i, j int) bool {
			if stats.Categories[i].ShareMinor != stats.Categories[j].ShareMinor {
				return stats.Categories[i].ShareMinor > stats.Categories[j].ShareMinor
			}
			return stats.Categories[i].Category < stats.Categories[j].Category
		})
	}
	return stats
}
