package handlers

import (
	"roomledger/internal/ledger"
	"roomledger/internal/models"
	"roomledger/internal/money"
)

// Minor-unit fields are excluded from JSON marshalling on the models; every
// amount leaves the API as a two-decimal string instead.

type splitResponse struct {
	models.Split
	Amount string `json:"amount"`
}

type expenseResponse struct {
	models.Expense
	Amount string          `json:"amount"`
	Splits []splitResponse `json:"splits"`
}

func renderExpense(e models.ExpenseWithSplits) expenseResponse {
	resp := expenseResponse{
		Expense: e.Expense,
		Amount:  money.FormatMinor(e.AmountMinor),
		Splits:  make([]splitResponse, 0, len(e.Splits)),
	}
	for _, s := range e.Splits {
		resp.Splits = append(resp.Splits, splitResponse{Split: s, Amount: money.FormatMinor(s.AmountMinor)})
	}
	return resp
}

func renderExpenses(expenses []models.ExpenseWithSplits) []expenseResponse {
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, renderExpense(e))
	}
	return out
}

type paymentResponse struct {
	models.Payment
	Amount string `json:"amount"`
}

func renderPayment(p models.Payment) paymentResponse {
	return paymentResponse{Payment: p, Amount: money.FormatMinor(p.AmountMinor)}
}

func renderPayments(payments []models.Payment) []paymentResponse {
	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, renderPayment(p))
	}
	return out
}

type balanceResponse struct {
	UserID   string `json:"user_id"`
	Paid     string `json:"paid"`
	Share    string `json:"share"`
	Sent     string `json:"sent"`
	Received string `json:"received"`
	Net      string `json:"net"`
}

func renderBalance(b models.Balance) balanceResponse {
	return balanceResponse{
		UserID:   b.UserID,
		Paid:     money.FormatMinor(b.PaidMinor),
		Share:    money.FormatMinor(b.ShareMinor),
		Sent:     money.FormatMinor(b.SentMinor),
		Received: money.FormatMinor(b.ReceivedMinor),
		Net:      money.FormatMinor(b.NetMinor),
	}
}

func renderBalances(balances []models.Balance) []balanceResponse {
	out := make([]balanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, renderBalance(b))
	}
	return out
}

type debtLineResponse struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Amount     string `json:"amount"`
}

func renderDebtLines(lines []models.DebtLine) []debtLineResponse {
	out := make([]debtLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, debtLineResponse{
			FromUserID: l.FromUserID,
			ToUserID:   l.ToUserID,
			Amount:     money.FormatMinor(l.AmountMinor),
		})
	}
	return out
}

type categoryStatResponse struct {
	ledger.CategoryStat
	Share string `json:"share"`
}

type userStatsResponse struct {
	UserID       string                 `json:"user_id"`
	Share        string                 `json:"share"`
	ExpenseCount int                    `json:"expense_count"`
	Categories   []categoryStatResponse `json:"categories"`
	Monthly      map[string]string      `json:"monthly_share"`
}

func renderUserStats(stats ledger.UserStats) userStatsResponse {
	resp := userStatsResponse{
		UserID:       stats.UserID,
		Share:        money.FormatMinor(stats.ShareMinor),
		ExpenseCount: stats.ExpenseCount,
		Categories:   make([]categoryStatResponse, 0, len(stats.Categories)),
		Monthly:      make(map[string]string, len(stats.MonthShareMinor)),
	}
	for _, c := range stats.Categories {
		resp.Categories = append(resp.Categories, categoryStatResponse{CategoryStat: c, Share: money.FormatMinor(c.ShareMinor)})
	}
	for month, minor := range stats.MonthShareMinor {
		resp.Monthly[month] = money.FormatMinor(minor)
	}
	return resp
}
