package handlers

import (
	"context"

	"roomledger/internal/ledger"
	"roomledger/internal/models"
	"roomledger/internal/services"
	"roomledger/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type GroupService interface {
	CreateGroup(ctx context.Context, actorID, name string) (models.Group, error)
	GetGroup(ctx context.Context, groupID string) (models.Group, error)
	ListGroups(ctx context.Context, userID string) ([]models.Group, error)
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)
	RequireMember(ctx context.Context, groupID, userID string) (models.GroupMember, error)
	AddMember(ctx context.Context, actorID, groupID, userID string) error
	LeaveGroup(ctx context.Context, userID, groupID string) error
	RemoveMember(ctx context.Context, actorID, groupID, userID string) error
	DeleteGroup(ctx context.Context, actorID, groupID string) error
	GroupBalances(ctx context.Context, groupID string) ([]models.Balance, error)
	UserBalance(ctx context.Context, userID, groupID string) (models.Balance, error)
	SuggestSettlements(ctx context.Context, groupID string) ([]models.DebtLine, error)
	UserStats(ctx context.Context, userID, groupID string) (ledger.UserStats, error)
	CanLeaveGroup(ctx context.Context, userID, groupID string) (bool, error)
	CanDeleteGroup(ctx context.Context, groupID string) (bool, error)
}

type ExpenseService interface {
	CreateExpense(ctx context.Context, actorID string, req services.ExpenseRequest) (models.ExpenseWithSplits, error)
	UpdateExpense(ctx context.Context, actorID, expenseID string, req services.ExpenseRequest) (models.ExpenseWithSplits, error)
	DeleteExpense(ctx context.Context, actorID, groupID, expenseID string) error
	ListExpenses(ctx context.Context, groupID string) ([]models.ExpenseWithSplits, error)
}

type SettlementService interface {
	InitiatePayment(ctx context.Context, fromUserID string, req services.InitiatePaymentRequest) (models.Payment, error)
	ConfirmPayment(ctx context.Context, actorID, paymentID string) (models.Payment, error)
	RejectPayment(ctx context.Context, actorID, paymentID string) (models.Payment, error)
	ListPayments(ctx context.Context, groupID string) ([]models.Payment, error)
}
