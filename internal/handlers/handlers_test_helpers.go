package handlers

import (
	"context"
	"time"

	"roomledger/internal/config"
	"roomledger/internal/db"
	"roomledger/internal/ledger"
	"roomledger/internal/models"
	"roomledger/internal/services"
	"roomledger/internal/store"
	"roomledger/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn        func(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	getByEmailFn    func(ctx context.Context, email string) (models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (models.User, error)
	getByIDFn       func(ctx context.Context, userID string) (models.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, passwordHash)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	if s.getByUsernameFn == nil {
		return models.User{}, nil
	}
	return s.getByUsernameFn(ctx, username)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubGroupService struct {
	createGroupFn        func(ctx context.Context, actorID, name string) (models.Group, error)
	getGroupFn           func(ctx context.Context, groupID string) (models.Group, error)
	listGroupsFn         func(ctx context.Context, userID string) ([]models.Group, error)
	listMembersFn        func(ctx context.Context, groupID string) ([]models.GroupMember, error)
	requireMemberFn      func(ctx context.Context, groupID, userID string) (models.GroupMember, error)
	addMemberFn          func(ctx context.Context, actorID, groupID, userID string) error
	leaveGroupFn         func(ctx context.Context, userID, groupID string) error
	removeMemberFn       func(ctx context.Context, actorID, groupID, userID string) error
	deleteGroupFn        func(ctx context.Context, actorID, groupID string) error
	groupBalancesFn      func(ctx context.Context, groupID string) ([]models.Balance, error)
	userBalanceFn        func(ctx context.Context, userID, groupID string) (models.Balance, error)
	suggestSettlementsFn func(ctx context.Context, groupID string) ([]models.DebtLine, error)
	userStatsFn          func(ctx context.Context, userID, groupID string) (ledger.UserStats, error)
	canLeaveGroupFn      func(ctx context.Context, userID, groupID string) (bool, error)
	canDeleteGroupFn     func(ctx context.Context, groupID string) (bool, error)
}

func (s stubGroupService) CreateGroup(ctx context.Context, actorID, name string) (models.Group, error) {
	if s.createGroupFn == nil {
		return models.Group{}, nil
	}
	return s.createGroupFn(ctx, actorID, name)
}

func (s stubGroupService) GetGroup(ctx context.Context, groupID string) (models.Group, error) {
	if s.getGroupFn == nil {
		return models.Group{}, nil
	}
	return s.getGroupFn(ctx, groupID)
}

func (s stubGroupService) ListGroups(ctx context.Context, userID string) ([]models.Group, error) {
	if s.listGroupsFn == nil {
		return nil, nil
	}
	return s.listGroupsFn(ctx, userID)
}

func (s stubGroupService) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	if s.listMembersFn == nil {
		return nil, nil
	}
	return s.listMembersFn(ctx, groupID)
}

func (s stubGroupService) RequireMember(ctx context.Context, groupID, userID string) (models.GroupMember, error) {
	if s.requireMemberFn == nil {
		return models.GroupMember{GroupID: groupID, UserID: userID, Role: models.RoleMember}, nil
	}
	return s.requireMemberFn(ctx, groupID, userID)
}

func (s stubGroupService) AddMember(ctx context.Context, actorID, groupID, userID string) error {
	if s.addMemberFn == nil {
		return nil
	}
	return s.addMemberFn(ctx, actorID, groupID, userID)
}

func (s stubGroupService) LeaveGroup(ctx context.Context, userID, groupID string) error {
	if s.leaveGroupFn == nil {
		return nil
	}
	return s.leaveGroupFn(ctx, userID, groupID)
}

func (s stubGroupService) RemoveMember(ctx context.Context, actorID, groupID, userID string) error {
	if s.removeMemberFn == nil {
		return nil
	}
	return s.removeMemberFn(ctx, actorID, groupID, userID)
}

func (s stubGroupService) DeleteGroup(ctx context.Context, actorID, groupID string) error {
	if s.deleteGroupFn == nil {
		return nil
	}
	return s.deleteGroupFn(ctx, actorID, groupID)
}

func (s stubGroupService) GroupBalances(ctx context.Context, groupID string) ([]models.Balance, error) {
	if s.groupBalancesFn == nil {
		return nil, nil
	}
	return s.groupBalancesFn(ctx, groupID)
}

func (s stubGroupService) UserBalance(ctx context.Context, userID, groupID string) (models.Balance, error) {
	if s.userBalanceFn == nil {
		return models.Balance{UserID: userID}, nil
	}
	return s.userBalanceFn(ctx, userID, groupID)
}

func (s stubGroupService) SuggestSettlements(ctx context.Context, groupID string) ([]models.DebtLine, error) {
	if s.suggestSettlementsFn == nil {
		return nil, nil
	}
	return s.suggestSettlementsFn(ctx, groupID)
}

func (s stubGroupService) UserStats(ctx context.Context, userID, groupID string) (ledger.UserStats, error) {
	if s.userStatsFn == nil {
		return ledger.UserStats{UserID: userID}, nil
	}
	return s.userStatsFn(ctx, userID, groupID)
}

func (s stubGroupService) CanLeaveGroup(ctx context.Context, userID, groupID string) (bool, error) {
	if s.canLeaveGroupFn == nil {
		return true, nil
	}
	return s.canLeaveGroupFn(ctx, userID, groupID)
}

func (s stubGroupService) CanDeleteGroup(ctx context.Context, groupID string) (bool, error) {
	if s.canDeleteGroupFn == nil {
		return true, nil
	}
	return s.canDeleteGroupFn(ctx, groupID)
}

type stubExpenseService struct {
	createExpenseFn func(ctx context.Context, actorID string, req services.ExpenseRequest) (models.ExpenseWithSplits, error)
	updateExpenseFn func(ctx context.Context, actorID, expenseID string, req services.ExpenseRequest) (models.ExpenseWithSplits, error)
	deleteExpenseFn func(ctx context.Context, actorID, groupID, expenseID string) error
	listExpensesFn  func(ctx context.Context, groupID string) ([]models.ExpenseWithSplits, error)
}

func (s stubExpenseService) CreateExpense(ctx context.Context, actorID string, req services.ExpenseRequest) (models.ExpenseWithSplits, error) {
	if s.createExpenseFn == nil {
		return models.ExpenseWithSplits{}, nil
	}
	return s.createExpenseFn(ctx, actorID, req)
}

func (s stubExpenseService) UpdateExpense(ctx context.Context, actorID, expenseID string, req services.ExpenseRequest) (models.ExpenseWithSplits, error) {
	if s.updateExpenseFn == nil {
		return models.ExpenseWithSplits{}, nil
	}
	return s.updateExpenseFn(ctx, actorID, expenseID, req)
}

func (s stubExpenseService) DeleteExpense(ctx context.Context, actorID, groupID, expenseID string) error {
	if s.deleteExpenseFn == nil {
		return nil
	}
	return s.deleteExpenseFn(ctx, actorID, groupID, expenseID)
}

func (s stubExpenseService) ListExpenses(ctx context.Context, groupID string) ([]models.ExpenseWithSplits, error) {
	if s.listExpensesFn == nil {
		return nil, nil
	}
	return s.listExpensesFn(ctx, groupID)
}

type stubSettlementService struct {
	initiateFn func(ctx context.Context, fromUserID string, req services.InitiatePaymentRequest) (models.Payment, error)
	confirmFn  func(ctx context.Context, actorID, paymentID string) (models.Payment, error)
	rejectFn   func(ctx context.Context, actorID, paymentID string) (models.Payment, error)
	listFn     func(ctx context.Context, groupID string) ([]models.Payment, error)
}

func (s stubSettlementService) InitiatePayment(ctx context.Context, fromUserID string, req services.InitiatePaymentRequest) (models.Payment, error) {
	if s.initiateFn == nil {
		return models.Payment{}, nil
	}
	return s.initiateFn(ctx, fromUserID, req)
}

func (s stubSettlementService) ConfirmPayment(ctx context.Context, actorID, paymentID string) (models.Payment, error) {
	if s.confirmFn == nil {
		return models.Payment{}, nil
	}
	return s.confirmFn(ctx, actorID, paymentID)
}

func (s stubSettlementService) RejectPayment(ctx context.Context, actorID, paymentID string) (models.Payment, error) {
	if s.rejectFn == nil {
		return models.Payment{}, nil
	}
	return s.rejectFn(ctx, actorID, paymentID)
}

func (s stubSettlementService) ListPayments(ctx context.Context, groupID string) ([]models.Payment, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, groupID)
}

func newTestHandler(txRunner db.TxRunner, users UserStore, audit AuditStore, groups GroupService, expenses ExpenseService, settlements SettlementService) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	return New(txRunner, cfg, users, audit, groups, expenses, settlements, websocket.NewHub())
}
