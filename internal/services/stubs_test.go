package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"roomledger/internal/models"
	"roomledger/internal/store"
	"roomledger/internal/websocket"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubGroupStore struct {
	createFn       func(ctx context.Context, tx store.Execer, id, name, createdBy string) error
	getFn          func(ctx context.Context, groupID string) (models.Group, error)
	listByUserFn   func(ctx context.Context, userID string) ([]models.Group, error)
	deleteFn       func(ctx context.Context, tx store.Execer, groupID string) error
	addMemberFn    func(ctx context.Context, tx store.Execer, groupID, userID, role string) error
	removeMemberFn func(ctx context.Context, tx store.Execer, groupID, userID string) error
	listMembersFn  func(ctx context.Context, groupID string) ([]models.GroupMember, error)
	getMemberFn    func(ctx context.Context, groupID, userID string) (models.GroupMember, error)
}

func (s stubGroupStore) Create(ctx context.Context, tx store.Execer, id, name, createdBy string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, name, createdBy)
}

func (s stubGroupStore) Get(ctx context.Context, groupID string) (models.Group, error) {
	if s.getFn == nil {
		return models.Group{ID: groupID}, nil
	}
	return s.getFn(ctx, groupID)
}

func (s stubGroupStore) ListByUser(ctx context.Context, userID string) ([]models.Group, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

func (s stubGroupStore) Delete(ctx context.Context, tx store.Execer, groupID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, groupID)
}

func (s stubGroupStore) AddMember(ctx context.Context, tx store.Execer, groupID, userID, role string) error {
	if s.addMemberFn == nil {
		return nil
	}
	return s.addMemberFn(ctx, tx, groupID, userID, role)
}

func (s stubGroupStore) RemoveMember(ctx context.Context, tx store.Execer, groupID, userID string) error {
	if s.removeMemberFn == nil {
		return nil
	}
	return s.removeMemberFn(ctx, tx, groupID, userID)
}

func (s stubGroupStore) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	if s.listMembersFn == nil {
		return nil, nil
	}
	return s.listMembersFn(ctx, groupID)
}

func (s stubGroupStore) GetMember(ctx context.Context, groupID, userID string) (models.GroupMember, error) {
	if s.getMemberFn == nil {
		return models.GroupMember{GroupID: groupID, UserID: userID, Role: models.RoleMember}, nil
	}
	return s.getMemberFn(ctx, groupID, userID)
}

type stubExpenseStore struct {
	insertFn      func(ctx context.Context, tx store.Execer, expense models.Expense, splits []models.Split) error
	updateFn      func(ctx context.Context, tx store.Execer, expense models.Expense, splits []models.Split) error
	deleteFn      func(ctx context.Context, tx store.Execer, expenseID string) error
	getFn         func(ctx context.Context, expenseID string) (models.Expense, error)
	listByGroupFn func(ctx context.Context, groupID string) ([]models.ExpenseWithSplits, error)
}

func (s stubExpenseStore) InsertWithSplits(ctx context.Context, tx store.Execer, expense models.Expense, splits []models.Split) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, tx, expense, splits)
}

func (s stubExpenseStore) Update(ctx context.Context, tx store.Execer, expense models.Expense, splits []models.Split) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, expense, splits)
}

func (s stubExpenseStore) Delete(ctx context.Context, tx store.Execer, expenseID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, expenseID)
}

func (s stubExpenseStore) Get(ctx context.Context, expenseID string) (models.Expense, error) {
	if s.getFn == nil {
		return models.Expense{}, sql.ErrNoRows
	}
	return s.getFn(ctx, expenseID)
}

func (s stubExpenseStore) ListByGroup(ctx context.Context, groupID string) ([]models.ExpenseWithSplits, error) {
	if s.listByGroupFn == nil {
		return nil, nil
	}
	return s.listByGroupFn(ctx, groupID)
}

type stubPaymentStore struct {
	createFn       func(ctx context.Context, tx store.Execer, payment models.Payment) error
	getFn          func(ctx context.Context, paymentID string) (models.Payment, error)
	getForUpdateFn func(ctx context.Context, tx store.Getter, paymentID string) (models.Payment, error)
	updateStatusFn func(ctx context.Context, tx store.Execer, paymentID, status string, confirmedAt *time.Time) error
	listByGroupFn  func(ctx context.Context, groupID string) ([]models.Payment, error)
}

func (s stubPaymentStore) Create(ctx context.Context, tx store.Execer, payment models.Payment) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, payment)
}

func (s stubPaymentStore) Get(ctx context.Context, paymentID string) (models.Payment, error) {
	if s.getFn == nil {
		return models.Payment{}, sql.ErrNoRows
	}
	return s.getFn(ctx, paymentID)
}

func (s stubPaymentStore) GetForUpdate(ctx context.Context, tx store.Getter, paymentID string) (models.Payment, error) {
	if s.getForUpdateFn == nil {
		return models.Payment{}, sql.ErrNoRows
	}
	return s.getForUpdateFn(ctx, tx, paymentID)
}

func (s stubPaymentStore) UpdateStatus(ctx context.Context, tx store.Execer, paymentID, status string, confirmedAt *time.Time) error {
	if s.updateStatusFn == nil {
		return nil
	}
	return s.updateStatusFn(ctx, tx, paymentID, status, confirmedAt)
}

func (s stubPaymentStore) ListByGroup(ctx context.Context, groupID string) ([]models.Payment, error) {
	if s.listByGroupFn == nil {
		return nil, nil
	}
	return s.listByGroupFn(ctx, groupID)
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

type stubBalanceReader struct {
	groupBalancesFn func(ctx context.Context, groupID string) ([]models.Balance, error)
	requireMemberFn func(ctx context.Context, groupID, userID string) (models.GroupMember, error)
	listMembersFn   func(ctx context.Context, groupID string) ([]models.GroupMember, error)
}

func (s stubBalanceReader) GroupBalances(ctx context.Context, groupID string) ([]models.Balance, error) {
	if s.groupBalancesFn == nil {
		return nil, nil
	}
	return s.groupBalancesFn(ctx, groupID)
}

func (s stubBalanceReader) RequireMember(ctx context.Context, groupID, userID string) (models.GroupMember, error) {
	if s.requireMemberFn == nil {
		return models.GroupMember{GroupID: groupID, UserID: userID}, nil
	}
	return s.requireMemberFn(ctx, groupID, userID)
}

func (s stubBalanceReader) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	if s.listMembersFn == nil {
		return nil, nil
	}
	return s.listMembersFn(ctx, groupID)
}

type stubHub struct {
	notices map[string][]websocket.Notice
}

func newStubHub() *stubHub {
	return &stubHub{notices: make(map[string][]websocket.Notice)}
}

func (s *stubHub) Notify(userID string, notice websocket.Notice) {
	s.notices[userID] = append(s.notices[userID], notice)
}

func (s *stubHub) NotifyAll(userIDs []string, notice websocket.Notice) {
	for _, userID := range userIDs {
		s.Notify(userID, notice)
	}
}
