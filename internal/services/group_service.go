package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"roomledger/internal/db"
	"roomledger/internal/ledger"
	"roomledger/internal/models"
	"roomledger/internal/money"
	"roomledger/internal/store"
)

type GroupStore interface {
	Create(ctx context.Context, tx store.Execer, id, name, createdBy string) error
	Get(ctx context.Context, groupID string) (models.Group, error)
	ListByUser(ctx context.Context, userID string) ([]models.Group, error)
	Delete(ctx context.Context, tx store.Execer, groupID string) error
	AddMember(ctx context.Context, tx store.Execer, groupID, userID, role string) error
	RemoveMember(ctx context.Context, tx store.Execer, groupID, userID string) error
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)
	GetMember(ctx context.Context, groupID, userID string) (models.GroupMember, error)
}

type ExpenseLister interface {
	ListByGroup(ctx context.Context, groupID string) ([]models.ExpenseWithSplits, error)
}

type PaymentLister interface {
	ListByGroup(ctx context.Context, groupID string) ([]models.Payment, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

// GroupService owns group lifecycle and is the single place balances are
// computed. Dashboard and settlement screens both go through it, so the two
// can never disagree on the math.
type GroupService struct {
	txRunner db.TxRunner
	groups   GroupStore
	expenses ExpenseLister
	payments PaymentLister
	audit    AuditStore
}

func NewGroupService(txRunner db.TxRunner, groups GroupStore, expenses ExpenseLister, payments PaymentLister, audit AuditStore) *GroupService {
	return &GroupService{
		txRunner: txRunner,
		groups:   groups,
		expenses: expenses,
		payments: payments,
		audit:    audit,
	}
}

func (s *GroupService) CreateGroup(ctx context.Context, actorID, name string) (models.Group, error) {
	groupID := uuid.NewString()
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.groups.Create(ctx, tx, groupID, name, actorID); err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		if err := s.groups.AddMember(ctx, tx, groupID, actorID, models.RoleAdmin); err != nil {
			return fmt.Errorf("add group creator: %w", err)
		}
		data, _ := json.Marshal(map[string]string{"name": name})
		return s.audit.Log(ctx, tx, actorID, "group_create", "group", groupID, string(data))
	})
	if err != nil {
		return models.Group{}, err
	}
	return s.groups.Get(ctx, groupID)
}

func (s *GroupService) GetGroup(ctx context.Context, groupID string) (models.Group, error) {
	group, err := s.groups.Get(ctx, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrGroupNotFound
	}
	if err != nil {
		return models.Group{}, fmt.Errorf("fetch group %s: %w", groupID, err)
	}
	return group, nil
}

func (s *GroupService) ListGroups(ctx context.Context, userID string) ([]models.Group, error) {
	groups, err := s.groups.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups for user %s: %w", userID, err)
	}
	return groups, nil
}

func (s *GroupService) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members of group %s: %w", groupID, err)
	}
	return members, nil
}

// RequireMember loads the caller's membership row, mapping a missing row to
// ErrNotGroupMember.
func (s *GroupService) RequireMember(ctx context.Context, groupID, userID string) (models.GroupMember, error) {
	member, err := s.groups.GetMember(ctx, groupID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupMember{}, ErrNotGroupMember
	}
	if err != nil {
		return models.GroupMember{}, fmt.Errorf("check membership of %s in group %s: %w", userID, groupID, err)
	}
	return member, nil
}

// AddMember lets any existing member bring in a new roommate. Joining never
// creates liability for expenses recorded earlier: no split rows are
// backfilled, so past expenses contribute zero to the new member.
func (s *GroupService) AddMember(ctx context.Context, actorID, groupID, userID string) error {
	if _, err := s.RequireMember(ctx, groupID, actorID); err != nil {
		return err
	}
	if _, err := s.groups.GetMember(ctx, groupID, userID); err == nil {
		return ErrAlreadyMember
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check membership of %s in group %s: %w", userID, groupID, err)
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.groups.AddMember(ctx, tx, groupID, userID, models.RoleMember); err != nil {
			return fmt.Errorf("add member %s to group %s: %w", userID, groupID, err)
		}
		data, _ := json.Marshal(map[string]string{"user_id": userID})
		return s.audit.Log(ctx, tx, actorID, "member_add", "group", groupID, string(data))
	})
}

// GroupBalances recomputes every member's net position from a fresh
// snapshot. Nothing is cached between calls; the store is the single source
// of truth.
func (s *GroupService) GroupBalances(ctx context.Context, groupID string) ([]models.Balance, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("fetch expenses for group %s: %w", groupID, err)
	}
	payments, err := s.payments.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("fetch payments for group %s: %w", groupID, err)
	}
	return ledger.Aggregate(expenses, payments), nil
}

// UserBalance is the single-member filter of GroupBalances. A member with no
// activity gets a zero balance rather than an error.
func (s *GroupService) UserBalance(ctx context.Context, userID, groupID string) (models.Balance, error) {
	balances, err := s.GroupBalances(ctx, groupID)
	if err != nil {
		return models.Balance{}, err
	}
	return ledger.BalanceFor(balances, userID), nil
}

// SuggestSettlements turns current balances into suggested transfers. Purely
// advisory; nothing is written.
func (s *GroupService) SuggestSettlements(ctx context.Context, groupID string) ([]models.DebtLine, error) {
	balances, err := s.GroupBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return ledger.MinimizeTransfers(balances), nil
}

func (s *GroupService) UserStats(ctx context.Context, userID, groupID string) (ledger.UserStats, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return ledger.UserStats{}, err
	}
	expenses, err := s.expenses.ListByGroup(ctx, groupID)
	if err != nil {
		return ledger.UserStats{}, fmt.Errorf("fetch expenses for group %s: %w", groupID, err)
	}
	return ledger.ComputeUserStats(expenses, userID), nil
}

// CanLeaveGroup reports whether the member's balance is settled. Leaving,
// removal and group deletion all hang off this check.
func (s *GroupService) CanLeaveGroup(ctx context.Context, userID, groupID string) (bool, error) {
	balance, err := s.UserBalance(ctx, userID, groupID)
	if err != nil {
		return false, err
	}
	return balance.NetMinor == 0, nil
}

func (s *GroupService) CanRemoveMember(ctx context.Context, userID, groupID string) (bool, error) {
	return s.CanLeaveGroup(ctx, userID, groupID)
}

// CanDeleteGroup requires every member to be settled.
func (s *GroupService) CanDeleteGroup(ctx context.Context, groupID string) (bool, error) {
	balances, err := s.GroupBalances(ctx, groupID)
	if err != nil {
		return false, err
	}
	return ledger.Settled(balances), nil
}

func (s *GroupService) LeaveGroup(ctx context.Context, userID, groupID string) error {
	if _, err := s.RequireMember(ctx, groupID, userID); err != nil {
		return err
	}
	return s.removeSettledMember(ctx, userID, userID, groupID, "member_leave")
}

// RemoveMember ejects a settled member. Admin only.
func (s *GroupService) RemoveMember(ctx context.Context, actorID, groupID, userID string) error {
	actor, err := s.RequireMember(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleAdmin {
		return ErrNotGroupAdmin
	}
	if _, err := s.RequireMember(ctx, groupID, userID); err != nil {
		return err
	}
	return s.removeSettledMember(ctx, actorID, userID, groupID, "member_remove")
}

func (s *GroupService) removeSettledMember(ctx context.Context, actorID, userID, groupID, action string) error {
	balance, err := s.UserBalance(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if balance.NetMinor != 0 {
		return fmt.Errorf("%w: %s", ErrOutstandingBalance, money.FormatMinor(balance.NetMinor))
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.groups.RemoveMember(ctx, tx, groupID, userID); err != nil {
			return fmt.Errorf("remove member %s from group %s: %w", userID, groupID, err)
		}
		data, _ := json.Marshal(map[string]string{"user_id": userID})
		return s.audit.Log(ctx, tx, actorID, action, "group", groupID, string(data))
	})
}

// DeleteGroup tears down a fully settled group. Admin only.
func (s *GroupService) DeleteGroup(ctx context.Context, actorID, groupID string) error {
	actor, err := s.RequireMember(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleAdmin {
		return ErrNotGroupAdmin
	}
	balances, err := s.GroupBalances(ctx, groupID)
	if err != nil {
		return err
	}
	for _, b := range balances {
		if b.NetMinor != 0 {
			return fmt.Errorf("%w: %s is at %s", ErrOutstandingBalance, b.UserID, money.FormatMinor(b.NetMinor))
		}
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.groups.Delete(ctx, tx, groupID); err != nil {
			return fmt.Errorf("delete group %s: %w", groupID, err)
		}
		return s.audit.Log(ctx, tx, actorID, "group_delete", "group", groupID, "{}")
	})
}
