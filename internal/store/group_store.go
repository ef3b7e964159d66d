package store

import (
	"context"

	"roomledger/internal/models"
)

type GroupStore struct {
	db DB
}

func NewGroupStore(db DB) *GroupStore {
	return &GroupStore{db: db}
}

func (s *GroupStore) Create(ctx context.Context, tx Execer, id, name, createdBy string) error {
	query := `
		INSERT INTO groups (id, name, created_by)
		VALUES ($1, $2, $3)
	`
	_, err := tx.ExecContext(ctx, query, id, name, createdBy)
	return err
}

func (s *GroupStore) Get(ctx context.Context, groupID string) (models.Group, error) {
	var row models.Group
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, created_by, created_at
		FROM groups
		WHERE id = $1
	`, groupID)
	return row, err
}

func (s *GroupStore) ListByUser(ctx context.Context, userID string) ([]models.Group, error) {
	var rows []models.Group
	err := s.db.SelectContext(ctx, &rows, `
		SELECT g.id, g.name, g.created_by, g.created_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GroupStore) Delete(ctx context.Context, tx Execer, groupID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, groupID)
	return err
}

func (s *GroupStore) AddMember(ctx context.Context, tx Execer, groupID, userID, role string) error {
	query := `
		INSERT INTO group_members (group_id, user_id, role)
		VALUES ($1, $2, $3)
	`
	_, err := tx.ExecContext(ctx, query, groupID, userID, role)
	return err
}

func (s *GroupStore) RemoveMember(ctx context.Context, tx Execer, groupID, userID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	return err
}

func (s *GroupStore) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	var rows []models.GroupMember
	err := s.db.SelectContext(ctx, &rows, `
		SELECT group_id, user_id, role, joined_at
		FROM group_members
		WHERE group_id = $1
		ORDER BY joined_at
	`, groupID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GroupStore) GetMember(ctx context.Context, groupID, userID string) (models.GroupMember, error) {
	var row models.GroupMember
	err := s.db.GetContext(ctx, &row, `
		SELECT group_id, user_id, role, joined_at
		FROM group_members
		WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	return row, err
}
