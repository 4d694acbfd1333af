package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

// CreateGroup persists a new group with its creator as the first member and manager.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group, creatorID string) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, unique_name, display_name, policy, manager_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		group.ID, group.UniqueName, group.DisplayName, group.Policy, nullString(group.ManagerID), group.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("group %w: %s", storage.ErrAlreadyExists, group.UniqueName)
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	role := models.GroupRole{GroupID: group.ID, UserID: creatorID, IsManager: true, Title: models.TitleManager}
	if err := addMember(ctx, tx, role, group.CreatedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const groupColumns = "id, unique_name, display_name, policy, manager_id, created_at"

func scanGroup(row interface{ Scan(...any) error }) (*models.Group, error) {
	group := &models.Group{}
	var managerID sql.NullString
	if err := row.Scan(&group.ID, &group.UniqueName, &group.DisplayName, &group.Policy, &managerID, &group.CreatedAt); err != nil {
		return nil, err
	}
	group.ManagerID = managerID.String
	return group, nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return getGroup(ctx, s.db, "id", groupID)
}

// GetGroupByUniqueName retrieves a group by the handle users join it with.
func (s *SQLiteStore) GetGroupByUniqueName(ctx context.Context, uniqueName string) (*models.Group, error) {
	return getGroup(ctx, s.db, "unique_name", uniqueName)
}

func getGroup(ctx context.Context, q queryer, column, value string) (*models.Group, error) {
	row := q.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM groups WHERE "+column+" = ?", value)
	group, err := scanGroup(row)
	if isNoRows(err) {
		return nil, notFound("group", value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// ListGroupsByUser retrieves every group the user is a member of, in join order.
func (s *SQLiteStore) ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.unique_name, g.display_name, g.policy, g.manager_id, g.created_at
		 FROM groups g JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = ? ORDER BY gm.rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, nil
}

// DeleteGroup removes a group. Members, roles, entries and requests cascade.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return requireAffected(res, "group", groupID)
}

// AddMember adds a user to a group with the given role.
func (s *SQLiteStore) AddMember(ctx context.Context, role models.GroupRole) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := addMember(ctx, tx, role, time.Now().Unix()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func addMember(ctx context.Context, q queryer, role models.GroupRole, joinedAt int64) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
		role.GroupID, role.UserID, joinedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("membership %w: %s", storage.ErrAlreadyExists, role.UserID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert group member: %w", err)
	}
	return upsertRole(ctx, q, role)
}

// RemoveMember drops a user's membership and role. Their ledger entries stay.
func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM group_members WHERE group_id = ? AND user_id = ?", groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete group member: %w", err)
	}
	if err := requireAffected(res, "member", userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM group_roles WHERE group_id = ? AND user_id = ?", groupID, userID); err != nil {
		return fmt.Errorf("failed to delete group role: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsMember reports whether the user belongs to the group.
func (s *SQLiteStore) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?", groupID, userID,
	).Scan(&exists)
	if isNoRows(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

// ListMembers returns the members of a group in join order.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	return listMembers(ctx, s.db, groupID)
}

func listMembers(ctx context.Context, q queryer, groupID string) ([]models.GroupMember, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT gm.group_id, gm.user_id, u.username, gm.joined_at
		 FROM group_members gm JOIN users u ON u.id = gm.user_id
		 WHERE gm.group_id = ? ORDER BY gm.rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Username, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// UpsertRole creates or replaces a member's role.
func (s *SQLiteStore) UpsertRole(ctx context.Context, role models.GroupRole) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", role.GroupID).Scan(&exists)
	if isNoRows(err) {
		return notFound("group", role.GroupID)
	}
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}
	return upsertRole(ctx, s.db, role)
}

func upsertRole(ctx context.Context, q queryer, role models.GroupRole) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO group_roles (group_id, user_id, is_manager, title) VALUES (?, ?, ?, ?)
		 ON CONFLICT (group_id, user_id) DO UPDATE SET is_manager = excluded.is_manager, title = excluded.title`,
		role.GroupID, role.UserID, role.IsManager, role.Title,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert group role: %w", err)
	}
	return nil
}

// GetRole returns the stored role of a member.
func (s *SQLiteStore) GetRole(ctx context.Context, groupID, userID string) (*models.GroupRole, error) {
	r := &models.GroupRole{}
	err := s.db.QueryRowContext(ctx,
		"SELECT group_id, user_id, is_manager, title FROM group_roles WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	).Scan(&r.GroupID, &r.UserID, &r.IsManager, &r.Title)
	if isNoRows(err) {
		return nil, notFound("role", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return r, nil
}

func listRoles(ctx context.Context, q queryer, groupID string) ([]models.GroupRole, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT group_id, user_id, is_manager, title FROM group_roles WHERE group_id = ? ORDER BY rowid",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []models.GroupRole
	for rows.Next() {
		var r models.GroupRole
		if err := rows.Scan(&r.GroupID, &r.UserID, &r.IsManager, &r.Title); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roles: %w", err)
	}
	return roles, nil
}

// nullString stores empty strings as NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
