package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/hisab/internal/ledger"
)

// Snapshot reads a group and all of its ledger rows inside one transaction.
func (s *SQLiteStore) Snapshot(ctx context.Context, groupID string) (ledger.GroupSnapshot, error) {
	var snap ledger.GroupSnapshot

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return snap, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	group, err := getGroup(ctx, tx, "id", groupID)
	if err != nil {
		return snap, err
	}
	snap.GroupID = group.ID
	snap.Policy = group.Policy
	snap.ManagerID = group.ManagerID

	members, err := listMembers(ctx, tx, groupID)
	if err != nil {
		return snap, err
	}
	for _, m := range members {
		snap.Members = append(snap.Members, ledger.Member{ID: m.UserID, Name: m.Username})
	}

	roles, err := listRoles(ctx, tx, groupID)
	if err != nil {
		return snap, err
	}
	for _, r := range roles {
		snap.Roles = append(snap.Roles, ledger.RoleAssignment(r))
	}

	expenses, err := listExpenses(ctx, tx, groupID)
	if err != nil {
		return snap, err
	}
	for _, e := range expenses {
		snap.Expenses = append(snap.Expenses, ledger.Expense(e))
	}

	meals, err := listMeals(ctx, tx, groupID)
	if err != nil {
		return snap, err
	}
	for _, m := range meals {
		snap.Meals = append(snap.Meals, ledger.Meal(m))
	}

	funds, err := listFunds(ctx, tx, groupID)
	if err != nil {
		return snap, err
	}
	for _, f := range funds {
		snap.Funds = append(snap.Funds, ledger.Fund(f))
	}

	if err := tx.Commit(); err != nil {
		return snap, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return snap, nil
}
