package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/hisab/internal/models"
)

const cashColumns = "id, user_id, name, owed_to_me, owed_to_them"

func scanCash(row interface{ Scan(...any) error }) (*models.CashEntry, error) {
	c := &models.CashEntry{}
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.OwedToMe, &c.OwedToThem); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCash returns the user's cash entries in creation order.
func (s *SQLiteStore) ListCash(ctx context.Context, userID string) ([]*models.CashEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+cashColumns+" FROM cash_entries WHERE user_id = ? ORDER BY rowid", userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cash entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.CashEntry
	for rows.Next() {
		c, err := scanCash(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cash entry: %w", err)
		}
		entries = append(entries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cash entries: %w", err)
	}
	return entries, nil
}

// CreateCash stores a new cash entry.
func (s *SQLiteStore) CreateCash(ctx context.Context, entry *models.CashEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO cash_entries ("+cashColumns+") VALUES (?, ?, ?, ?, ?)",
		entry.ID, entry.UserID, entry.Name, entry.OwedToMe, entry.OwedToThem,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cash entry: %w", err)
	}
	return nil
}

// UpdateCash applies the non-nil fields of patch to one of the user's entries.
func (s *SQLiteStore) UpdateCash(ctx context.Context, userID, entryID string, patch models.CashPatch) (*models.CashEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	entry, err := scanCash(tx.QueryRowContext(ctx,
		"SELECT "+cashColumns+" FROM cash_entries WHERE id = ? AND user_id = ?", entryID, userID,
	))
	if isNoRows(err) {
		return nil, notFound("cash entry", entryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cash entry: %w", err)
	}

	if patch.Name != nil {
		entry.Name = *patch.Name
	}
	if patch.OwedToMe != nil {
		entry.OwedToMe = *patch.OwedToMe
	}
	if patch.OwedToThem != nil {
		entry.OwedToThem = *patch.OwedToThem
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE cash_entries SET name = ?, owed_to_me = ?, owed_to_them = ? WHERE id = ?",
		entry.Name, entry.OwedToMe, entry.OwedToThem, entry.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update cash entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entry, nil
}
