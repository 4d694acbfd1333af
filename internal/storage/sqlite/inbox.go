package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/hisab/internal/models"
)

// CreateNotifications stores a batch of notifications atomically.
func (s *SQLiteStore) CreateNotifications(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO notifications (id, user_id, message, is_read, created_at) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, n := range notifications {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if n.CreatedAt == 0 {
			n.CreatedAt = now
		}
		if _, err := stmt.ExecContext(ctx, n.ID, n.UserID, n.Message, n.IsRead, n.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert notification: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetNotification retrieves a notification by ID.
func (s *SQLiteStore) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	n := &models.Notification{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, message, is_read, created_at FROM notifications WHERE id = ?", id,
	).Scan(&n.ID, &n.UserID, &n.Message, &n.IsRead, &n.CreatedAt)
	if isNoRows(err) {
		return nil, notFound("notification", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, message, is_read, created_at FROM notifications
		 WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead flags a notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE notifications SET is_read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return requireAffected(res, "notification", id)
}

// CreateMealRequest records a member's request. Status defaults to pending.
func (s *SQLiteStore) CreateMealRequest(ctx context.Context, req *models.MealRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Status == "" {
		req.Status = models.RequestPending
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO meal_requests (id, group_id, user_id, date, status, message) VALUES (?, ?, ?, ?, ?, ?)",
		req.ID, req.GroupID, req.UserID, req.Date, req.Status, req.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert meal request: %w", err)
	}
	return nil
}

const mealRequestQuery = `
	SELECT r.id, r.group_id, r.user_id, COALESCE(u.username, 'Unknown'), r.date, r.status, r.message
	FROM meal_requests r LEFT JOIN users u ON u.id = r.user_id`

func scanMealRequest(row interface{ Scan(...any) error }) (*models.MealRequest, error) {
	r := &models.MealRequest{}
	if err := row.Scan(&r.ID, &r.GroupID, &r.UserID, &r.Username, &r.Date, &r.Status, &r.Message); err != nil {
		return nil, err
	}
	return r, nil
}

// GetMealRequest retrieves a meal request by ID.
func (s *SQLiteStore) GetMealRequest(ctx context.Context, id string) (*models.MealRequest, error) {
	r, err := scanMealRequest(s.db.QueryRowContext(ctx, mealRequestQuery+" WHERE r.id = ?", id))
	if isNoRows(err) {
		return nil, notFound("meal request", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal request: %w", err)
	}
	return r, nil
}

// ListMealRequests returns a group's requests in submission order.
func (s *SQLiteStore) ListMealRequests(ctx context.Context, groupID string) ([]*models.MealRequest, error) {
	rows, err := s.db.QueryContext(ctx, mealRequestQuery+" WHERE r.group_id = ? ORDER BY r.rowid", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.MealRequest
	for rows.Next() {
		r, err := scanMealRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meal requests: %w", err)
	}
	return requests, nil
}

// UpdateMealRequestStatus sets the review outcome of a request.
func (s *SQLiteStore) UpdateMealRequestStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE meal_requests SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to update meal request: %w", err)
	}
	return requireAffected(res, "meal request", id)
}
