// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/ledger"
	"github.com/mmynk/hisab/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique field or membership collides.
	ErrAlreadyExists = errors.New("already exists")
)

// Store defines the interface for all persistence operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Errors wrap ErrNotFound or ErrAlreadyExists where applicable; check with errors.Is.
type Store interface {
	UserStore
	GroupStore
	EntryStore
	InboxStore
	CashStore

	// Snapshot reads everything the ledger engine needs for a group from a
	// single consistent view of the data.
	Snapshot(ctx context.Context, groupID string) (ledger.GroupSnapshot, error)

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a user. Username and email must be unused.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// UpdateUser changes username and email of an existing user.
	UpdateUser(ctx context.Context, user *models.User) error
}

// GroupStore persists groups, memberships and roles.
type GroupStore interface {
	// CreateGroup persists a group and adds creatorID as its first member with
	// a manager role. The group.ID field will be populated by the store.
	CreateGroup(ctx context.Context, group *models.Group, creatorID string) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	GetGroupByUniqueName(ctx context.Context, uniqueName string) (*models.Group, error)
	ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)
	// DeleteGroup removes a group and everything recorded in it.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddMember adds a user to a group together with their role.
	AddMember(ctx context.Context, role models.GroupRole) error
	// RemoveMember drops the membership and role. Ledger entries are kept.
	RemoveMember(ctx context.Context, groupID, userID string) error
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	// ListMembers returns members in join order.
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)
	// UpsertRole creates or replaces a member's role.
	UpsertRole(ctx context.Context, role models.GroupRole) error
	GetRole(ctx context.Context, groupID, userID string) (*models.GroupRole, error)
}

// EntryStore persists the ledger entries of a group.
type EntryStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	CreateMeal(ctx context.Context, meal *models.Meal) error
	// UpdateMeal applies a partial update to a meal of the group.
	UpdateMeal(ctx context.Context, groupID, mealID string, patch models.MealPatch) (*models.Meal, error)
	CreateFund(ctx context.Context, fund *models.Fund) error
	UpdateFund(ctx context.Context, groupID, fundID string, amount decimal.Decimal, date string) (*models.Fund, error)
}

// InboxStore persists notifications and meal requests.
type InboxStore interface {
	CreateNotifications(ctx context.Context, notifications []*models.Notification) error
	GetNotification(ctx context.Context, id string) (*models.Notification, error)
	// ListNotifications returns a user's notifications, newest first.
	ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	CreateMealRequest(ctx context.Context, req *models.MealRequest) error
	GetMealRequest(ctx context.Context, id string) (*models.MealRequest, error)
	ListMealRequests(ctx context.Context, groupID string) ([]*models.MealRequest, error)
	UpdateMealRequestStatus(ctx context.Context, id, status string) error
}

// CashStore persists personal cash entries.
type CashStore interface {
	ListCash(ctx context.Context, userID string) ([]*models.CashEntry, error)
	CreateCash(ctx context.Context, entry *models.CashEntry) error
	// UpdateCash applies a partial update to one of the user's entries.
	UpdateCash(ctx context.Context, userID, entryID string, patch models.CashPatch) (*models.CashEntry, error)
}
