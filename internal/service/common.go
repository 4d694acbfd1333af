package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/auth"
	"github.com/mmynk/hisab/internal/middleware"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/notify"
	"github.com/mmynk/hisab/internal/storage"
)

var (
	errNotMember  = errors.New("you are not a member of this group")
	errNotManager = errors.New("only the group manager can do this")
)

// storeError maps a storage error onto a connect error and logs failures
// that are not the caller's fault.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	default:
		slog.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, fmt.Errorf("failed to %s", op))
	}
}

func invalid(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// callerID returns the authenticated user or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// groupAccess loads a group and checks that the caller belongs to it.
func groupAccess(ctx context.Context, store storage.GroupStore, groupID string) (string, *models.Group, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", nil, err
	}
	if groupID == "" {
		return "", nil, invalid("group_id required")
	}

	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return "", nil, storeError("get group", err)
	}
	ok, err := store.IsMember(ctx, groupID, userID)
	if err != nil {
		return "", nil, storeError("check membership", err)
	}
	if !ok {
		return "", nil, connect.NewError(connect.CodePermissionDenied, errNotMember)
	}
	return userID, group, nil
}

// requireTarget checks that the user an operation acts on belongs to the group.
func requireTarget(ctx context.Context, store storage.GroupStore, groupID, userID string) error {
	if userID == "" {
		return invalid("user_id required")
	}
	ok, err := store.IsMember(ctx, groupID, userID)
	if err != nil {
		return storeError("check membership", err)
	}
	if !ok {
		return invalid("user %s is not a member of this group", userID)
	}
	return nil
}

// isManager reports whether userID manages the group, either as the recorded
// manager or through an explicit manager role.
func isManager(ctx context.Context, store storage.GroupStore, group *models.Group, userID string) (bool, error) {
	if group.ManagerID == userID {
		return true, nil
	}
	role, err := store.GetRole(ctx, group.ID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeError("get role", err)
	}
	return role.IsManager, nil
}

func requireManager(ctx context.Context, store storage.GroupStore, group *models.Group, userID string) error {
	ok, err := isManager(ctx, store, group, userID)
	if err != nil {
		return err
	}
	if !ok {
		return connect.NewError(connect.CodePermissionDenied, errNotManager)
	}
	return nil
}

func requirePositive(field string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return invalid("%s must be positive, got %s", field, v)
	}
	return nil
}

func requireNonNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return invalid("%s must not be negative, got %s", field, v)
	}
	return nil
}

// postman stores notifications and hands them to the publisher.
type postman struct {
	store     storage.InboxStore
	publisher notify.Publisher
}

func newPostman(store storage.InboxStore, publisher notify.Publisher) postman {
	if publisher == nil {
		publisher = notify.Noop{}
	}
	return postman{store: store, publisher: publisher}
}

// send is best effort. The action that triggered the notifications has already
// been committed, so failures are logged and not returned.
func (p postman) send(ctx context.Context, notifications ...*models.Notification) {
	if len(notifications) == 0 {
		return
	}
	if err := p.store.CreateNotifications(ctx, notifications); err != nil {
		slog.Error("Failed to store notifications", "count", len(notifications), "error", err)
		return
	}
	if err := p.publisher.Publish(ctx, notifications); err != nil {
		slog.Warn("Failed to publish notifications", "count", len(notifications), "error", err)
	}
}

// fanOut builds one notification per member except the one who acted.
func fanOut(members []models.GroupMember, except, message string) []*models.Notification {
	var out []*models.Notification
	for _, m := range members {
		if m.UserID == except {
			continue
		}
		out = append(out, &models.Notification{UserID: m.UserID, Message: message})
	}
	return out
}
