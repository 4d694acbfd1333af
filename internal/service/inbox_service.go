package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/api"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/notify"
	"github.com/mmynk/hisab/internal/storage"
)

// InboxService serves notifications and meal change requests.
type InboxService struct {
	store   storage.Store
	postman postman
}

var _ api.InboxServiceHandler = (*InboxService)(nil)

// NewInboxService creates an InboxService.
func NewInboxService(store storage.Store, publisher notify.Publisher) *InboxService {
	return &InboxService{store: store, postman: newPostman(store, publisher)}
}

// ListNotifications returns the caller's inbox, newest first.
func (s *InboxService) ListNotifications(ctx context.Context, req *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	notifications, err := s.store.ListNotifications(ctx, userID)
	if err != nil {
		return nil, storeError("list notifications", err)
	}

	out := make([]api.Notification, len(notifications))
	for i, n := range notifications {
		out[i] = toAPINotification(n)
	}
	return connect.NewResponse(&api.ListNotificationsResponse{Notifications: out}), nil
}

// MarkNotificationRead flags one of the caller's notifications as read.
// Notifications of other users are reported as missing.
func (s *InboxService) MarkNotificationRead(ctx context.Context, req *connect.Request[api.MarkNotificationReadRequest]) (*connect.Response[api.MarkNotificationReadResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.store.GetNotification(ctx, req.Msg.NotificationID)
	if err != nil {
		return nil, storeError("get notification", err)
	}
	if n.UserID != userID {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("notification %w", storage.ErrNotFound))
	}
	if err := s.store.MarkNotificationRead(ctx, n.ID); err != nil {
		return nil, storeError("mark notification read", err)
	}

	return connect.NewResponse(&api.MarkNotificationReadResponse{}), nil
}

// CreateMealRequest asks the group manager to change the caller's meals.
func (s *InboxService) CreateMealRequest(ctx context.Context, req *connect.Request[api.CreateMealRequestRequest]) (*connect.Response[api.CreateMealRequestResponse], error) {
	userID, group, err := groupAccess(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateMealRequest request received", "group_id", group.ID, "user_id", userID, "date", req.Msg.Date)

	if strings.TrimSpace(req.Msg.Date) == "" {
		return nil, invalid("date required")
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError("get user", err)
	}

	mealReq := &models.MealRequest{
		GroupID:  group.ID,
		UserID:   userID,
		Username: user.Username,
		Date:     req.Msg.Date,
		Status:   models.RequestPending,
		Message:  req.Msg.Message,
	}
	if err := s.store.CreateMealRequest(ctx, mealReq); err != nil {
		return nil, storeError("create meal request", err)
	}

	if group.ManagerID != "" && group.ManagerID != userID {
		s.postman.send(ctx, &models.Notification{
			UserID:  group.ManagerID,
			Message: fmt.Sprintf("%s requested a meal change for %s: %s", user.Username, mealReq.Date, mealReq.Message),
		})
	}

	return connect.NewResponse(&api.CreateMealRequestResponse{Request: toAPIMealRequest(mealReq)}), nil
}

// ListMealRequests returns a group's meal requests in submission order.
func (s *InboxService) ListMealRequests(ctx context.Context, req *connect.Request[api.ListMealRequestsRequest]) (*connect.Response[api.ListMealRequestsResponse], error) {
	_, group, err := groupAccess(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	requests, err := s.store.ListMealRequests(ctx, group.ID)
	if err != nil {
		return nil, storeError("list meal requests", err)
	}

	out := make([]api.MealRequest, len(requests))
	for i, r := range requests {
		out[i] = toAPIMealRequest(r)
	}
	return connect.NewResponse(&api.ListMealRequestsResponse{Requests: out}), nil
}

// ReviewMealRequest approves or rejects a request and tells the requester. Manager only.
func (s *InboxService) ReviewMealRequest(ctx context.Context, req *connect.Request[api.ReviewMealRequestRequest]) (*connect.Response[api.ReviewMealRequestResponse], error) {
	userID, group, err := groupAccess(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(ctx, s.store, group, userID); err != nil {
		return nil, err
	}

	status := req.Msg.Status
	if status != models.RequestApproved && status != models.RequestRejected {
		return nil, invalid("status must be %q or %q, got %q", models.RequestApproved, models.RequestRejected, status)
	}

	mealReq, err := s.store.GetMealRequest(ctx, req.Msg.RequestID)
	if err != nil {
		return nil, storeError("get meal request", err)
	}
	if mealReq.GroupID != group.ID {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("meal request %w", storage.ErrNotFound))
	}
	if err := s.store.UpdateMealRequestStatus(ctx, mealReq.ID, status); err != nil {
		return nil, storeError("update meal request", err)
	}
	mealReq.Status = status

	s.postman.send(ctx, &models.Notification{
		UserID:  mealReq.UserID,
		Message: fmt.Sprintf("Your meal request for %s was %s.", mealReq.Date, status),
	})

	slog.Info("Meal request reviewed", "group_id", group.ID, "request_id", mealReq.ID, "status", status)
	return connect.NewResponse(&api.ReviewMealRequestResponse{Request: toAPIMealRequest(mealReq)}), nil
}
