package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/hisab/internal/api"
	"github.com/mmynk/hisab/internal/ledger"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/notify"
	"github.com/mmynk/hisab/internal/storage"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store       storage.Store
	postman     postman
	settlements prometheus.Histogram
}

var _ api.GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a GroupService. The settlements-per-dashboard
// histogram is registered with reg.
func NewGroupService(store storage.Store, publisher notify.Publisher, reg prometheus.Registerer) *GroupService {
	settlements := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hisab_dashboard_settlements",
		Help:    "Transfers needed to settle a group, per dashboard computed.",
		Buckets: prometheus.LinearBuckets(0, 2, 10),
	})
	reg.MustRegister(settlements)

	return &GroupService{
		store:       store,
		postman:     newPostman(store, publisher),
		settlements: settlements,
	}
}

// CreateGroup creates a group managed by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received", "unique_name", req.Msg.UniqueName, "user_id", userID)

	uniqueName := strings.TrimSpace(req.Msg.UniqueName)
	if uniqueName == "" || strings.ContainsAny(uniqueName, " \t\n") {
		return nil, invalid("unique_name must be a non-empty handle without spaces")
	}
	displayName := strings.TrimSpace(req.Msg.DisplayName)
	if displayName == "" {
		displayName = uniqueName
	}
	policy := req.Msg.Policy
	if policy == "" {
		policy = ledger.PolicySmartMeal
	}
	if policy != ledger.PolicySmartMeal && policy != ledger.PolicyMonthlyAverage {
		return nil, invalid("unknown policy %q", policy)
	}

	group := &models.Group{
		UniqueName:  uniqueName,
		DisplayName: displayName,
		Policy:      policy,
		ManagerID:   userID,
	}
	if err := s.store.CreateGroup(ctx, group, userID); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, connect.NewError(connect.CodeAlreadyExists,
				fmt.Errorf("group name %q is taken, try another", uniqueName))
		}
		return nil, storeError("create group", err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// JoinGroup adds the caller to the group with the given unique name.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("JoinGroup request received", "unique_name", req.Msg.UniqueName, "user_id", userID)

	group, err := s.store.GetGroupByUniqueName(ctx, strings.TrimSpace(req.Msg.UniqueName))
	if err != nil {
		return nil, storeError("find group", err)
	}

	role := models.GroupRole{GroupID: group.ID, UserID: userID, Title: models.TitleMember}
	if err := s.store.AddMember(ctx, role); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, connect.NewError(connect.CodeAlreadyExists, errors.New("you are already in this group"))
		}
		return nil, storeError("join group", err)
	}

	slog.Info("Member joined", "group_id", group.ID, "user_id", userID)
	return connect.NewResponse(&api.JoinGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListMyGroups lists the groups the caller belongs to.
func (s *GroupService) ListMyGroups(ctx context.Context, req *connect.Request[api.ListMyGroupsRequest]) (*connect.Response[api.ListMyGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list groups", err)
	}

	out := make([]api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}
	return connect.NewResponse(&api.ListMyGroupsResponse{Groups: out}), nil
}

// DeleteGroup removes a group and all of its records. Manager only.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, group, err := groupAccess(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(ctx, s.store, group, userID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		return nil, storeError("delete group", err)
	}

	slog.Info("Group deleted", "group_id", group.ID, "user_id", userID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// RemoveMember drops a member from the group. Managers can remove anyone,
// other members only themselves. Entries of the removed member are kept.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	userID, group, err := groupAccess(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if req.Msg.UserID != userID {
		if err := requireManager(ctx, s.store, group, userID); err != nil {
			return nil, err
		}
	}

	if err := s.store.RemoveMember(ctx, group.ID, req.Msg.UserID); err != nil {
		return nil, storeError("remove member", err)
	}

	slog.Info("Member removed", "group_id", group.ID, "member_id", req.Msg.UserID, "user_id", userID)
	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// UpdateRole creates or replaces a member's role. Manager only.
func (s *GroupService) UpdateRole(ctx context.Context, req *connect.Request[api.UpdateRoleRequest]) (*connect.Response[api.UpdateRoleResponse], error) {
	userID, group, err := groupAccess(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(ctx, s.store, group, userID); err != nil {
		return nil, err
	}
	if err := requireTarget(ctx, s.store, group.ID, req.Msg.UserID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Msg.Title)
	if title == "" {
		title = models.TitleMember
		if req.Msg.IsManager {
			title = models.TitleManager
		}
	}

	role := models.GroupRole{GroupID: group.ID, UserID: req.Msg.UserID, IsManager: req.Msg.IsManager, Title: title}
	if err := s.store.UpsertRole(ctx, role); err != nil {
		return nil, storeError("update role", err)
	}

	slog.Info("Role updated", "group_id", group.ID, "member_id", req.Msg.UserID, "title", title)
	return connect.NewResponse(&api.UpdateRoleResponse{}), nil
}

// GetDashboard reconciles the group's ledger.
func (s *GroupService) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	_, group, err := groupAccess(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	slog.Info("GetDashboard request received", "group_id", group.ID)

	snap, err := s.store.Snapshot(ctx, group.ID)
	if err != nil {
		return nil, storeError("read group ledger", err)
	}

	report := ledger.ComputeDashboard(snap)
	s.settlements.Observe(float64(len(report.Settlements)))

	slog.Info("Dashboard computed",
		"group_id", group.ID,
		"users", len(report.Users),
		"settlements", len(report.Settlements),
		"meal_rate", report.Summary.MealRate.String(),
	)
	return connect.NewResponse(&api.GetDashboardResponse{Dashboard: toAPIDashboard(report)}), nil
}

// SendReminder nudges a member to settle their dues.
func (s *GroupService) SendReminder(ctx context.Context, req *connect.Request[api.SendReminderRequest]) (*connect.Response[api.SendReminderResponse], error) {
	userID, group, err := groupAccess(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if err := requireTarget(ctx, s.store, group.ID, req.Msg.UserID); err != nil {
		return nil, err
	}

	s.postman.send(ctx, &models.Notification{
		UserID:  req.Msg.UserID,
		Message: fmt.Sprintf("Reminder: You have pending dues in %s. Please settle soon.", group.DisplayName),
	})

	slog.Info("Reminder sent", "group_id", group.ID, "debtor_id", req.Msg.UserID, "user_id", userID)
	return connect.NewResponse(&api.SendReminderResponse{}), nil
}
