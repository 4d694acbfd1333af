package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
)

const GroupServiceName = "hisab.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure  = "/hisab.v1.GroupService/CreateGroup"
	GroupServiceJoinGroupProcedure    = "/hisab.v1.GroupService/JoinGroup"
	GroupServiceListMyGroupsProcedure = "/hisab.v1.GroupService/ListMyGroups"
	GroupServiceDeleteGroupProcedure  = "/hisab.v1.GroupService/DeleteGroup"
	GroupServiceRemoveMemberProcedure = "/hisab.v1.GroupService/RemoveMember"
	GroupServiceUpdateRoleProcedure   = "/hisab.v1.GroupService/UpdateRole"
	GroupServiceGetDashboardProcedure = "/hisab.v1.GroupService/GetDashboard"
	GroupServiceSendReminderProcedure = "/hisab.v1.GroupService/SendReminder"
)

type Group struct {
	ID          string `json:"id"`
	UniqueName  string `json:"uniqueName"`
	DisplayName string `json:"displayName"`
	Policy      string `json:"policy"`
	ManagerID   string `json:"managerId,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

type CreateGroupRequest struct {
	UniqueName  string `json:"uniqueName"`
	DisplayName string `json:"displayName"`
	// Policy defaults to "smart_meal".
	Policy string `json:"policy,omitempty"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type JoinGroupRequest struct {
	UniqueName string `json:"uniqueName"`
}

type JoinGroupResponse struct {
	Group Group `json:"group"`
}

type ListMyGroupsRequest struct{}

type ListMyGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

type RemoveMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type RemoveMemberResponse struct{}

type UpdateRoleRequest struct {
	GroupID   string `json:"groupId"`
	UserID    string `json:"userId"`
	IsManager bool   `json:"isManager"`
	Title     string `json:"title"`
}

type UpdateRoleResponse struct{}

type GetDashboardRequest struct {
	GroupID string `json:"groupId"`
}

type GetDashboardResponse struct {
	Dashboard Dashboard `json:"dashboard"`
}

type SendReminderRequest struct {
	GroupID string `json:"groupId"`
	// UserID is the debtor to remind.
	UserID string `json:"userId"`
}

type SendReminderResponse struct{}

// Dashboard is the reconciled state of a group.
type Dashboard struct {
	GroupID     string                     `json:"groupId"`
	ManagerID   string                     `json:"managerId,omitempty"`
	Policy      string                     `json:"policy"`
	MemberMeals map[string]decimal.Decimal `json:"memberMeals"`
	Summary     Summary                    `json:"summary"`
	Users       []UserBalance              `json:"users"`
	Settlements []Settlement               `json:"settlements"`
	Expenses    []Expense                  `json:"expenses"`
	Meals       []Meal                     `json:"meals"`
	Funds       []Fund                     `json:"funds"`
}

type Summary struct {
	MealRate           decimal.Decimal `json:"mealRate"`
	TotalBazar         decimal.Decimal `json:"totalBazar"`
	TotalMeals         decimal.Decimal `json:"totalMeals"`
	TotalFixedExpenses decimal.Decimal `json:"totalFixedExpenses"`
}

type UserBalance struct {
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Status    string          `json:"status"`
	IsManager bool            `json:"isManager"`
	Title     string          `json:"title"`
}

type Settlement struct {
	FromID   string          `json:"fromId"`
	FromName string          `json:"fromName"`
	ToID     string          `json:"toId"`
	ToName   string          `json:"toName"`
	Amount   decimal.Decimal `json:"amount"`
}

// GroupServiceHandler is implemented by the group service.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	JoinGroup(context.Context, *connect.Request[JoinGroupRequest]) (*connect.Response[JoinGroupResponse], error)
	ListMyGroups(context.Context, *connect.Request[ListMyGroupsRequest]) (*connect.Response[ListMyGroupsResponse], error)
	DeleteGroup(context.Context, *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error)
	RemoveMember(context.Context, *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error)
	UpdateRole(context.Context, *connect.Request[UpdateRoleRequest]) (*connect.Response[UpdateRoleResponse], error)
	GetDashboard(context.Context, *connect.Request[GetDashboardRequest]) (*connect.Response[GetDashboardResponse], error)
	SendReminder(context.Context, *connect.Request[SendReminderRequest]) (*connect.Response[SendReminderResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return serviceHandler(GroupServiceName,
		unary(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts),
		unary(GroupServiceJoinGroupProcedure, svc.JoinGroup, opts),
		unary(GroupServiceListMyGroupsProcedure, svc.ListMyGroups, opts),
		unary(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts),
		unary(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts),
		unary(GroupServiceUpdateRoleProcedure, svc.UpdateRole, opts),
		unary(GroupServiceGetDashboardProcedure, svc.GetDashboard, opts),
		unary(GroupServiceSendReminderProcedure, svc.SendReminder, opts),
	)
}

// GroupServiceClient calls GroupService over HTTP.
type GroupServiceClient struct {
	createGroup  *connect.Client[CreateGroupRequest, CreateGroupResponse]
	joinGroup    *connect.Client[JoinGroupRequest, JoinGroupResponse]
	listMyGroups *connect.Client[ListMyGroupsRequest, ListMyGroupsResponse]
	deleteGroup  *connect.Client[DeleteGroupRequest, DeleteGroupResponse]
	removeMember *connect.Client[RemoveMemberRequest, RemoveMemberResponse]
	updateRole   *connect.Client[UpdateRoleRequest, UpdateRoleResponse]
	getDashboard *connect.Client[GetDashboardRequest, GetDashboardResponse]
	sendReminder *connect.Client[SendReminderRequest, SendReminderResponse]
}

// NewGroupServiceClient constructs a client for the service at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	return &GroupServiceClient{
		createGroup:  newClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL, GroupServiceCreateGroupProcedure, opts),
		joinGroup:    newClient[JoinGroupRequest, JoinGroupResponse](httpClient, baseURL, GroupServiceJoinGroupProcedure, opts),
		listMyGroups: newClient[ListMyGroupsRequest, ListMyGroupsResponse](httpClient, baseURL, GroupServiceListMyGroupsProcedure, opts),
		deleteGroup:  newClient[DeleteGroupRequest, DeleteGroupResponse](httpClient, baseURL, GroupServiceDeleteGroupProcedure, opts),
		removeMember: newClient[RemoveMemberRequest, RemoveMemberResponse](httpClient, baseURL, GroupServiceRemoveMemberProcedure, opts),
		updateRole:   newClient[UpdateRoleRequest, UpdateRoleResponse](httpClient, baseURL, GroupServiceUpdateRoleProcedure, opts),
		getDashboard: newClient[GetDashboardRequest, GetDashboardResponse](httpClient, baseURL, GroupServiceGetDashboardProcedure, opts),
		sendReminder: newClient[SendReminderRequest, SendReminderResponse](httpClient, baseURL, GroupServiceSendReminderProcedure, opts),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) JoinGroup(ctx context.Context, req *connect.Request[JoinGroupRequest]) (*connect.Response[JoinGroupResponse], error) {
	return c.joinGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListMyGroups(ctx context.Context, req *connect.Request[ListMyGroupsRequest]) (*connect.Response[ListMyGroupsResponse], error) {
	return c.listMyGroups.CallUnary(ctx, req)
}

func (c *GroupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *GroupServiceClient) UpdateRole(ctx context.Context, req *connect.Request[UpdateRoleRequest]) (*connect.Response[UpdateRoleResponse], error) {
	return c.updateRole.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetDashboard(ctx context.Context, req *connect.Request[GetDashboardRequest]) (*connect.Response[GetDashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}

func (c *GroupServiceClient) SendReminder(ctx context.Context, req *connect.Request[SendReminderRequest]) (*connect.Response[SendReminderResponse], error) {
	return c.sendReminder.CallUnary(ctx, req)
}
