package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const InboxServiceName = "hisab.v1.InboxService"

const (
	InboxServiceListNotificationsProcedure    = "/hisab.v1.InboxService/ListNotifications"
	InboxServiceMarkNotificationReadProcedure = "/hisab.v1.InboxService/MarkNotificationRead"
	InboxServiceCreateMealRequestProcedure    = "/hisab.v1.InboxService/CreateMealRequest"
	InboxServiceListMealRequestsProcedure     = "/hisab.v1.InboxService/ListMealRequests"
	InboxServiceReviewMealRequestProcedure    = "/hisab.v1.InboxService/ReviewMealRequest"
)

type Notification struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	IsRead    bool   `json:"isRead"`
	CreatedAt int64  `json:"createdAt"`
}

type MealRequest struct {
	ID       string `json:"id"`
	GroupID  string `json:"groupId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Date     string `json:"date"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

type ListNotificationsRequest struct{}

type ListNotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}

type MarkNotificationReadRequest struct {
	NotificationID string `json:"notificationId"`
}

type MarkNotificationReadResponse struct{}

type CreateMealRequestRequest struct {
	GroupID string `json:"groupId"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

type CreateMealRequestResponse struct {
	Request MealRequest `json:"request"`
}

type ListMealRequestsRequest struct {
	GroupID string `json:"groupId"`
}

type ListMealRequestsResponse struct {
	Requests []MealRequest `json:"requests"`
}

type ReviewMealRequestRequest struct {
	GroupID   string `json:"groupId"`
	RequestID string `json:"requestId"`
	// Status is "approved" or "rejected".
	Status string `json:"status"`
}

type ReviewMealRequestResponse struct {
	Request MealRequest `json:"request"`
}

// InboxServiceHandler is implemented by the inbox service.
type InboxServiceHandler interface {
	ListNotifications(context.Context, *connect.Request[ListNotificationsRequest]) (*connect.Response[ListNotificationsResponse], error)
	MarkNotificationRead(context.Context, *connect.Request[MarkNotificationReadRequest]) (*connect.Response[MarkNotificationReadResponse], error)
	CreateMealRequest(context.Context, *connect.Request[CreateMealRequestRequest]) (*connect.Response[CreateMealRequestResponse], error)
	ListMealRequests(context.Context, *connect.Request[ListMealRequestsRequest]) (*connect.Response[ListMealRequestsResponse], error)
	ReviewMealRequest(context.Context, *connect.Request[ReviewMealRequestRequest]) (*connect.Response[ReviewMealRequestResponse], error)
}

// NewInboxServiceHandler builds an HTTP handler from the service implementation.
func NewInboxServiceHandler(svc InboxServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return serviceHandler(InboxServiceName,
		unary(InboxServiceListNotificationsProcedure, svc.ListNotifications, opts),
		unary(InboxServiceMarkNotificationReadProcedure, svc.MarkNotificationRead, opts),
		unary(InboxServiceCreateMealRequestProcedure, svc.CreateMealRequest, opts),
		unary(InboxServiceListMealRequestsProcedure, svc.ListMealRequests, opts),
		unary(InboxServiceReviewMealRequestProcedure, svc.ReviewMealRequest, opts),
	)
}

// InboxServiceClient calls InboxService over HTTP.
type InboxServiceClient struct {
	listNotifications    *connect.Client[ListNotificationsRequest, ListNotificationsResponse]
	markNotificationRead *connect.Client[MarkNotificationReadRequest, MarkNotificationReadResponse]
	createMealRequest    *connect.Client[CreateMealRequestRequest, CreateMealRequestResponse]
	listMealRequests     *connect.Client[ListMealRequestsRequest, ListMealRequestsResponse]
	reviewMealRequest    *connect.Client[ReviewMealRequestRequest, ReviewMealRequestResponse]
}

// NewInboxServiceClient constructs a client for the service at baseURL.
func NewInboxServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *InboxServiceClient {
	return &InboxServiceClient{
		listNotifications:    newClient[ListNotificationsRequest, ListNotificationsResponse](httpClient, baseURL, InboxServiceListNotificationsProcedure, opts),
		markNotificationRead: newClient[MarkNotificationReadRequest, MarkNotificationReadResponse](httpClient, baseURL, InboxServiceMarkNotificationReadProcedure, opts),
		createMealRequest:    newClient[CreateMealRequestRequest, CreateMealRequestResponse](httpClient, baseURL, InboxServiceCreateMealRequestProcedure, opts),
		listMealRequests:     newClient[ListMealRequestsRequest, ListMealRequestsResponse](httpClient, baseURL, InboxServiceListMealRequestsProcedure, opts),
		reviewMealRequest:    newClient[ReviewMealRequestRequest, ReviewMealRequestResponse](httpClient, baseURL, InboxServiceReviewMealRequestProcedure, opts),
	}
}

func (c *InboxServiceClient) ListNotifications(ctx context.Context, req *connect.Request[ListNotificationsRequest]) (*connect.Response[ListNotificationsResponse], error) {
	return c.listNotifications.CallUnary(ctx, req)
}

func (c *InboxServiceClient) MarkNotificationRead(ctx context.Context, req *connect.Request[MarkNotificationReadRequest]) (*connect.Response[MarkNotificationReadResponse], error) {
	return c.markNotificationRead.CallUnary(ctx, req)
}

func (c *InboxServiceClient) CreateMealRequest(ctx context.Context, req *connect.Request[CreateMealRequestRequest]) (*connect.Response[CreateMealRequestResponse], error) {
	return c.createMealRequest.CallUnary(ctx, req)
}

func (c *InboxServiceClient) ListMealRequests(ctx context.Context, req *connect.Request[ListMealRequestsRequest]) (*connect.Response[ListMealRequestsResponse], error) {
	return c.listMealRequests.CallUnary(ctx, req)
}

func (c *InboxServiceClient) ReviewMealRequest(ctx context.Context, req *connect.Request[ReviewMealRequestRequest]) (*connect.Response[ReviewMealRequestResponse], error) {
	return c.reviewMealRequest.CallUnary(ctx, req)
}
