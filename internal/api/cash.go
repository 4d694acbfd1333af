package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
)

const CashServiceName = "hisab.v1.CashService"

const (
	CashServiceListCashProcedure   = "/hisab.v1.CashService/ListCash"
	CashServiceAddCashProcedure    = "/hisab.v1.CashService/AddCash"
	CashServiceUpdateCashProcedure = "/hisab.v1.CashService/UpdateCash"
)

type CashEntry struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	OwedToMe   decimal.Decimal `json:"owedToMe"`
	OwedToThem decimal.Decimal `json:"owedToThem"`
}

type ListCashRequest struct{}

type ListCashResponse struct {
	Entries []CashEntry `json:"entries"`
}

type AddCashRequest struct {
	Name       string          `json:"name"`
	OwedToMe   decimal.Decimal `json:"owedToMe"`
	OwedToThem decimal.Decimal `json:"owedToThem"`
}

type AddCashResponse struct {
	Entry CashEntry `json:"entry"`
}

// UpdateCashRequest changes only the fields that are set.
type UpdateCashRequest struct {
	EntryID    string           `json:"entryId"`
	Name       *string          `json:"name,omitempty"`
	OwedToMe   *decimal.Decimal `json:"owedToMe,omitempty"`
	OwedToThem *decimal.Decimal `json:"owedToThem,omitempty"`
}

type UpdateCashResponse struct {
	Entry CashEntry `json:"entry"`
}

// CashServiceHandler is implemented by the personal cash book service.
type CashServiceHandler interface {
	ListCash(context.Context, *connect.Request[ListCashRequest]) (*connect.Response[ListCashResponse], error)
	AddCash(context.Context, *connect.Request[AddCashRequest]) (*connect.Response[AddCashResponse], error)
	UpdateCash(context.Context, *connect.Request[UpdateCashRequest]) (*connect.Response[UpdateCashResponse], error)
}

// NewCashServiceHandler builds an HTTP handler from the service implementation.
func NewCashServiceHandler(svc CashServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return serviceHandler(CashServiceName,
		unary(CashServiceListCashProcedure, svc.ListCash, opts),
		unary(CashServiceAddCashProcedure, svc.AddCash, opts),
		unary(CashServiceUpdateCashProcedure, svc.UpdateCash, opts),
	)
}

// CashServiceClient calls CashService over HTTP.
type CashServiceClient struct {
	listCash   *connect.Client[ListCashRequest, ListCashResponse]
	addCash    *connect.Client[AddCashRequest, AddCashResponse]
	updateCash *connect.Client[UpdateCashRequest, UpdateCashResponse]
}

// NewCashServiceClient constructs a client for the service at baseURL.
func NewCashServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CashServiceClient {
	return &CashServiceClient{
		listCash:   newClient[ListCashRequest, ListCashResponse](httpClient, baseURL, CashServiceListCashProcedure, opts),
		addCash:    newClient[AddCashRequest, AddCashResponse](httpClient, baseURL, CashServiceAddCashProcedure, opts),
		updateCash: newClient[UpdateCashRequest, UpdateCashResponse](httpClient, baseURL, CashServiceUpdateCashProcedure, opts),
	}
}

func (c *CashServiceClient) ListCash(ctx context.Context, req *connect.Request[ListCashRequest]) (*connect.Response[ListCashResponse], error) {
	return c.listCash.CallUnary(ctx, req)
}

func (c *CashServiceClient) AddCash(ctx context.Context, req *connect.Request[AddCashRequest]) (*connect.Response[AddCashResponse], error) {
	return c.addCash.CallUnary(ctx, req)
}

func (c *CashServiceClient) UpdateCash(ctx context.Context, req *connect.Request[UpdateCashRequest]) (*connect.Response[UpdateCashResponse], error) {
	return c.updateCash.CallUnary(ctx, req)
}
