package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
)

const LedgerServiceName = "hisab.v1.LedgerService"

const (
	LedgerServiceAddExpenseProcedure = "/hisab.v1.LedgerService/AddExpense"
	LedgerServiceAddFundProcedure    = "/hisab.v1.LedgerService/AddFund"
	LedgerServiceUpdateFundProcedure = "/hisab.v1.LedgerService/UpdateFund"
	LedgerServiceAddMealProcedure    = "/hisab.v1.LedgerService/AddMeal"
	LedgerServiceUpdateMealProcedure = "/hisab.v1.LedgerService/UpdateMeal"
)

type Expense struct {
	ID       string          `json:"id"`
	UserID   string          `json:"userId"`
	UserName string          `json:"userName"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Items    string          `json:"items"`
}

type Meal struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	UserName   string          `json:"userName"`
	Date       string          `json:"date"`
	Breakfast  decimal.Decimal `json:"breakfast"`
	Lunch      decimal.Decimal `json:"lunch"`
	Dinner     decimal.Decimal `json:"dinner"`
	GuestMeals decimal.Decimal `json:"guestMeals"`
}

type Fund struct {
	ID       string          `json:"id"`
	UserID   string          `json:"userId"`
	UserName string          `json:"userName"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
}

type AddExpenseRequest struct {
	GroupID string `json:"groupId"`
	// UserID is the payer. Defaults to the caller.
	UserID   string          `json:"userId,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Items    string          `json:"items,omitempty"`
}

type AddExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type AddFundRequest struct {
	GroupID string `json:"groupId"`
	// UserID is the depositor. Defaults to the caller.
	UserID string          `json:"userId,omitempty"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

type AddFundResponse struct {
	Fund Fund `json:"fund"`
}

type UpdateFundRequest struct {
	GroupID string          `json:"groupId"`
	FundID  string          `json:"fundId"`
	Amount  decimal.Decimal `json:"amount"`
	Date    string          `json:"date"`
}

type UpdateFundResponse struct {
	Fund Fund `json:"fund"`
}

type AddMealRequest struct {
	GroupID string `json:"groupId"`
	// UserID is the eater. Defaults to the caller.
	UserID     string          `json:"userId,omitempty"`
	Date       string          `json:"date"`
	Breakfast  decimal.Decimal `json:"breakfast"`
	Lunch      decimal.Decimal `json:"lunch"`
	Dinner     decimal.Decimal `json:"dinner"`
	GuestMeals decimal.Decimal `json:"guestMeals"`
}

type AddMealResponse struct {
	Meal Meal `json:"meal"`
}

// UpdateMealRequest changes only the fields that are set.
type UpdateMealRequest struct {
	GroupID    string           `json:"groupId"`
	MealID     string           `json:"mealId"`
	Breakfast  *decimal.Decimal `json:"breakfast,omitempty"`
	Lunch      *decimal.Decimal `json:"lunch,omitempty"`
	Dinner     *decimal.Decimal `json:"dinner,omitempty"`
	GuestMeals *decimal.Decimal `json:"guestMeals,omitempty"`
}

type UpdateMealResponse struct {
	Meal Meal `json:"meal"`
}

// LedgerServiceHandler is implemented by the ledger entry service.
type LedgerServiceHandler interface {
	AddExpense(context.Context, *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error)
	AddFund(context.Context, *connect.Request[AddFundRequest]) (*connect.Response[AddFundResponse], error)
	UpdateFund(context.Context, *connect.Request[UpdateFundRequest]) (*connect.Response[UpdateFundResponse], error)
	AddMeal(context.Context, *connect.Request[AddMealRequest]) (*connect.Response[AddMealResponse], error)
	UpdateMeal(context.Context, *connect.Request[UpdateMealRequest]) (*connect.Response[UpdateMealResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return serviceHandler(LedgerServiceName,
		unary(LedgerServiceAddExpenseProcedure, svc.AddExpense, opts),
		unary(LedgerServiceAddFundProcedure, svc.AddFund, opts),
		unary(LedgerServiceUpdateFundProcedure, svc.UpdateFund, opts),
		unary(LedgerServiceAddMealProcedure, svc.AddMeal, opts),
		unary(LedgerServiceUpdateMealProcedure, svc.UpdateMeal, opts),
	)
}

// LedgerServiceClient calls LedgerService over HTTP.
type LedgerServiceClient struct {
	addExpense *connect.Client[AddExpenseRequest, AddExpenseResponse]
	addFund    *connect.Client[AddFundRequest, AddFundResponse]
	updateFund *connect.Client[UpdateFundRequest, UpdateFundResponse]
	addMeal    *connect.Client[AddMealRequest, AddMealResponse]
	updateMeal *connect.Client[UpdateMealRequest, UpdateMealResponse]
}

// NewLedgerServiceClient constructs a client for the service at baseURL.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	return &LedgerServiceClient{
		addExpense: newClient[AddExpenseRequest, AddExpenseResponse](httpClient, baseURL, LedgerServiceAddExpenseProcedure, opts),
		addFund:    newClient[AddFundRequest, AddFundResponse](httpClient, baseURL, LedgerServiceAddFundProcedure, opts),
		updateFund: newClient[UpdateFundRequest, UpdateFundResponse](httpClient, baseURL, LedgerServiceUpdateFundProcedure, opts),
		addMeal:    newClient[AddMealRequest, AddMealResponse](httpClient, baseURL, LedgerServiceAddMealProcedure, opts),
		updateMeal: newClient[UpdateMealRequest, UpdateMealResponse](httpClient, baseURL, LedgerServiceUpdateMealProcedure, opts),
	}
}

func (c *LedgerServiceClient) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddFund(ctx context.Context, req *connect.Request[AddFundRequest]) (*connect.Response[AddFundResponse], error) {
	return c.addFund.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UpdateFund(ctx context.Context, req *connect.Request[UpdateFundRequest]) (*connect.Response[UpdateFundResponse], error) {
	return c.updateFund.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddMeal(ctx context.Context, req *connect.Request[AddMealRequest]) (*connect.Response[AddMealResponse], error) {
	return c.addMeal.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UpdateMeal(ctx context.Context, req *connect.Request[UpdateMealRequest]) (*connect.Response[UpdateMealResponse], error) {
	return c.updateMeal.CallUnary(ctx, req)
}
