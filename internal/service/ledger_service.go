package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/api"
	"github.com/mmynk/hisab/internal/ledger"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/notify"
	"github.com/mmynk/hisab/internal/storage"
)

// LedgerService records expenses, meals and fund deposits.
type LedgerService struct {
	store   storage.Store
	postman postman
}

var _ api.LedgerServiceHandler = (*LedgerService)(nil)

// NewLedgerService creates a LedgerService.
func NewLedgerService(store storage.Store, publisher notify.Publisher) *LedgerService {
	return &LedgerService{store: store, postman: newPostman(store, publisher)}
}

// subject resolves the member an entry is recorded for, defaulting to the caller.
func (s *LedgerService) subject(ctx context.Context, groupID, callerID, userID string) (*models.User, error) {
	if userID == "" {
		userID = callerID
	}
	if err := requireTarget(ctx, s.store, groupID, userID); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError("get user", err)
	}
	return user, nil
}

// AddExpense records money a member paid for the group and tells the others.
func (s *LedgerService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	callerID, group, err := groupAccess(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	slog.Info("AddExpense request received", "group_id", group.ID, "amount", req.Msg.Amount.String(), "category", req.Msg.Category)

	if err := requirePositive("amount", req.Msg.Amount); err != nil {
		return nil, err
	}
	category := strings.TrimSpace(req.Msg.Category)
	if category == "" {
		return nil, invalid("category required")
	}
	payer, err := s.subject(ctx, group.ID, callerID, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:  group.ID,
		UserID:   payer.ID,
		Amount:   req.Msg.Amount,
		Category: category,
		Date:     req.Msg.Date,
		Items:    req.Msg.Items,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, storeError("add expense", err)
	}

	s.notifyMembers(ctx, group.ID, payer.ID,
		fmt.Sprintf("New expense of %s BDT added by %s: %s", expense.Amount, payer.Username, expense.Category))

	slog.Info("Expense added", "group_id", group.ID, "expense_id", expense.ID)
	return connect.NewResponse(&api.AddExpenseResponse{
		Expense: toAPIExpense(ledger.Expense(*expense), payer.Username),
	}), nil
}

// AddFund records a deposit into the manager-held fund and tells the others.
func (s *LedgerService) AddFund(ctx context.Context, req *connect.Request[api.AddFundRequest]) (*connect.Response[api.AddFundResponse], error) {
	callerID, group, err := groupAccess(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	slog.Info("AddFund request received", "group_id", group.ID, "amount", req.Msg.Amount.String())

	if err := requirePositive("amount", req.Msg.Amount); err != nil {
		return nil, err
	}
	depositor, err := s.subject(ctx, group.ID, callerID, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	fund := &models.Fund{GroupID: group.ID, UserID: depositor.ID, Amount: req.Msg.Amount, Date: req.Msg.Date}
	if err := s.store.CreateFund(ctx, fund); err != nil {
		return nil, storeError("add fund", err)
	}

	s.notifyMembers(ctx, group.ID, depositor.ID,
		fmt.Sprintf("%s deposited %s BDT to fund.", depositor.Username, fund.Amount))

	slog.Info("Fund added", "group_id", group.ID, "fund_id", fund.ID)
	return connect.NewResponse(&api.AddFundResponse{
		Fund: toAPIFund(ledger.Fund(*fund), depositor.Username),
	}), nil
}

// UpdateFund corrects the amount and date of a deposit.
func (s *LedgerService) UpdateFund(ctx context.Context, req *connect.Request[api.UpdateFundRequest]) (*connect.Response[api.UpdateFundResponse], error) {
	_, group, err := groupAccess(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if err := requirePositive("amount", req.Msg.Amount); err != nil {
		return nil, err
	}

	fund, err := s.store.UpdateFund(ctx, group.ID, req.Msg.FundID, req.Msg.Amount, req.Msg.Date)
	if err != nil {
		return nil, storeError("update fund", err)
	}

	slog.Info("Fund updated", "group_id", group.ID, "fund_id", fund.ID)
	return connect.NewResponse(&api.UpdateFundResponse{
		Fund: toAPIFund(ledger.Fund(*fund), s.username(ctx, fund.UserID)),
	}), nil
}

// AddMeal records the meal units a member had on a date.
func (s *LedgerService) AddMeal(ctx context.Context, req *connect.Request[api.AddMealRequest]) (*connect.Response[api.AddMealResponse], error) {
	callerID, group, err := groupAccess(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	units := []*decimal.Decimal{&req.Msg.Breakfast, &req.Msg.Lunch, &req.Msg.Dinner, &req.Msg.GuestMeals}
	if err := checkUnits(units); err != nil {
		return nil, err
	}
	eater, err := s.subject(ctx, group.ID, callerID, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	meal := &models.Meal{
		GroupID:    group.ID,
		UserID:     eater.ID,
		Date:       req.Msg.Date,
		Breakfast:  req.Msg.Breakfast,
		Lunch:      req.Msg.Lunch,
		Dinner:     req.Msg.Dinner,
		GuestMeals: req.Msg.GuestMeals,
	}
	if err := s.store.CreateMeal(ctx, meal); err != nil {
		return nil, storeError("add meal", err)
	}

	slog.Info("Meal added", "group_id", group.ID, "meal_id", meal.ID, "user_id", eater.ID)
	return connect.NewResponse(&api.AddMealResponse{
		Meal: toAPIMeal(ledger.Meal(*meal), eater.Username),
	}), nil
}

// UpdateMeal changes only the meal fields present in the request.
func (s *LedgerService) UpdateMeal(ctx context.Context, req *connect.Request[api.UpdateMealRequest]) (*connect.Response[api.UpdateMealResponse], error) {
	_, group, err := groupAccess(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	patch := models.MealPatch{
		Breakfast:  req.Msg.Breakfast,
		Lunch:      req.Msg.Lunch,
		Dinner:     req.Msg.Dinner,
		GuestMeals: req.Msg.GuestMeals,
	}
	if err := checkUnits([]*decimal.Decimal{patch.Breakfast, patch.Lunch, patch.Dinner, patch.GuestMeals}); err != nil {
		return nil, err
	}

	meal, err := s.store.UpdateMeal(ctx, group.ID, req.Msg.MealID, patch)
	if err != nil {
		return nil, storeError("update meal", err)
	}

	slog.Info("Meal updated", "group_id", group.ID, "meal_id", meal.ID)
	return connect.NewResponse(&api.UpdateMealResponse{
		Meal: toAPIMeal(ledger.Meal(*meal), s.username(ctx, meal.UserID)),
	}), nil
}

var unitFields = []string{"breakfast", "lunch", "dinner", "guest_meals"}

// checkUnits validates breakfast, lunch, dinner and guest meals in that order.
// Nil entries are skipped.
func checkUnits(units []*decimal.Decimal) error {
	for i, v := range units {
		if v == nil {
			continue
		}
		if err := requireNonNegative(unitFields[i], *v); err != nil {
			return err
		}
	}
	return nil
}

// notifyMembers tells every member except actor about a new entry.
func (s *LedgerService) notifyMembers(ctx context.Context, groupID, actor, message string) {
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		slog.Error("Failed to list members for notification", "group_id", groupID, "error", err)
		return
	}
	s.postman.send(ctx, fanOut(members, actor, message)...)
}

// username resolves a display name, empty if the user is gone.
func (s *LedgerService) username(ctx context.Context, userID string) string {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return ""
	}
	return user.Username
}
