package service

import (
	"github.com/mmynk/hisab/internal/api"
	"github.com/mmynk/hisab/internal/ledger"
	"github.com/mmynk/hisab/internal/models"
)

func toAPIUser(u *models.User) api.User {
	return api.User{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

func toAPIGroup(g *models.Group) api.Group {
	return api.Group{
		ID:          g.ID,
		UniqueName:  g.UniqueName,
		DisplayName: g.DisplayName,
		Policy:      g.Policy,
		ManagerID:   g.ManagerID,
		CreatedAt:   g.CreatedAt,
	}
}

func toAPIExpense(e ledger.Expense, name string) api.Expense {
	return api.Expense{
		ID:       e.ID,
		UserID:   e.UserID,
		UserName: name,
		Amount:   e.Amount,
		Category: e.Category,
		Date:     e.Date,
		Items:    e.Items,
	}
}

func toAPIMeal(m ledger.Meal, name string) api.Meal {
	return api.Meal{
		ID:         m.ID,
		UserID:     m.UserID,
		UserName:   name,
		Date:       m.Date,
		Breakfast:  m.Breakfast,
		Lunch:      m.Lunch,
		Dinner:     m.Dinner,
		GuestMeals: m.GuestMeals,
	}
}

func toAPIFund(f ledger.Fund, name string) api.Fund {
	return api.Fund{ID: f.ID, UserID: f.UserID, UserName: name, Amount: f.Amount, Date: f.Date}
}

func toAPIDashboard(r ledger.DashboardReport) api.Dashboard {
	d := api.Dashboard{
		GroupID:     r.GroupID,
		ManagerID:   r.ManagerID,
		Policy:      r.Policy,
		MemberMeals: r.MemberMeals,
		Summary: api.Summary{
			MealRate:           r.Summary.MealRate,
			TotalBazar:         r.Summary.TotalBazar,
			TotalMeals:         r.Summary.TotalMeals,
			TotalFixedExpenses: r.Summary.TotalFixedExpenses,
		},
		Users:       make([]api.UserBalance, len(r.Users)),
		Settlements: make([]api.Settlement, len(r.Settlements)),
		Expenses:    make([]api.Expense, len(r.Expenses)),
		Meals:       make([]api.Meal, len(r.Meals)),
		Funds:       make([]api.Fund, len(r.Funds)),
	}
	for i, u := range r.Users {
		d.Users[i] = api.UserBalance(u)
	}
	for i, s := range r.Settlements {
		d.Settlements[i] = api.Settlement(s)
	}
	for i, e := range r.Expenses {
		d.Expenses[i] = toAPIExpense(e.Expense, e.UserName)
	}
	for i, m := range r.Meals {
		d.Meals[i] = toAPIMeal(m.Meal, m.UserName)
	}
	for i, f := range r.Funds {
		d.Funds[i] = toAPIFund(f.Fund, f.UserName)
	}
	return d
}

func toAPINotification(n *models.Notification) api.Notification {
	return api.Notification{ID: n.ID, Message: n.Message, IsRead: n.IsRead, CreatedAt: n.CreatedAt}
}

func toAPIMealRequest(r *models.MealRequest) api.MealRequest {
	return api.MealRequest{
		ID:       r.ID,
		GroupID:  r.GroupID,
		UserID:   r.UserID,
		UserName: r.Username,
		Date:     r.Date,
		Status:   r.Status,
		Message:  r.Message,
	}
}

func toAPICash(c *models.CashEntry) api.CashEntry {
	return api.CashEntry{ID: c.ID, Name: c.Name, OwedToMe: c.OwedToMe, OwedToThem: c.OwedToThem}
}
