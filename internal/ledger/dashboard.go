package ledger

import (
	"github.com/shopspring/decimal"
)

// book accumulates signed amounts per member at full precision and remembers the
// order in which members were first touched.
type book struct {
	order   []string
	amounts map[string]decimal.Decimal
}

func newBook() *book {
	return &book{amounts: make(map[string]decimal.Decimal)}
}

func (b *book) add(userID string, amount decimal.Decimal) {
	current, ok := b.amounts[userID]
	if !ok {
		b.order = append(b.order, userID)
	}
	b.amounts[userID] = current.Add(amount)
}

// rounded returns the final balances in first-touched order, rounded for
// reporting, with every member in members present.
func (b *book) rounded(members []Member) []Balance {
	out := make([]Balance, 0, len(b.order)+len(members))
	seen := make(map[string]bool, len(b.order))
	for _, id := range b.order {
		out = append(out, Balance{UserID: id, Amount: round2(b.amounts[id])})
		seen[id] = true
	}
	for _, m := range members {
		if !seen[m.ID] {
			out = append(out, Balance{UserID: m.ID, Amount: decimal.Zero})
			seen[m.ID] = true
		}
	}
	return out
}

// totals are the exact group-wide aggregates. Only mealRate is rounded because
// the rounded rate is what members are charged per unit.
type totals struct {
	bazar    decimal.Decimal
	meals    decimal.Decimal
	fixed    decimal.Decimal
	all      decimal.Decimal
	mealRate decimal.Decimal
}

func summarize(snap GroupSnapshot) totals {
	var t totals
	for _, e := range snap.Expenses {
		t.all = t.all.Add(e.Amount)
		if IsBazar(e.Category) {
			t.bazar = t.bazar.Add(e.Amount)
		}
		if IsFixed(e.Category) {
			t.fixed = t.fixed.Add(e.Amount)
		}
	}
	for _, m := range snap.Meals {
		t.meals = t.meals.Add(m.Units())
	}
	if t.meals.IsPositive() {
		t.mealRate = round2(t.bazar.Div(t.meals))
	}
	return t
}

// ComputeDashboard reconciles snap into a DashboardReport.
//
// Algorithm:
//   - Every expense credits its payer.
//   - monthly_avg: every member is debited total expenses / member count.
//   - meal-rate: every meal entry debits its eater units × meal rate, and every
//     member is debited fixed expenses / member count.
//   - Every fund deposit credits the depositor and debits the manager, if any.
//   - Balances are rounded once, then settled with Settle.
func ComputeDashboard(snap GroupSnapshot) DashboardReport {
	t := summarize(snap)
	balances := accumulate(snap, t).rounded(snap.Members)
	transfers := Settle(balances)
	return assemble(snap, t, balances, transfers)
}

func accumulate(snap GroupSnapshot, t totals) *book {
	b := newBook()
	for _, e := range snap.Expenses {
		b.add(e.UserID, e.Amount)
	}

	memberCount := decimal.NewFromInt(int64(len(snap.Members)))
	if snap.Policy == PolicyMonthlyAverage {
		if len(snap.Members) > 0 {
			perPerson := t.all.Div(memberCount)
			for _, m := range snap.Members {
				b.add(m.ID, perPerson.Neg())
			}
		}
	} else {
		for _, m := range snap.Meals {
			b.add(m.UserID, m.Units().Mul(t.mealRate).Neg())
		}
		if len(snap.Members) > 0 {
			perPerson := t.fixed.Div(memberCount)
			for _, m := range snap.Members {
				b.add(m.ID, perPerson.Neg())
			}
		}
	}

	for _, f := range snap.Funds {
		b.add(f.UserID, f.Amount)
		if snap.ManagerID != "" {
			b.add(snap.ManagerID, f.Amount.Neg())
		}
	}
	return b
}

func assemble(snap GroupSnapshot, t totals, balances []Balance, transfers []Transfer) DashboardReport {
	names := make(map[string]string, len(snap.Members))
	for _, m := range snap.Members {
		names[m.ID] = m.Name
	}
	roles := make(map[string]RoleAssignment, len(snap.Roles))
	for _, r := range snap.Roles {
		roles[r.UserID] = r
	}

	report := DashboardReport{
		GroupID:     snap.GroupID,
		ManagerID:   snap.ManagerID,
		Policy:      snap.Policy,
		MemberMeals: make(map[string]decimal.Decimal, len(snap.Members)),
		Summary: Summary{
			MealRate:           t.mealRate,
			TotalBazar:         round2(t.bazar),
			TotalMeals:         t.meals,
			TotalFixedExpenses: round2(t.fixed),
		},
		Users:       []UserLine{},
		Settlements: make([]SettlementLine, 0, len(transfers)),
		Expenses:    make([]ExpenseLine, 0, len(snap.Expenses)),
		Meals:       make([]MealLine, 0, len(snap.Meals)),
		Funds:       make([]FundLine, 0, len(snap.Funds)),
	}

	for _, bal := range balances {
		name, ok := names[bal.UserID]
		if !ok {
			continue
		}
		isManager, title := resolveRole(bal.UserID, snap.ManagerID, roles)
		status := StatusGetsBack
		if bal.Amount.IsNegative() {
			status = StatusOwes
		}
		report.Users = append(report.Users, UserLine{
			UserID:    bal.UserID,
			Name:      name,
			Balance:   bal.Amount,
			Status:    status,
			IsManager: isManager,
			Title:     title,
		})
	}

	for _, tr := range transfers {
		report.Settlements = append(report.Settlements, SettlementLine{
			FromID:   tr.From,
			FromName: names[tr.From],
			ToID:     tr.To,
			ToName:   names[tr.To],
			Amount:   tr.Amount,
		})
	}

	for _, m := range snap.Members {
		report.MemberMeals[m.ID] = decimal.Zero
	}
	for _, m := range snap.Meals {
		if _, ok := names[m.UserID]; ok {
			report.MemberMeals[m.UserID] = report.MemberMeals[m.UserID].Add(m.Units())
		}
	}

	for _, e := range snap.Expenses {
		report.Expenses = append(report.Expenses, ExpenseLine{Expense: e, UserName: names[e.UserID]})
	}
	for _, m := range snap.Meals {
		report.Meals = append(report.Meals, MealLine{Meal: m, UserName: names[m.UserID]})
	}
	for _, f := range snap.Funds {
		report.Funds = append(report.Funds, FundLine{Fund: f, UserName: names[f.UserID]})
	}

	return report
}

// resolveRole prefers an explicit assignment and otherwise derives the role from
// the group's manager id.
func resolveRole(userID, managerID string, roles map[string]RoleAssignment) (bool, string) {
	if r, ok := roles[userID]; ok {
		return r.IsManager, r.Title
	}
	if userID == managerID {
		return true, TitleManager
	}
	return false, TitleMember
}
