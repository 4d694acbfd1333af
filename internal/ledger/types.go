// Package ledger reconciles a mess group's expenses, meals and fund deposits into
// per-member balances and a settlement plan.
//
// Everything in this package is a pure computation over a GroupSnapshot. It does
// no I/O and keeps no state, so callers may run any number of computations in
// parallel as long as each one gets its own snapshot.
package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Allocation policies. Any value other than PolicyMonthlyAverage is treated as
// the meal-rate policy.
const (
	PolicyMonthlyAverage = "monthly_avg"
	PolicySmartMeal      = "smart_meal"
)

// Status labels reported for each member.
const (
	StatusOwes     = "Owes"
	StatusGetsBack = "Gets Back"
)

// Default role titles used when a member has no explicit role assignment.
const (
	TitleManager = "Manager"
	TitleMember  = "Member"
)

// bazarPrefix marks grocery/food spend. Categories matching fixedCategories are
// split equally regardless of meal consumption.
const bazarPrefix = "Bazar"

var fixedCategories = map[string]bool{
	"Rent":      true,
	"Utilities": true,
}

// IsBazar reports whether category counts towards the meal rate.
func IsBazar(category string) bool {
	return strings.HasPrefix(category, bazarPrefix)
}

// IsFixed reports whether category is a fixed cost shared equally by all members.
func IsFixed(category string) bool {
	return fixedCategories[category]
}

// Member is a participant of a group.
type Member struct {
	ID   string
	Name string
}

// Expense is money fronted by one member on behalf of the group.
type Expense struct {
	ID       string
	GroupID  string
	UserID   string // Member who paid
	Amount   decimal.Decimal
	Category string
	Date     string
	Items    string
}

// Meal records the meal units one member consumed on a date.
type Meal struct {
	ID         string
	GroupID    string
	UserID     string
	Date       string
	Breakfast  decimal.Decimal
	Lunch      decimal.Decimal
	Dinner     decimal.Decimal
	GuestMeals decimal.Decimal
}

// Units returns the total meal units of the entry.
func (m Meal) Units() decimal.Decimal {
	return m.Breakfast.Add(m.Lunch).Add(m.Dinner).Add(m.GuestMeals)
}

// Fund is a deposit a member made into the manager-held group fund.
type Fund struct {
	ID      string
	GroupID string
	UserID  string
	Amount  decimal.Decimal
	Date    string
}

// RoleAssignment is the explicit role of a member within a group.
type RoleAssignment struct {
	GroupID   string
	UserID    string
	IsManager bool
	Title     string
}

// GroupSnapshot is a consistent read of everything the engine needs for one group.
type GroupSnapshot struct {
	GroupID string

	// Policy selects how costs are allocated (PolicyMonthlyAverage or meal-rate).
	Policy string

	// ManagerID is the group's recorded manager. Empty means no manager.
	ManagerID string

	// Members in the order they joined the group.
	Members []Member

	Expenses []Expense
	Meals    []Meal
	Funds    []Fund
	Roles    []RoleAssignment
}

// Balance is the signed net position of one member.
// Positive = the group owes the member, negative = the member owes the group.
type Balance struct {
	UserID string
	Amount decimal.Decimal
}

// Transfer is a directed payment instruction that settles part of a debt.
type Transfer struct {
	From   string // Debtor
	To     string // Creditor
	Amount decimal.Decimal
}

// Summary holds group-wide aggregates.
type Summary struct {
	MealRate           decimal.Decimal
	TotalBazar         decimal.Decimal
	TotalMeals         decimal.Decimal
	TotalFixedExpenses decimal.Decimal
}

// UserLine is the reported position of one group member.
type UserLine struct {
	UserID    string
	Name      string
	Balance   decimal.Decimal
	Status    string
	IsManager bool
	Title     string
}

// SettlementLine is a Transfer with resolved display names.
// Names are empty for ids that are not members of the group.
type SettlementLine struct {
	FromID   string
	FromName string
	ToID     string
	ToName   string
	Amount   decimal.Decimal
}

// ExpenseLine echoes an expense with the payer's display name.
type ExpenseLine struct {
	Expense
	UserName string
}

// MealLine echoes a meal entry with the eater's display name.
type MealLine struct {
	Meal
	UserName string
}

// FundLine echoes a deposit with the depositor's display name.
type FundLine struct {
	Fund
	UserName string
}

// DashboardReport is the full reconciliation result for one group.
type DashboardReport struct {
	GroupID   string
	ManagerID string
	Policy    string

	// MemberMeals maps every member to the meal units they consumed.
	MemberMeals map[string]decimal.Decimal

	Summary     Summary
	Users       []UserLine
	Settlements []SettlementLine

	Expenses []ExpenseLine
	Meals    []MealLine
	Funds    []FundLine
}
