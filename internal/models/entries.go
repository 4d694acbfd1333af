package models

import "github.com/shopspring/decimal"

// Expense is money a member paid on behalf of the group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// UserID is the member who paid.
	UserID string

	// Amount paid.
	Amount decimal.Decimal

	// Category is free text. "Bazar..." counts as food spend,
	// "Rent" and "Utilities" are fixed costs.
	Category string

	// Date as entered by the client.
	Date string

	// Items is a free-text description of what was bought.
	Items string
}

// Meal is the number of meal units one member had on a date.
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

// MealPatch carries a partial meal update. Nil fields are left unchanged.
type MealPatch struct {
	Breakfast  *decimal.Decimal
	Lunch      *decimal.Decimal
	Dinner     *decimal.Decimal
	GuestMeals *decimal.Decimal
}

// Fund is a deposit a member paid into the manager-held fund.
type Fund struct {
	ID      string
	GroupID string
	UserID  string
	Amount  decimal.Decimal
	Date    string
}
