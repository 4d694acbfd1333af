package models

import "github.com/shopspring/decimal"

// CashEntry is a private note of money owed between the user and someone
// outside any group.
type CashEntry struct {
	ID     string
	UserID string

	// Name of the counterparty.
	Name string

	// OwedToMe is what the counterparty has to pay the user.
	OwedToMe decimal.Decimal

	// OwedToThem is what the user has to pay the counterparty.
	OwedToThem decimal.Decimal
}

// CashPatch carries a partial cash entry update. Nil fields are left unchanged.
type CashPatch struct {
	Name       *string
	OwedToMe   *decimal.Decimal
	OwedToThem *decimal.Decimal
}
