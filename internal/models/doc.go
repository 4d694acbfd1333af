// Package models defines the persisted records of Hisab.
//
// # Records
//
//   - User: an account that can belong to many groups
//   - Group: a mess with an allocation policy and an optional manager
//   - GroupRole: a member's explicit role inside a group
//   - Expense, Meal, Fund: the ledger entries the dashboard reconciles
//   - Notification: an inbox message for one user
//   - MealRequest: a member's request to change a day's meals, reviewed by the manager
//   - CashEntry: a private note of money lent to or borrowed from someone
//
// # Design Principles
//
// 1. **IDs, not pointers**: relationships are ID strings to avoid circular references
// 2. **Exact money**: amounts are decimal.Decimal and stored as text
// 3. **Opaque dates**: ledger dates are kept as the client sent them
package models
