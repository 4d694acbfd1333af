package models

// Meal request statuses.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// Notification is an inbox message for one user.
type Notification struct {
	// ID is the unique identifier for the notification (UUID format).
	ID string

	// UserID is the recipient.
	UserID string

	Message string
	IsRead  bool

	// CreatedAt is the Unix timestamp when the notification was stored.
	CreatedAt int64
}

// MealRequest asks the group manager to change a member's meals for a date.
type MealRequest struct {
	ID       string
	GroupID  string
	UserID   string
	Username string // Resolved on read
	Date     string
	Status   string
	Message  string
}
