package models

// Role titles assigned by the group service.
const (
	TitleManager = "Manager"
	TitleMember  = "Member"
)

// Group represents a mess whose members share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// UniqueName is the handle other users join the group with.
	UniqueName string

	// DisplayName is the human-readable name (e.g., "Flat 4B").
	DisplayName string

	// Policy is the cost allocation policy: "monthly_avg" or "smart_meal".
	Policy string

	// ManagerID is the user who holds the group fund. Empty if none.
	ManagerID string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// GroupMember is a user's membership in a group.
type GroupMember struct {
	GroupID  string
	UserID   string
	Username string
	JoinedAt int64
}

// GroupRole is the explicit role of a member within a group.
// Members without a stored role fall back to the group's ManagerID.
type GroupRole struct {
	GroupID   string
	UserID    string
	IsManager bool
	Title     string
}
