package models

// Group represents a set of people who share expenses.
// All expenses and settlements of a group use the group's currency.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	Description string

	// Currency is the ISO 4217 code every amount in the group is expressed in.
	Currency string

	// Members is the list of participant IDs in this group, in join order.
	// Balances are reported in this order.
	Members []string

	// CreatedBy is the user ID that created the group.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether id belongs to the group.
func (g *Group) HasMember(id string) bool {
	for _, m := range g.Members {
		if m == id {
			return true
		}
	}
	return false
}
