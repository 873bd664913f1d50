package models

import "github.com/mmynk/splitledger/internal/money"

// Expense is a payment made by one member on behalf of some members of a group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	GroupID string

	// Title is the human-readable name for the expense (e.g., "Dinner at Luigi's").
	Title string

	Description string

	// Category is one of DefaultCategories' IDs.
	Category string

	// PayerID is the member who paid. The payer does not have to appear in Splits.
	PayerID string

	// Amount is the base amount before tax and tip.
	Amount money.Money
	Tax    money.Money
	Tip    money.Money

	// Currency is copied from the group when the expense is created.
	Currency string

	// SplitMethod records how Splits were produced ("equal", "percentage", "custom", "item-specific").
	SplitMethod string

	// Splits are the per-participant shares. They sum to Total().
	Splits []Split

	// Items are the line items of an item-specific split. Empty for other methods.
	Items []Item

	// Date is the Unix timestamp of when the expense happened.
	Date int64

	CreatedAt int64
	UpdatedAt int64
}

// Total returns the amount including tax and tip.
func (e *Expense) Total() money.Money {
	return e.Amount.Add(e.Tax).Add(e.Tip)
}

// Split is one participant's share of an expense.
type Split struct {
	ParticipantID string
	Amount        money.Money

	// Percentage is set for percentage splits only.
	Percentage *money.Money
}

// Item represents a single line item on an expense.
// Items are split equally among the participants assigned to them.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Name is the description of the item (e.g., "Pizza", "Beer").
	Name string

	// Price is the pre-tax price of this item.
	Price money.Money

	// AssignedTo is the list of participant IDs who share this item.
	AssignedTo []string
}
