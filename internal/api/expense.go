package api

import "github.com/mmynk/splitledger/internal/money"

// Split is one participant's share of an expense.
type Split struct {
	ParticipantID string       `json:"participantId"`
	Amount        money.Money  `json:"amount"`
	Percentage    *money.Money `json:"percentage,omitempty"`
}

// PercentageShare assigns a percentage of the base amount to a participant.
type PercentageShare struct {
	ParticipantID string      `json:"participantId"`
	Percentage    money.Money `json:"percentage"`
}

// CustomShare assigns an exact base amount to a participant.
type CustomShare struct {
	ParticipantID string      `json:"participantId"`
	Amount        money.Money `json:"amount"`
}

// Item is a line item of an item-specific split.
type Item struct {
	ID         string      `json:"id,omitempty"`
	Name       string      `json:"name"`
	Price      money.Money `json:"price"`
	AssignedTo []string    `json:"assignedTo"`
}

// SplitInput describes how an expense is divided.
// Which of Participants, Percentages, Amounts and Items is read depends on Method.
type SplitInput struct {
	// Method is one of "equal", "percentage", "custom", "item-specific".
	Method string      `json:"method"`
	Amount money.Money `json:"amount"`
	Tax    money.Money `json:"tax"`
	Tip    money.Money `json:"tip"`

	Participants []string          `json:"participants,omitempty"`
	Percentages  []PercentageShare `json:"percentages,omitempty"`
	Amounts      []CustomShare     `json:"amounts,omitempty"`
	Items        []Item            `json:"items,omitempty"`
}

type Expense struct {
	ID          string      `json:"id"`
	GroupID     string      `json:"groupId"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category"`
	PayerID     string      `json:"payerId"`
	Amount      money.Money `json:"amount"`
	Tax         money.Money `json:"tax"`
	Tip         money.Money `json:"tip"`
	Total       money.Money `json:"total"`
	Currency    string      `json:"currency"`
	SplitMethod string      `json:"splitMethod"`
	Splits      []Split     `json:"splits"`
	Items       []Item      `json:"items,omitempty"`
	Date        int64       `json:"date"`
	CreatedAt   int64       `json:"createdAt"`
	UpdatedAt   int64       `json:"updatedAt"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// ComputeSplitsRequest previews a split without storing anything.
type ComputeSplitsRequest struct {
	SplitInput
}

type ComputeSplitsResponse struct {
	Splits []Split     `json:"splits"`
	Total  money.Money `json:"total"`
	Sum    money.Money `json:"sum"`
	// Valid is false when the shares do not add up to Total, e.g. percentages summing to 99.
	Valid bool `json:"valid"`
}

type ValidateSplitsRequest struct {
	Splits        []Split     `json:"splits"`
	ExpectedTotal money.Money `json:"expectedTotal"`
}

type ValidateSplitsResponse struct {
	Valid      bool        `json:"valid"`
	Sum        money.Money `json:"sum"`
	Difference money.Money `json:"difference"`
}

type CreateExpenseRequest struct {
	GroupID     string `json:"groupId"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	PayerID     string `json:"payerId"`
	// Date defaults to the creation time.
	Date int64 `json:"date,omitempty"`
	SplitInput
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// UpdateExpenseRequest replaces every field of an expense and recomputes its splits.
type UpdateExpenseRequest struct {
	ExpenseID   string `json:"expenseId"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	PayerID     string `json:"payerId"`
	Date        int64  `json:"date,omitempty"`
	SplitInput
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []Category `json:"categories"`
}
