package models

// Category is an expense category shown alongside expenses.
type Category struct {
	ID    string
	Name  string
	Color string
	Icon  string
}

// CategoryOther is used for expenses with an unknown or empty category.
const CategoryOther = "6"

// DefaultCategories is the built-in category catalogue.
var DefaultCategories = []Category{
	{ID: "1", Name: "Food & Dining", Color: "orange", Icon: "utensils"},
	{ID: "2", Name: "Transportation", Color: "blue", Icon: "car"},
	{ID: "3", Name: "Entertainment", Color: "purple", Icon: "film"},
	{ID: "4", Name: "Shopping", Color: "pink", Icon: "shopping-bag"},
	{ID: "5", Name: "Bills & Utilities", Color: "green", Icon: "receipt"},
	{ID: CategoryOther, Name: "Other", Color: "gray", Icon: "more-horizontal"},
}

// NormalizeCategory returns id if it names a known category, CategoryOther otherwise.
func NormalizeCategory(id string) string {
	for _, c := range DefaultCategories {
		if c.ID == id {
			return id
		}
	}
	return CategoryOther
}
