package constants

// DefaultCategory is a seed row for the global category table.
type DefaultCategory struct {
	Name        string
	Description string
	Icon        string
	Color       string
}

var defaultCategories = []DefaultCategory{
	{Name: "Vegetables", Description: "Fresh vegetables and greens", Icon: "🥬", Color: "#22c55e"},
	{Name: "Fruits", Description: "Fresh and dried fruits", Icon: "🍎", Color: "#ef4444"},
	{Name: "Dairy", Description: "Milk, cheese, yogurt and eggs", Icon: "🥛", Color: "#3b82f6"},
	{Name: "Meat & Seafood", Description: "Fresh and frozen meat, poultry and fish", Icon: "🥩", Color: "#dc2626"},
	{Name: "Grains & Pasta", Description: "Rice, flour, bread, pasta and cereals", Icon: "🌾", Color: "#f59e0b"},
	{Name: "Pantry", Description: "Canned goods, spices, oils and dry staples", Icon: "🥫", Color: "#8b5cf6"},
	{Name: "Beverages", Description: "Juices, tea, coffee and soft drinks", Icon: "🧃", Color: "#06b6d4"},
	{Name: "Snacks", Description: "Chips, biscuits, nuts and sweets", Icon: "🍿", Color: "#f97316"},
	{Name: "Frozen Foods", Description: "Frozen meals, vegetables and desserts", Icon: "🧊", Color: "#0ea5e9"},
	{Name: "Condiments", Description: "Sauces, dressings, pickles and spreads", Icon: "🧂", Color: "#a16207"},
}

// DefaultCategories returns a copy of the seed categories.
func DefaultCategories() []DefaultCategory {
	out := make([]DefaultCategory, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}

// DefaultCategoryNames returns the seed category names in seed order.
func DefaultCategoryNames() []string {
	out := make([]string, len(defaultCategories))
	for i, c := range defaultCategories {
		out[i] = c.Name
	}
	return out
}
