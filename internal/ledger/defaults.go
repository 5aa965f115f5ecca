package ledger

import "github.com/faheemho18/monefy-pwa-clone/internal/model"

// DefaultCategories returns the categories seeded into an empty store, without ids.
func DefaultCategories() []model.Category {
	return []model.Category{
		{Name: "Food", Icon: "food", Color: "bg-orange-500", Kind: model.KindExpense, IsDefault: true, Order: 1},
		{Name: "Transport", Icon: "transport", Color: "bg-blue-500", Kind: model.KindExpense, IsDefault: true, Order: 2},
		{Name: "Entertainment", Icon: "entertainment", Color: "bg-purple-500", Kind: model.KindExpense, IsDefault: true, Order: 3},
		{Name: "Bills", Icon: "bills", Color: "bg-red-500", Kind: model.KindExpense, IsDefault: true, Order: 4},
		{Name: "Healthcare", Icon: "healthcare", Color: "bg-green-500", Kind: model.KindExpense, IsDefault: true, Order: 5},
		{Name: "Shopping", Icon: "shopping", Color: "bg-pink-500", Kind: model.KindExpense, IsDefault: true, Order: 6},
		{Name: "Education", Icon: "education", Color: "bg-indigo-500", Kind: model.KindExpense, IsDefault: true, Order: 7},
		{Name: "Travel", Icon: "travel", Color: "bg-cyan-500", Kind: model.KindExpense, IsDefault: true, Order: 8},
		{Name: "Salary", Icon: "bills", Color: "bg-green-600", Kind: model.KindIncome, IsDefault: true, Order: 1},
		{Name: "Freelance", Icon: "education", Color: "bg-blue-600", Kind: model.KindIncome, IsDefault: true, Order: 2},
		{Name: "Investment", Icon: "shopping", Color: "bg-purple-600", Kind: model.KindIncome, IsDefault: true, Order: 3},
		{Name: "Other", Icon: "transport", Color: "bg-gray-600", Kind: model.KindIncome, IsDefault: true, Order: 4},
	}
}
