package ledger

import (
	"strings"

	"github.com/faheemho18/monefy-pwa-clone/internal/model"
)

// UnknownCategoryName labels transactions whose category no longer exists.
const UnknownCategoryName = "Unknown"

// Categories provides in-memory lookup over a category collection.
type Categories struct {
	all  []model.Category
	byID map[string]model.Category
}

// NewCategories indexes cats by id.
func NewCategories(cats []model.Category) *Categories {
	byID := make(map[string]model.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	return &Categories{all: cats, byID: byID}
}

func (c *Categories) Get(id string) (model.Category, bool) {
	cat, ok := c.byID[id]
	return cat, ok
}

// Exists reports whether a category with id is stored.
func (c *Categories) Exists(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// ByKind returns the categories of one kind, in stored order.
func (c *Categories) ByKind(kind model.Kind) []model.Category {
	var result []model.Category
	for _, cat := range c.all {
		if cat.Kind == kind {
			result = append(result, cat)
		}
	}
	return result
}

// For resolves a transaction's category. Dangling references get a
// placeholder carrying the missing id and the transaction's kind.
func (c *Categories) For(t model.Transaction) model.Category {
	if cat, ok := c.byID[t.CategoryID]; ok {
		return cat
	}
	return model.Category{
		ID:    t.CategoryID,
		Name:  UnknownCategoryName,
		Icon:  "unknown",
		Color: "bg-gray-400",
		Kind:  t.Kind,
	}
}

// ByName finds a category of the given kind by case-insensitive name.
func (c *Categories) ByName(kind model.Kind, name string) (model.Category, bool) {
	for _, cat := range c.all {
		if cat.Kind == kind && strings.EqualFold(cat.Name, strings.TrimSpace(name)) {
			return cat, true
		}
	}
	return model.Category{}, false
}
