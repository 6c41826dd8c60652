package domain

import "strings"

// Uncategorized is the category name shown for products without a category.
const Uncategorized = "Uncategorized"

// AllCategories matches every product in a [Filter].
const AllCategories = "All"

type (
	Product struct {
		ID          int64
		Name        string
		Price       float64
		Stock       int
		Category    *Category
		Image       string
		Description string
	}

	Category struct {
		ID   int64
		Name string
	}
)

func (p Product) InStock() bool {
	return p.Stock > 0
}

func (p Product) CategoryName() string {
	if p.Category == nil || p.Category.Name == "" {
		return Uncategorized
	}
	return p.Category.Name
}

// A Filter narrows a catalog listing.
//
// Search is a case-insensitive substring of the product name.
// Category is empty or [AllCategories], a category name, or [Uncategorized].
type Filter struct {
	Search   string
	Category string
}

func (f Filter) Match(p Product) bool {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
		return false
	}

	switch f.Category {
	case "", AllCategories:
		return true
	default:
		return p.CategoryName() == f.Category
	}
}

type Listing struct {
	Products   []Product
	Categories []Category
	Total      int
}
