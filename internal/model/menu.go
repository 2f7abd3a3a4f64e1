package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// UncategorisedSection is the section title used for menu items without a category.
const UncategorisedSection = "Uncategorised"

// MenuItem represents a dish on the restaurant menu.
type MenuItem struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Category    string          `json:"category" db:"category"`
	Available   bool            `json:"available" db:"available"`
	ImageURL    *string         `json:"imageUrl,omitempty" db:"image_url"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// MenuSection is a group of menu items sharing a category.
type MenuSection struct {
	Title string     `json:"title"`
	Items []MenuItem `json:"items"`
}

// AvailabilityRequest represents the payload toggling a dish on or off.
type AvailabilityRequest struct {
	Available *bool `json:"available"`
}

// NormalizeAvailability treats an absent availability flag as available.
func NormalizeAvailability(flag *bool) bool {
	if flag == nil {
		return true
	}
	return *flag
}

// GroupByCategory splits items into sections sorted by title. Items keep
// their relative order inside a section.
func GroupByCategory(items []MenuItem) []MenuSection {
	index := make(map[string]int)
	var sections []MenuSection

	for _, item := range items {
		title := item.Category
		if title == "" {
			title = UncategorisedSection
		}
		i, ok := index[title]
		if !ok {
			i = len(sections)
			index[title] = i
			sections = append(sections, MenuSection{Title: title})
		}
		sections[i].Items = append(sections[i].Items, item)
	}

	sort.SliceStable(sections, func(a, b int) bool {
		return sections[a].Title < sections[b].Title
	})

	return sections
}
