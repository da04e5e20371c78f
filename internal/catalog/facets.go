package catalog

import (
	"sort"

	"github.com/lehigh-university-libraries/portal/internal/models"
)

// DefaultCategories are always offered in the filter sheet, even when no book carries them
var DefaultCategories = []string{
	"Computer Science",
	"Software Development",
	"Mathematics",
	"Physics",
	"Literature",
	"History",
}

// CategoryCount is a filter sheet checkbox with its book count
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AvailabilityCount tallies titles with and without free copies
type AvailabilityCount struct {
	InStock    int `json:"inStock"`
	OutOfStock int `json:"outOfStock"`
}

// Facets describes the filter options for a catalog
type Facets struct {
	Categories   []CategoryCount   `json:"categories"`
	Availability AvailabilityCount `json:"availability"`
}

// ComputeFacets counts books per category and availability
func ComputeFacets(books []models.Book) Facets {
	counts := make(map[string]int, len(DefaultCategories))
	for _, c := range DefaultCategories {
		counts[c] = 0
	}

	var f Facets
	for _, b := range books {
		if b.Category != "" {
			counts[b.Category]++
		}
		if b.Available() {
			f.Availability.InStock++
		} else {
			f.Availability.OutOfStock++
		}
	}

	f.Categories = make([]CategoryCount, 0, len(counts))
	for name, n := range counts {
		f.Categories = append(f.Categories, CategoryCount{Name: name, Count: n})
	}
	sort.Slice(f.Categories, func(i, j int) bool {
		return f.Categories[i].Name < f.Categories[j].Name
	})
	return f
}
