package catalog

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lehigh-university-libraries/portal/internal/models"
)

// FilterAndSort narrows books by state and orders the survivors.
// The input slice is never modified and the result is always non-nil.
func FilterAndSort(books []models.Book, state FilterState) []models.Book {
	query := strings.ToLower(strings.TrimSpace(state.Query))

	result := make([]models.Book, 0, len(books))
	for _, b := range books {
		if !matchesQuery(b, query) {
			continue
		}
		if len(state.Categories) > 0 && !state.HasCategory(b.Category) {
			continue
		}
		if !matchesAvailability(b, state.Availability) {
			continue
		}
		result = append(result, b)
	}

	sortBooks(result, state.Sort)
	return result
}

func matchesQuery(b models.Book, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Title), query) ||
		strings.Contains(strings.ToLower(b.Author), query)
}

func matchesAvailability(b models.Book, a Availability) bool {
	switch a {
	case AvailabilityAvailable:
		return b.AvailableCopies > 0
	case AvailabilityUnavailable:
		return b.AvailableCopies == 0
	default:
		return true
	}
}

func sortBooks(books []models.Book, key SortKey) {
	switch key {
	case SortTitleAsc:
		c := newTitleCollator()
		slices.SortStableFunc(books, func(a, b models.Book) int {
			return c.CompareString(a.Title, b.Title)
		})
	case SortTitleDesc:
		c := newTitleCollator()
		slices.SortStableFunc(books, func(a, b models.Book) int {
			return c.CompareString(b.Title, a.Title)
		})
	case SortNewest:
		slices.SortStableFunc(books, func(a, b models.Book) int {
			return compareYears(a, b, true)
		})
	case SortOldest:
		slices.SortStableFunc(books, func(a, b models.Book) int {
			return compareYears(a, b, false)
		})
	}
}

// newTitleCollator returns a fresh collator; collate.Collator is not safe for concurrent use.
func newTitleCollator() *collate.Collator {
	return collate.New(language.English)
}

// compareYears orders by publication year. Books without a parseable year
// go after every dated book in both directions.
func compareYears(a, b models.Book, newestFirst bool) int {
	ya, okA := a.PublicationYear()
	yb, okB := b.PublicationYear()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	if newestFirst {
		return cmp.Compare(yb, ya)
	}
	return cmp.Compare(ya, yb)
}
