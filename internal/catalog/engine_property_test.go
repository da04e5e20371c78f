package catalog

import (
	"fmt"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/lehigh-university-libraries/portal/internal/models"
)

func genBook() gopter.Gen {
	return gopter.CombineGens(
		gen.AlphaString(),
		gen.AlphaString(),
		gen.IntRange(0, 4),
		gen.IntRange(0, 4),
		gen.OneConstOf("1994", "2008", "2020", "n.d.", ""),
		gen.OneConstOf("Computer Science", "Physics", "History"),
	).Map(func(v []interface{}) models.Book {
		available := v[2].(int)
		return models.Book{
			Title:           v[0].(string),
			Author:          v[1].(string),
			AvailableCopies: available,
			TotalCopies:     available + v[3].(int),
			Published:       v[4].(string),
			Category:        v[5].(string),
		}
	})
}

// withUniqueIDs numbers the generated books and makes their titles distinct
func withUniqueIDs(books []models.Book) []models.Book {
	out := make([]models.Book, len(books))
	for i, b := range books {
		b.ID = fmt.Sprintf("b%d", i)
		b.Title = fmt.Sprintf("%s %04d", b.Title, i)
		out[i] = b
	}
	return out
}

func genState() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("", "a", "E", "zz", " b "),
		gen.SliceOf(gen.OneConstOf("Computer Science", "Physics", "Literature")),
		gen.IntRange(0, 2),
		gen.IntRange(0, 4),
	).Map(func(v []interface{}) FilterState {
		return NewFilterState(v[0].(string), v[1].([]string), Availability(v[2].(int)), SortKey(v[3].(int)))
	})
}

func idSet(books []models.Book) map[string]int {
	set := make(map[string]int, len(books))
	for _, b := range books {
		set[b.ID]++
	}
	return set
}

func TestFilterAndSortProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1312)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("result is a duplicate-free subset of the input", prop.ForAll(
		func(raw []models.Book, state FilterState) bool {
			books := withUniqueIDs(raw)
			input := idSet(books)
			for id, n := range idSet(FilterAndSort(books, state)) {
				if n != 1 || input[id] != 1 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genBook()), genState(),
	))

	properties.Property("applying the same state twice is idempotent", prop.ForAll(
		func(raw []models.Book, state FilterState) bool {
			books := withUniqueIDs(raw)
			first := FilterAndSort(books, state)
			second := FilterAndSort(books, state)
			return slices.EqualFunc(first, second, func(a, b models.Book) bool { return a.ID == b.ID })
		},
		gen.SliceOf(genBook()), genState(),
	))

	properties.Property("available and unavailable partition all", prop.ForAll(
		func(raw []models.Book, state FilterState) bool {
			books := withUniqueIDs(raw)

			state.Availability = AvailabilityAll
			all := idSet(FilterAndSort(books, state))
			state.Availability = AvailabilityAvailable
			available := idSet(FilterAndSort(books, state))
			state.Availability = AvailabilityUnavailable
			unavailable := idSet(FilterAndSort(books, state))

			if len(available)+len(unavailable) != len(all) {
				return false
			}
			for id := range available {
				if _, dup := unavailable[id]; dup {
					return false
				}
				if _, ok := all[id]; !ok {
					return false
				}
			}
			for id := range unavailable {
				if _, ok := all[id]; !ok {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genBook()), genState(),
	))

	properties.Property("title descending is title ascending reversed", prop.ForAll(
		func(raw []models.Book) bool {
			books := withUniqueIDs(raw)
			asc := FilterAndSort(books, NewFilterState("", nil, AvailabilityAll, SortTitleAsc))
			desc := FilterAndSort(books, NewFilterState("", nil, AvailabilityAll, SortTitleDesc))
			slices.Reverse(desc)
			return slices.EqualFunc(asc, desc, func(a, b models.Book) bool { return a.ID == b.ID })
		},
		gen.SliceOf(genBook()),
	))

	properties.TestingRun(t)
}
