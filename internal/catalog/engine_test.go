package catalog

import (
	"net/url"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lehigh-university-libraries/portal/internal/models"
	"github.com/lehigh-university-libraries/portal/internal/storage"
)

func titles(books []models.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func ids(books []models.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

func TestFilterAndSortScenarios(t *testing.T) {
	books := storage.Fixtures()

	tests := []struct {
		name    string
		state   FilterState
		wantIDs []string
	}{
		{
			name:    "default state keeps catalog order",
			state:   DefaultFilterState(),
			wantIDs: []string{"1", "2", "3", "4", "5", "6"},
		},
		{
			name:    "query matches title case insensitively",
			state:   NewFilterState("algorithm", nil, AvailabilityAll, SortRelevance),
			wantIDs: []string{"1"},
		},
		{
			name:    "query matches author",
			state:   NewFilterState("  GAMMA ", nil, AvailabilityAll, SortRelevance),
			wantIDs: []string{"3"},
		},
		{
			name:    "available excludes clean code",
			state:   NewFilterState("", nil, AvailabilityAvailable, SortRelevance),
			wantIDs: []string{"1", "3", "4", "5", "6"},
		},
		{
			name:    "unavailable is only clean code",
			state:   NewFilterState("", nil, AvailabilityUnavailable, SortRelevance),
			wantIDs: []string{"2"},
		},
		{
			name:    "category filter",
			state:   NewFilterState("", []string{"Computer Science"}, AvailabilityAll, SortRelevance),
			wantIDs: []string{"1", "5", "6"},
		},
		{
			name:    "category with no books",
			state:   NewFilterState("", []string{"History"}, AvailabilityAll, SortRelevance),
			wantIDs: []string{},
		},
		{
			name:    "title ascending",
			state:   NewFilterState("", nil, AvailabilityAll, SortTitleAsc),
			wantIDs: []string{"5", "2", "6", "3", "1", "4"},
		},
		{
			name:    "title descending",
			state:   NewFilterState("", nil, AvailabilityAll, SortTitleDesc),
			wantIDs: []string{"4", "1", "3", "6", "2", "5"},
		},
		{
			name:    "newest first keeps ties stable",
			state:   NewFilterState("", nil, AvailabilityAll, SortNewest),
			wantIDs: []string{"5", "1", "2", "6", "4", "3"},
		},
		{
			name:    "oldest first keeps ties stable",
			state:   NewFilterState("", nil, AvailabilityAll, SortOldest),
			wantIDs: []string{"3", "4", "2", "6", "1", "5"},
		},
		{
			name:    "combined filters",
			state:   NewFilterState("a", []string{"Software Development"}, AvailabilityAvailable, SortOldest),
			wantIDs: []string{"3", "4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAndSort(books, tt.state)
			if diff := cmp.Diff(tt.wantIDs, ids(got)); diff != "" {
				t.Errorf("FilterAndSort() mismatch (-want +got):\n%s\ntitles: %v", diff, titles(got))
			}
		})
	}
}

func TestFilterAndSortEmptyCatalog(t *testing.T) {
	got := FilterAndSort(nil, NewFilterState("anything", []string{"Physics"}, AvailabilityAvailable, SortNewest))
	if got == nil {
		t.Fatal("Expected non-nil result for empty catalog")
	}
	if len(got) != 0 {
		t.Errorf("Expected empty result, got %d books", len(got))
	}
}

func TestFilterAndSortDoesNotMutateInput(t *testing.T) {
	books := storage.Fixtures()
	before := ids(books)

	FilterAndSort(books, NewFilterState("", nil, AvailabilityAll, SortTitleDesc))

	if diff := cmp.Diff(before, ids(books)); diff != "" {
		t.Errorf("input was reordered (-before +after):\n%s", diff)
	}
}

func TestMalformedYearsSortLast(t *testing.T) {
	books := []models.Book{
		{ID: "a", Title: "Undated", Published: "n.d."},
		{ID: "b", Title: "Old", Published: "1901"},
		{ID: "c", Title: "Month first", Published: "September 2009"},
		{ID: "d", Title: "New", Published: "2021"},
	}

	newest := ids(FilterAndSort(books, NewFilterState("", nil, AvailabilityAll, SortNewest)))
	if diff := cmp.Diff([]string{"d", "b", "a", "c"}, newest); diff != "" {
		t.Errorf("newest mismatch (-want +got):\n%s", diff)
	}

	oldest := ids(FilterAndSort(books, NewFilterState("", nil, AvailabilityAll, SortOldest)))
	if diff := cmp.Diff([]string{"b", "d", "a", "c"}, oldest); diff != "" {
		t.Errorf("oldest mismatch (-want +got):\n%s", diff)
	}
}

func TestTitleSortIsLocaleAware(t *testing.T) {
	books := []models.Book{
		{ID: "1", Title: "zebra"},
		{ID: "2", Title: "Émile"},
		{ID: "3", Title: "apple"},
		{ID: "4", Title: "Banana"},
	}

	got := titles(FilterAndSort(books, NewFilterState("", nil, AvailabilityAll, SortTitleAsc)))
	want := []string{"apple", "Banana", "Émile", "zebra"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("title sort mismatch (-want +got):\n%s", diff)
	}
}

func TestTitleSortSeparatesCaseAndAccents(t *testing.T) {
	books := []models.Book{
		{ID: "1", Title: "Resume"},
		{ID: "2", Title: "résumé"},
		{ID: "3", Title: "resume"},
	}
	reordered := []models.Book{books[2], books[0], books[1]}

	asc := ids(FilterAndSort(books, NewFilterState("", nil, AvailabilityAll, SortTitleAsc)))
	again := ids(FilterAndSort(reordered, NewFilterState("", nil, AvailabilityAll, SortTitleAsc)))
	if diff := cmp.Diff(asc, again); diff != "" {
		t.Errorf("title order depends on input order (-first +second):\n%s", diff)
	}

	desc := ids(FilterAndSort(reordered, NewFilterState("", nil, AvailabilityAll, SortTitleDesc)))
	slices.Reverse(desc)
	if diff := cmp.Diff(asc, desc); diff != "" {
		t.Errorf("descending is not ascending reversed (-asc +reversed desc):\n%s", diff)
	}
}

func TestParseFilterState(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantErr  bool
		wantSort SortKey
	}{
		{name: "empty", query: "", wantSort: SortRelevance},
		{name: "tokens", query: "q=algo&category=Physics&category=History&availability=available&sort=title-desc", wantSort: SortTitleDesc},
		{name: "ui labels", query: "availability=Currently+Unavailable&sort=Newest+First", wantSort: SortNewest},
		{name: "bad availability", query: "availability=maybe", wantErr: true},
		{name: "bad sort", query: "sort=random", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			state, err := ParseFilterState(values)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if state.Sort != tt.wantSort {
				t.Errorf("Expected sort %v, got %v", tt.wantSort, state.Sort)
			}
		})
	}
}

func TestFilterStateValuesRoundTrip(t *testing.T) {
	state := NewFilterState("clean", []string{"Software Development", "Computer Science"}, AvailabilityUnavailable, SortOldest)

	parsed, err := ParseFilterState(state.Values())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if parsed.Key() != state.Key() {
		t.Errorf("Expected key %q, got %q", state.Key(), parsed.Key())
	}
}

func TestToggleCategory(t *testing.T) {
	state := DefaultFilterState()
	state.ToggleCategory("Physics")
	if !state.HasCategory("Physics") {
		t.Fatal("Expected Physics to be selected")
	}

	toggled := state.WithCategoryToggled("Physics")
	if toggled.HasCategory("Physics") {
		t.Error("Expected Physics to be cleared in the copy")
	}
	if !state.HasCategory("Physics") {
		t.Error("Expected the original state to be untouched")
	}
	if !toggled.IsDefault() {
		t.Error("Expected toggled state to be the default state")
	}
}

func TestComputeFacets(t *testing.T) {
	f := ComputeFacets(storage.Fixtures())

	if f.Availability.InStock != 5 || f.Availability.OutOfStock != 1 {
		t.Errorf("Expected 5 in stock and 1 out, got %+v", f.Availability)
	}

	counts := map[string]int{}
	for _, c := range f.Categories {
		counts[c.Name] = c.Count
	}
	if counts["Computer Science"] != 3 || counts["Software Development"] != 3 {
		t.Errorf("Unexpected category counts: %v", counts)
	}
	if _, ok := counts["Literature"]; !ok {
		t.Error("Expected default category Literature to be listed")
	}
	for i := 1; i < len(f.Categories); i++ {
		if f.Categories[i-1].Name > f.Categories[i].Name {
			t.Fatalf("Categories not sorted: %v", f.Categories)
		}
	}
}
