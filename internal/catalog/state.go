// Package catalog holds the filter and sort engine behind the book search page.
//
// FilterAndSort is a pure function over a slice of books. The FilterState it
// consumes is parsed from request query values and can be encoded back into
// them, so a search page URL always describes the visible list.
package catalog

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/portal/internal/models"
)

// Availability narrows results by copy count
type Availability int

const (
	AvailabilityAll Availability = iota
	AvailabilityAvailable
	AvailabilityUnavailable
)

var availabilityTokens = map[Availability]string{
	AvailabilityAll:         "all",
	AvailabilityAvailable:   "available",
	AvailabilityUnavailable: "unavailable",
}

var availabilityLabels = map[Availability]string{
	AvailabilityAll:         "All Books",
	AvailabilityAvailable:   "Available Now",
	AvailabilityUnavailable: "Currently Unavailable",
}

// AvailabilityOptions lists the modes in display order
var AvailabilityOptions = []Availability{AvailabilityAll, AvailabilityAvailable, AvailabilityUnavailable}

func (a Availability) String() string { return availabilityTokens[a] }

// Label is the human readable option text
func (a Availability) Label() string { return availabilityLabels[a] }

// ParseAvailability accepts a URL token or a display label. Empty means All.
func ParseAvailability(s string) (Availability, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AvailabilityAll, nil
	}
	for _, a := range AvailabilityOptions {
		if strings.EqualFold(s, availabilityTokens[a]) || strings.EqualFold(s, availabilityLabels[a]) {
			return a, nil
		}
	}
	return AvailabilityAll, &models.ValidationError{Field: "availability", Message: fmt.Sprintf("unknown availability %q", s)}
}

// SortKey orders results
type SortKey int

const (
	SortRelevance SortKey = iota
	SortTitleAsc
	SortTitleDesc
	SortNewest
	SortOldest
)

var sortTokens = map[SortKey]string{
	SortRelevance: "relevance",
	SortTitleAsc:  "title-asc",
	SortTitleDesc: "title-desc",
	SortNewest:    "newest",
	SortOldest:    "oldest",
}

var sortLabels = map[SortKey]string{
	SortRelevance: "Relevance",
	SortTitleAsc:  "Title (A-Z)",
	SortTitleDesc: "Title (Z-A)",
	SortNewest:    "Newest First",
	SortOldest:    "Oldest First",
}

// SortOptions lists the sort keys in display order
var SortOptions = []SortKey{SortRelevance, SortTitleAsc, SortTitleDesc, SortNewest, SortOldest}

func (k SortKey) String() string { return sortTokens[k] }

// Label is the human readable option text
func (k SortKey) Label() string { return sortLabels[k] }

// ParseSortKey accepts a URL token or a display label. Empty means Relevance.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortRelevance, nil
	}
	for _, k := range SortOptions {
		if strings.EqualFold(s, sortTokens[k]) || strings.EqualFold(s, sortLabels[k]) {
			return k, nil
		}
	}
	return SortRelevance, &models.ValidationError{Field: "sort", Message: fmt.Sprintf("unknown sort %q", s)}
}

// FilterState is the search page's query, category selection, availability mode and sort key
type FilterState struct {
	Query        string
	Categories   map[string]struct{}
	Availability Availability
	Sort         SortKey
}

// DefaultFilterState is the "clear filters" state
func DefaultFilterState() FilterState {
	return FilterState{Categories: map[string]struct{}{}}
}

// NewFilterState is a convenience constructor used by the CLI and tests
func NewFilterState(query string, categories []string, availability Availability, sortKey SortKey) FilterState {
	state := DefaultFilterState()
	state.Query = query
	state.Availability = availability
	state.Sort = sortKey
	for _, c := range categories {
		state.SelectCategory(c)
	}
	return state
}

// ParseFilterState reads q, category (repeatable), availability and sort
func ParseFilterState(values url.Values) (FilterState, error) {
	state := DefaultFilterState()
	state.Query = values.Get("q")
	for _, c := range values["category"] {
		state.SelectCategory(c)
	}

	var err error
	if state.Availability, err = ParseAvailability(values.Get("availability")); err != nil {
		return DefaultFilterState(), err
	}
	if state.Sort, err = ParseSortKey(values.Get("sort")); err != nil {
		return DefaultFilterState(), err
	}
	return state, nil
}

// SelectCategory adds a category to the selection
func (s *FilterState) SelectCategory(category string) {
	category = strings.TrimSpace(category)
	if category == "" {
		return
	}
	if s.Categories == nil {
		s.Categories = map[string]struct{}{}
	}
	s.Categories[category] = struct{}{}
}

// ToggleCategory flips the checkbox for a category
func (s *FilterState) ToggleCategory(category string) {
	if s.HasCategory(category) {
		delete(s.Categories, category)
		return
	}
	s.SelectCategory(category)
}

// HasCategory reports whether a category is selected
func (s FilterState) HasCategory(category string) bool {
	_, ok := s.Categories[category]
	return ok
}

// CategoryList returns the selection sorted by name
func (s FilterState) CategoryList() []string {
	list := make([]string, 0, len(s.Categories))
	for c := range s.Categories {
		list = append(list, c)
	}
	sort.Strings(list)
	return list
}

// IsDefault reports whether any filter is active
func (s FilterState) IsDefault() bool {
	return strings.TrimSpace(s.Query) == "" && len(s.Categories) == 0 &&
		s.Availability == AvailabilityAll && s.Sort == SortRelevance
}

// Values encodes the state as query parameters, omitting defaults
func (s FilterState) Values() url.Values {
	v := url.Values{}
	if q := strings.TrimSpace(s.Query); q != "" {
		v.Set("q", q)
	}
	for _, c := range s.CategoryList() {
		v.Add("category", c)
	}
	if s.Availability != AvailabilityAll {
		v.Set("availability", s.Availability.String())
	}
	if s.Sort != SortRelevance {
		v.Set("sort", s.Sort.String())
	}
	return v
}

// Key is a canonical form of the state. Two states with the same key select the same books.
func (s FilterState) Key() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(s.Query)))
	b.WriteByte(0)
	b.WriteString(strings.Join(s.CategoryList(), "\x1f"))
	b.WriteByte(0)
	b.WriteString(s.Availability.String())
	b.WriteByte(0)
	b.WriteString(s.Sort.String())
	return b.String()
}

// Clone returns a copy that does not share the category set
func (s FilterState) Clone() FilterState {
	c := s
	c.Categories = make(map[string]struct{}, len(s.Categories))
	for k := range s.Categories {
		c.Categories[k] = struct{}{}
	}
	return c
}

// WithCategoryToggled is used by templates to build checkbox links
func (s FilterState) WithCategoryToggled(category string) FilterState {
	c := s.Clone()
	c.ToggleCategory(category)
	return c
}
