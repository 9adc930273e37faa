package view

import "github.com/nisimpson/bizdir"

// Action is an event that changes the view State.
type Action interface {
	apply(State) State
}

// Reduce returns the state that follows s after a.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

// Loaded replaces the cached record set after a fetch.
type Loaded struct {
	Items []bizdir.Business
}

func (a Loaded) apply(s State) State {
	items := make([]bizdir.Business, len(a.Items))
	copy(items, a.Items)
	s.Original = items
	return s
}

// OpenSearch starts a fresh search on Field.
type OpenSearch struct {
	Field Field
}

func (a OpenSearch) apply(s State) State {
	s.Search = Search{Field: a.Field, Active: true}
	s.Sort.Active = true
	return s
}

// SetQuery updates the search query.
type SetQuery struct {
	Query string
}

func (a SetQuery) apply(s State) State {
	s.Search.Query = a.Query
	s.Sort.Active = true
	return s
}

// CloseSearch ends the search and drops its query.
type CloseSearch struct{}

func (CloseSearch) apply(s State) State {
	s.Search = Search{Field: s.Search.Field}
	s.Sort.Active = true
	return s
}

// ToggleSort sorts by Field and flips the direction. The direction flips on
// every toggle, including when the field changes.
type ToggleSort struct {
	Field Field
}

func (a ToggleSort) apply(s State) State {
	s.Sort = Sort{Field: a.Field, Desc: !s.Sort.Desc, Active: true}
	return s
}

// OpenFilter opens the filter dialog with the applied filter as draft.
type OpenFilter struct{}

func (OpenFilter) apply(s State) State {
	s.Draft = s.Filter
	s.FilterOpen = true
	return s
}

// EditFilter replaces the draft filter fields. Nothing changes in the table
// until ApplyFilter.
type EditFilter struct {
	Status Status
	From   string
	To     string
}

func (a EditFilter) apply(s State) State {
	s.Draft.Status = a.Status
	s.Draft.From = a.From
	s.Draft.To = a.To
	return s
}

// CancelFilter closes the dialog and discards the draft.
type CancelFilter struct{}

func (CancelFilter) apply(s State) State {
	s.Draft = s.Filter
	s.FilterOpen = false
	return s
}

// ApplyFilter activates the draft filter and closes the dialog.
type ApplyFilter struct{}

func (ApplyFilter) apply(s State) State {
	s.Filter = s.Draft
	s.Filter.Active = true
	s.Draft = s.Filter
	s.FilterOpen = false
	s.Sort.Active = true
	return s
}

// ClearFilter resets the filter and search and shows the cached set in its
// original order until the next sort or search.
type ClearFilter struct{}

func (ClearFilter) apply(s State) State {
	s.Filter = Filter{Status: StatusAll}
	s.Draft = s.Filter
	s.Search = Search{Field: s.Search.Field}
	s.Sort.Active = false
	s.FilterOpen = false
	return s
}

// GoToPage jumps to Page without clamping it to the page count.
type GoToPage struct {
	Page int
}

func (a GoToPage) apply(s State) State {
	if a.Page >= 1 {
		s.Page = a.Page
	}
	return s
}

// NextPage advances unless already on the last page.
type NextPage struct{}

func (NextPage) apply(s State) State {
	if s.Page < s.Pages() {
		s.Page++
	}
	return s
}

// PrevPage goes back unless already on the first page.
type PrevPage struct{}

func (PrevPage) apply(s State) State {
	if s.Page > 1 {
		s.Page--
	}
	return s
}

// SetPerPage changes the page size. The current page is kept.
type SetPerPage struct {
	PerPage int
}

func (a SetPerPage) apply(s State) State {
	if a.PerPage >= 1 {
		s.PerPage = a.PerPage
	}
	return s
}

// OpenCreate shows the create dialog.
type OpenCreate struct{}

func (OpenCreate) apply(s State) State {
	s.CreateOpen = true
	return s
}

// CloseCreate hides the create dialog.
type CloseCreate struct{}

func (CloseCreate) apply(s State) State {
	s.CreateOpen = false
	return s
}

// NextPageSize returns the page size after n in PageSizes, wrapping around.
func NextPageSize(n int) int {
	for i, size := range PageSizes {
		if size == n {
			return PageSizes[(i+1)%len(PageSizes)]
		}
	}
	return PageSizes[0]
}
