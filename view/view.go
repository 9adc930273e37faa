// Package view derives what the business table shows from the cached record
// set: search, then status and date filters, then sort, then pagination.
//
// State is a plain value. Reduce applies an Action and returns the next State
// without touching the previous one, and Derive and Window are pure functions
// of a State, so any front end can drive the same pipeline.
package view

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/nisimpson/bizdir"
)

// DateLayout is the layout of filter bounds, a calendar date without time.
const DateLayout = "2006-01-02"

// PageSizes are the selectable page sizes.
var PageSizes = []int{5, 10, 15, 20}

// Field is a business attribute the table can search and sort by.
type Field string

const (
	FieldCreatedAt Field = bizdir.AttributeNameCreatedAt
	FieldBusID     Field = bizdir.AttributeNameBusID
	FieldName      Field = bizdir.AttributeNameName
	FieldStatus    Field = bizdir.AttributeNameStatus
)

// Fields lists the columns in display order.
var Fields = []Field{FieldCreatedAt, FieldBusID, FieldName, FieldStatus}

// Value returns the string form of the field of b.
func (f Field) Value(b bizdir.Business) string {
	switch f {
	case FieldCreatedAt:
		return b.CreatedAt
	case FieldBusID:
		return b.BusID
	case FieldName:
		return b.Name
	case FieldStatus:
		return b.Status
	}
	return ""
}

// Label returns the column header of the field.
func (f Field) Label() string {
	switch f {
	case FieldCreatedAt:
		return "Created At"
	case FieldBusID:
		return "Business ID"
	case FieldName:
		return "Name"
	case FieldStatus:
		return "Status"
	}
	return string(f)
}

// Next returns the field after f in display order, wrapping around.
func (f Field) Next() Field {
	i := slices.Index(Fields, f)
	return Fields[(i+1)%len(Fields)]
}

// Status is the value of the status filter.
type Status string

const (
	StatusAll      Status = "All"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Next cycles All, active, inactive.
func (s Status) Next() Status {
	switch s {
	case StatusAll:
		return StatusActive
	case StatusActive:
		return StatusInactive
	}
	return StatusAll
}

// Search selects records whose field contains the query, ignoring case.
type Search struct {
	Field  Field
	Query  string
	Active bool
}

// Filter narrows records by status and creation date. From and To use
// DateLayout and only apply when both are set.
type Filter struct {
	Status Status
	From   string
	To     string
	Active bool
}

// Sort orders records by a field. Inactive leaves the cached order untouched.
type Sort struct {
	Field  Field
	Desc   bool
	Active bool
}

// State is everything the table view depends on.
type State struct {
	Original   []bizdir.Business // Cached record set, never modified in place
	Search     Search
	Filter     Filter // Applied filter
	Draft      Filter // Filter being edited in the dialog
	Sort       Sort
	Page       int // 1-based
	PerPage    int
	Location   *time.Location // Interprets filter dates
	FilterOpen bool
	CreateOpen bool
}

// NewState returns the initial state: sorted by creation time ascending,
// first page, five rows per page.
func NewState() State {
	return State{
		Original: []bizdir.Business{},
		Search:   Search{Field: FieldName},
		Filter:   Filter{Status: StatusAll},
		Draft:    Filter{Status: StatusAll},
		Sort:     Sort{Field: FieldCreatedAt, Active: true},
		Page:     1,
		PerPage:  PageSizes[0],
		Location: time.Local,
	}
}

// Derive runs search, status filter, date filter and sort over the cached set.
func Derive(s State) []bizdir.Business {
	out := make([]bizdir.Business, 0, len(s.Original))

	match := s.matcher()
	for _, b := range s.Original {
		if match(b) {
			out = append(out, b)
		}
	}

	if s.Sort.Active {
		field, desc := s.Sort.Field, s.Sort.Desc
		slices.SortStableFunc(out, func(a, b bizdir.Business) int {
			c := cmp.Compare(field.Value(a), field.Value(b))
			if desc {
				return -c
			}
			return c
		})
	}

	return out
}

// Window returns the current page of Derive(s). Pages past the end are empty.
func Window(s State) []bizdir.Business {
	return Paginate(Derive(s), s.Page, s.PerPage)
}

// Paginate returns page of items, perPage at a time.
func Paginate(items []bizdir.Business, page, perPage int) []bizdir.Business {
	if page < 1 || perPage < 1 {
		return []bizdir.Business{}
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []bizdir.Business{}
	}
	end := min(start+perPage, len(items))
	return items[start:end]
}

// Pages returns how many pages n items fill.
func Pages(n, perPage int) int {
	if perPage < 1 {
		return 0
	}
	return (n + perPage - 1) / perPage
}

// Pages returns the page count of the derived set.
func (s State) Pages() int {
	return Pages(len(Derive(s)), s.PerPage)
}

// ShowPager reports whether the derived set spans more than one page.
func (s State) ShowPager() bool {
	return s.PerPage < len(Derive(s))
}

func (s State) matcher() func(bizdir.Business) bool {
	var preds []func(bizdir.Business) bool

	if s.Search.Active && strings.TrimSpace(s.Search.Query) != "" {
		field, query := s.Search.Field, strings.ToLower(s.Search.Query)
		preds = append(preds, func(b bizdir.Business) bool {
			return strings.Contains(strings.ToLower(field.Value(b)), query)
		})
	}

	if s.Filter.Active {
		if st := s.Filter.Status; st == StatusActive || st == StatusInactive {
			preds = append(preds, func(b bizdir.Business) bool {
				return b.Status == string(st)
			})
		}
		if s.Filter.From != "" && s.Filter.To != "" {
			preds = append(preds, dateRange(s.Filter.From, s.Filter.To, s.Location))
		}
	}

	return func(b bizdir.Business) bool {
		for _, p := range preds {
			if !p(b) {
				return false
			}
		}
		return true
	}
}

// dateRange keeps records created between the start of from and the last
// millisecond of to. Unparseable bounds or timestamps never match.
func dateRange(from, to string, loc *time.Location) func(bizdir.Business) bool {
	if loc == nil {
		loc = time.Local
	}

	fromDay, errFrom := time.ParseInLocation(DateLayout, from, loc)
	toDay, errTo := time.ParseInLocation(DateLayout, to, loc)
	if errFrom != nil || errTo != nil {
		return func(bizdir.Business) bool { return false }
	}

	start := fromDay
	end := time.Date(toDay.Year(), toDay.Month(), toDay.Day(), 23, 59, 59, 999_000_000, loc)

	return func(b bizdir.Business) bool {
		created, err := b.Created()
		if err != nil {
			return false
		}
		return !created.Before(start) && !created.After(end)
	}
}
