// Package tui is the interactive terminal front end of bizdir. It keeps a
// cached copy of every business, runs it through the view pipeline and
// renders the current page as a table.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nisimpson/bizdir"
	"github.com/nisimpson/bizdir/view"
)

// API is the remote the model fetches from and writes to.
// *client.Client satisfies it.
type API interface {
	List(ctx context.Context) ([]bizdir.Business, error)
	Create(ctx context.Context, in bizdir.CreateInput) (bizdir.Business, error)
	Delete(ctx context.Context, busID string) error
}

// Options configures a Model.
type Options struct {
	Logger   *zap.Logger
	Timeout  time.Duration // Per request; zero means no limit
	PerPage  int
	Location *time.Location
}

type loadedMsg struct{ items []bizdir.Business }

type createdMsg struct{ business bizdir.Business }

type deletedMsg struct{ busID string }

type errMsg struct {
	op  string
	err error
}

func (e errMsg) Error() string { return e.op + ": " + e.err.Error() }

const (
	filterStatus = iota
	filterFrom
	filterTo
	filterFields
)

const (
	createName = iota
	createStatus
	createFields
)

// Model is the bubbletea model of the business table.
type Model struct {
	api     API
	logger  *zap.Logger
	timeout time.Duration

	state   view.State
	table   table.Model
	search  textinput.Model
	typing  bool
	filters [filterFields]textinput.Model
	fFocus  int
	creates [createFields]textinput.Model
	cFocus  int

	loading bool
	notice  string
	err     error
	styles  Styles
}

// New returns a Model backed by api.
func New(api API, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	state := view.NewState()
	if opts.PerPage > 0 {
		state.PerPage = opts.PerPage
	}
	if opts.Location != nil {
		state.Location = opts.Location
	}

	t := table.New(
		table.WithFocused(true),
		table.WithHeight(state.PerPage+1),
	)

	search := textinput.New()
	search.Placeholder = "Search..."
	search.CharLimit = 100
	search.Width = 40

	m := Model{
		api:     api,
		logger:  opts.Logger,
		timeout: opts.Timeout,
		state:   state,
		table:   t,
		search:  search,
		loading: true,
		styles:  DefaultStyles(),
	}

	for i, placeholder := range []string{"", "YYYY-MM-DD", "YYYY-MM-DD"} {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = len(view.DateLayout)
		in.Width = 12
		m.filters[i] = in
	}
	for i, placeholder := range []string{"Business name", "active or inactive"} {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 100
		in.Width = 30
		m.creates[i] = in
	}

	m.sync()
	return m
}

// State returns the current view state.
func (m Model) State() view.State { return m.state }

// Err returns the last request error, or nil.
func (m Model) Err() error { return m.err }

// Init fetches the record set.
func (m Model) Init() tea.Cmd {
	return m.fetch()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width - 4)
		return m, nil

	case loadedMsg:
		m.loading = false
		m.err = nil
		m.dispatch(view.Loaded{Items: msg.items})
		return m, nil

	case createdMsg:
		m.notice = "Successfully added business " + msg.business.BusID
		m.dispatch(view.CloseCreate{})
		m.resetCreate()
		return m, m.fetch()

	case deletedMsg:
		m.notice = "Successfully deleted business " + msg.busID
		return m, m.fetch()

	case errMsg:
		m.loading = false
		m.notice = ""
		m.err = msg
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.state.CreateOpen:
			return m.updateCreate(msg)
		case m.state.FilterOpen:
			return m.updateFilter(msg)
		case m.typing:
			return m.updateSearch(msg)
		}
		return m.updateTable(msg)
	}

	return m, nil
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q":
		return m, tea.Quit
	case "/":
		m.dispatch(view.OpenSearch{Field: m.state.Search.Field})
		m.search.SetValue("")
		m.typing = true
		return m, m.search.Focus()
	case "esc":
		if m.state.Search.Active {
			m.dispatch(view.CloseSearch{})
			m.search.SetValue("")
		}
		return m, nil
	case "1", "2", "3", "4":
		m.dispatch(view.ToggleSort{Field: view.Fields[key[0]-'1']})
		return m, nil
	case "f":
		m.openFilter()
		return m, nil
	case "c":
		m.dispatch(view.ClearFilter{})
		m.search.SetValue("")
		return m, nil
	case "n":
		m.dispatch(view.OpenCreate{})
		m.cFocus = createName
		return m, m.creates[createName].Focus()
	case "x":
		row := m.table.SelectedRow()
		if row == nil {
			return m, nil
		}
		return m, m.remove(row[1])
	case "left", "h":
		m.dispatch(view.PrevPage{})
		return m, nil
	case "right", "l":
		m.dispatch(view.NextPage{})
		return m, nil
	case "+":
		m.dispatch(view.SetPerPage{PerPage: view.NextPageSize(m.state.PerPage)})
		m.table.SetHeight(m.state.PerPage + 1)
		return m, nil
	case "r":
		m.loading = true
		return m, m.fetch()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.typing = false
		m.search.Blur()
		m.search.SetValue("")
		m.dispatch(view.CloseSearch{})
		return m, nil
	case "enter":
		m.typing = false
		m.search.Blur()
		return m, nil
	case "tab":
		m.dispatch(view.OpenSearch{Field: m.state.Search.Field.Next()})
		m.search.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.dispatch(view.SetQuery{Query: m.search.Value()})
	return m, cmd
}

func (m *Model) openFilter() {
	m.dispatch(view.OpenFilter{})
	m.filters[filterFrom].SetValue(m.state.Draft.From)
	m.filters[filterTo].SetValue(m.state.Draft.To)
	m.fFocus = filterStatus
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "esc":
		m.dispatch(view.CancelFilter{})
		m.blurAll()
		return m, nil
	case "enter":
		m.editDraft(m.state.Draft.Status)
		m.dispatch(view.ApplyFilter{})
		m.blurAll()
		return m, nil
	case "tab", "shift+tab":
		m.filters[m.fFocus].Blur()
		if key == "tab" {
			m.fFocus = (m.fFocus + 1) % filterFields
		} else {
			m.fFocus = (m.fFocus + filterFields - 1) % filterFields
		}
		if m.fFocus == filterStatus {
			return m, nil
		}
		return m, m.filters[m.fFocus].Focus()
	}

	if m.fFocus == filterStatus {
		switch msg.String() {
		case "s", " ", "left", "right":
			m.editDraft(m.state.Draft.Status.Next())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filters[m.fFocus], cmd = m.filters[m.fFocus].Update(msg)
	m.editDraft(m.state.Draft.Status)
	return m, cmd
}

func (m *Model) editDraft(status view.Status) {
	m.dispatch(view.EditFilter{
		Status: status,
		From:   strings.TrimSpace(m.filters[filterFrom].Value()),
		To:     strings.TrimSpace(m.filters[filterTo].Value()),
	})
}

func (m Model) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "esc":
		m.dispatch(view.CloseCreate{})
		m.resetCreate()
		return m, nil
	case "enter":
		in := bizdir.CreateInput{
			Name:   m.creates[createName].Value(),
			Status: m.creates[createStatus].Value(),
		}
		return m, m.create(in)
	case "tab", "shift+tab":
		m.creates[m.cFocus].Blur()
		if key == "tab" {
			m.cFocus = (m.cFocus + 1) % createFields
		} else {
			m.cFocus = (m.cFocus + createFields - 1) % createFields
		}
		return m, m.creates[m.cFocus].Focus()
	}

	var cmd tea.Cmd
	m.creates[m.cFocus], cmd = m.creates[m.cFocus].Update(msg)
	return m, cmd
}

func (m *Model) resetCreate() {
	for i := range m.creates {
		m.creates[i].SetValue("")
		m.creates[i].Blur()
	}
	m.cFocus = createName
}

func (m *Model) blurAll() {
	for i := range m.filters {
		m.filters[i].Blur()
	}
}

// dispatch reduces a and refreshes the table rows.
func (m *Model) dispatch(a view.Action) {
	m.state = view.Reduce(m.state, a)
	m.sync()
}

func (m *Model) sync() {
	cols := make([]table.Column, len(view.Fields))
	for i, f := range view.Fields {
		title := fmt.Sprintf("%d %s", i+1, f.Label())
		if m.state.Sort.Active && m.state.Sort.Field == f {
			if m.state.Sort.Desc {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		width := 16
		if f == view.FieldCreatedAt {
			width = 26
		}
		cols[i] = table.Column{Title: title, Width: width}
	}

	page := view.Window(m.state)
	rows := make([]table.Row, len(page))
	for i, b := range page {
		row := make(table.Row, len(view.Fields))
		for j, f := range view.Fields {
			row[j] = f.Value(b)
		}
		rows[i] = row
	}

	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m Model) requestContext() (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), m.timeout)
}

func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		items, err := m.api.List(ctx)
		if err != nil {
			m.logger.Warn("failed to fetch businesses", zap.Error(err))
			return errMsg{op: "Could not fetch data", err: err}
		}
		return loadedMsg{items: items}
	}
}

func (m Model) create(in bizdir.CreateInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		b, err := m.api.Create(ctx, in)
		if err != nil {
			m.logger.Warn("failed to create business", zap.Error(err))
			return errMsg{op: "Could not add business", err: err}
		}
		m.logger.Info("business created", zap.String("busId", b.BusID))
		return createdMsg{business: b}
	}
}

func (m Model) remove(busID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		if err := m.api.Delete(ctx, busID); err != nil {
			m.logger.Warn("failed to delete business", zap.String("busId", busID), zap.Error(err))
			return errMsg{op: "Could not delete business", err: err}
		}
		m.logger.Info("business deleted", zap.String("busId", busID))
		return deletedMsg{busID: busID}
	}
}

// View renders the model.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Header.Render("Businesses"))
	sb.WriteString("\n\n")

	switch {
	case m.state.CreateOpen:
		sb.WriteString(m.renderCreate())
	case m.state.FilterOpen:
		sb.WriteString(m.renderFilter())
	default:
		if m.state.Search.Active {
			sb.WriteString(m.renderSearch())
			sb.WriteString("\n")
		}
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
		if m.state.ShowPager() {
			sb.WriteString(m.renderPager())
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(m.renderStatus())
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render(m.help()))
	return sb.String()
}

func (m Model) renderSearch() string {
	style := m.styles.Field
	if m.typing {
		style = m.styles.Focused
	}
	label := m.styles.Muted.Render("Search " + m.state.Search.Field.Label())
	return lipgloss.JoinHorizontal(lipgloss.Center, style.Render(m.search.View()), "  ", label)
}

func (m Model) renderPager() string {
	pages := m.state.Pages()
	var parts []string
	parts = append(parts, m.styles.Muted.Render("‹"))
	for p := 1; p <= pages; p++ {
		label := fmt.Sprintf("%d", p)
		if p == m.state.Page {
			parts = append(parts, m.styles.Active.Render(label))
		} else {
			parts = append(parts, label)
		}
	}
	parts = append(parts, m.styles.Muted.Render("›"))
	return strings.Join(parts, " ") + m.styles.Muted.Render(fmt.Sprintf("   %d per page", m.state.PerPage))
}

func (m Model) renderFilter() string {
	var sb strings.Builder
	sb.WriteString("Filter\n\n")

	var statuses []string
	for _, st := range []view.Status{view.StatusAll, view.StatusActive, view.StatusInactive} {
		if st == m.state.Draft.Status {
			statuses = append(statuses, m.styles.Active.Render(string(st)))
		} else {
			statuses = append(statuses, m.styles.Muted.Render(string(st)))
		}
	}
	marker := "  "
	if m.fFocus == filterStatus {
		marker = "> "
	}
	sb.WriteString(marker + "Status: " + strings.Join(statuses, "  ") + "\n")

	for i, label := range []string{"From", "To"} {
		idx := filterFrom + i
		style := m.styles.Field
		if m.fFocus == idx {
			style = m.styles.Focused
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, fmt.Sprintf("  %-7s", label), style.Render(m.filters[idx].View())))
		sb.WriteString("\n")
	}

	return m.styles.Dialog.Render(sb.String())
}

func (m Model) renderCreate() string {
	var sb strings.Builder
	sb.WriteString("Add business\n\n")
	for i, label := range []string{"Name", "Status"} {
		style := m.styles.Field
		if m.cFocus == i {
			style = m.styles.Focused
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, fmt.Sprintf("%-8s", label), style.Render(m.creates[i].View())))
		sb.WriteString("\n")
	}
	return m.styles.Dialog.Render(sb.String())
}

func (m Model) renderStatus() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render(m.err.Error())
	case m.loading:
		return m.styles.Muted.Render("Loading...")
	case m.notice != "":
		return m.styles.Success.Render(m.notice)
	}
	derived := len(view.Derive(m.state))
	if derived != len(m.state.Original) {
		return m.styles.Muted.Render(fmt.Sprintf("Showing %d of %d businesses", derived, len(m.state.Original)))
	}
	return m.styles.Muted.Render(fmt.Sprintf("%d businesses", derived))
}

func (m Model) help() string {
	switch {
	case m.state.CreateOpen:
		return "[tab] next field  [enter] add  [esc] cancel"
	case m.state.FilterOpen:
		return "[tab] next field  [s] status  [enter] apply  [esc] cancel"
	case m.typing:
		return "[tab] column  [enter] done  [esc] close"
	}
	return "[/] search  [1-4] sort  [f] filter  [c] clear  [n] new  [x] delete  [←/→] page  [+] size  [r] reload  [q] quit"
}
