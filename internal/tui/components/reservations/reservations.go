// Package reservations is the paginated reservation table
package reservations

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/resdesk/internal/adapter"
	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/models"
	resv "github.com/julianstephens/resdesk/internal/reservations"
	"github.com/julianstephens/resdesk/internal/transition"
	"github.com/julianstephens/resdesk/internal/tui/components/recent"
)

// ReloadMsg asks the parent to fetch the page described by Query
type ReloadMsg struct {
	Query resv.Query
}

type OpenDetailMsg struct {
	ID string
}

// ActionMsg requests a status change for a row
type ActionMsg struct {
	Reservation models.Reservation
	Action      transition.Action
}

type DeleteMsg struct {
	Reservation models.Reservation
}

type KeyMap struct {
	Open     key.Binding
	Accept   key.Binding
	Reject   key.Binding
	Pending  key.Binding
	Delete   key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	PageSize key.Binding
	Filter   key.Binding
	Sort     key.Binding
	Reload   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Accept: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "accept"),
		),
		Reject: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reject"),
		),
		Pending: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pending"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "pgdown"),
			key.WithHelp("]", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "pgup"),
			key.WithHelp("[", "prev page"),
		),
		PageSize: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "page size"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "status filter"),
		),
		Sort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sort order"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
	}
}

// Bindings lists the table keys for the help view
func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{k.Open, k.Accept, k.Reject, k.Pending, k.Delete, k.NextPage, k.PrevPage, k.PageSize, k.Filter, k.Sort, k.Reload}
}

type Model struct {
	table   table.Model
	keys    KeyMap
	items   []models.Reservation
	total   int
	page    int
	sizeIdx int
	filter  int // index into models.Statuses, -1 for all
	ascend  bool
	loading bool
	err     error
	loc     *time.Location
}

func New(loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Order", Width: 8},
			{Title: "Name", Width: 18},
			{Title: "Phone", Width: 12},
			{Title: "Guests", Width: 6},
			{Title: "Time", Width: 16},
			{Title: "Status", Width: 10},
			{Title: "Created", Width: 22},
		}),
		table.WithFocused(true),
		table.WithHeight(constants.ListDefaultPageSize+1),
	)
	t.SetStyles(table.DefaultStyles())
	return Model{
		table:  t,
		keys:   DefaultKeyMap(),
		page:   1,
		filter: -1,
		loc:    loc,
	}
}

func (m *Model) SetSize(width, height int) {
	m.table.SetWidth(width)
	if height > 4 {
		m.table.SetHeight(height - 2)
	}
}

func (m Model) Keys() KeyMap {
	return m.keys
}

// Query describes the page currently shown
func (m Model) Query() resv.Query {
	order := adapter.Desc
	if m.ascend {
		order = adapter.Asc
	}
	q := resv.Query{
		Page:     m.page,
		PageSize: constants.ListPageSizes[m.sizeIdx],
		Sorters:  []adapter.Sorter{{Field: constants.DefaultSortField, Order: order}},
	}
	if m.filter >= 0 {
		q.Status = models.Statuses[m.filter]
	}
	return q
}

// SetLoading marks a fetch in flight
func (m *Model) SetLoading() {
	m.loading = true
}

func (m *Model) SetItems(items []models.Reservation, total int) {
	m.items = items
	m.total = total
	m.loading = false
	m.err = nil
	m.table.SetRows(recent.Rows(items, m.loc))
	if m.table.Cursor() >= len(items) {
		m.table.SetCursor(max(len(items)-1, 0))
	}
}

func (m *Model) SetError(err error) {
	m.loading = false
	m.err = err
}

// Replace swaps a single row after a successful mutation
func (m *Model) Replace(r models.Reservation) {
	for i := range m.items {
		if m.items[i].ID == r.ID {
			m.items[i] = r
		}
	}
	m.table.SetRows(recent.Rows(m.items, m.loc))
}

// Selected returns the reservation under the cursor
func (m Model) Selected() (models.Reservation, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.items) {
		return models.Reservation{}, false
	}
	return m.items[i], true
}

func (m Model) pages() int {
	size := constants.ListPageSizes[m.sizeIdx]
	if m.total <= 0 {
		return 1
	}
	return (m.total + size - 1) / size
}

func (m Model) reload() tea.Cmd {
	q := m.Query()
	return func() tea.Msg { return ReloadMsg{Query: q} }
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Open):
		if r, ok := m.Selected(); ok {
			return m, func() tea.Msg { return OpenDetailMsg{ID: r.ID} }
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.Accept):
		return m, m.action(transition.ActionAccept)
	case key.Matches(keyMsg, m.keys.Reject):
		return m, m.action(transition.ActionReject)
	case key.Matches(keyMsg, m.keys.Pending):
		return m, m.action(transition.ActionPending)
	case key.Matches(keyMsg, m.keys.Delete):
		if r, ok := m.Selected(); ok {
			return m, func() tea.Msg { return DeleteMsg{Reservation: r} }
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.NextPage):
		if m.page >= m.pages() {
			return m, nil
		}
		m.page++
		return m, m.reload()
	case key.Matches(keyMsg, m.keys.PrevPage):
		if m.page <= 1 {
			return m, nil
		}
		m.page--
		return m, m.reload()
	case key.Matches(keyMsg, m.keys.PageSize):
		m.sizeIdx = (m.sizeIdx + 1) % len(constants.ListPageSizes)
		m.page = 1
		return m, m.reload()
	case key.Matches(keyMsg, m.keys.Filter):
		m.filter++
		if m.filter >= len(models.Statuses) {
			m.filter = -1
		}
		m.page = 1
		return m, m.reload()
	case key.Matches(keyMsg, m.keys.Sort):
		m.ascend = !m.ascend
		m.page = 1
		return m, m.reload()
	case key.Matches(keyMsg, m.keys.Reload):
		return m, m.reload()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// action emits an ActionMsg only when the policy enables it for the row
func (m Model) action(a transition.Action) tea.Cmd {
	r, ok := m.Selected()
	if !ok || !transition.Enabled(a, r.Status) {
		return nil
	}
	return func() tea.Msg { return ActionMsg{Reservation: r, Action: a} }
}

func (m Model) View() string {
	filter := "all"
	if m.filter >= 0 {
		filter = string(models.Statuses[m.filter])
	}
	order := "newest first"
	if m.ascend {
		order = "oldest first"
	}
	status := fmt.Sprintf("Page %d/%d, %d per page, %d total, status: %s, %s",
		m.page, m.pages(), constants.ListPageSizes[m.sizeIdx], m.total, filter, order)
	switch {
	case m.err != nil:
		status += "\nError: " + m.err.Error()
	case m.loading:
		status += ", loading..."
	}
	if len(m.items) == 0 && m.err == nil && !m.loading {
		return "No reservations found\n" + status
	}
	return m.table.View() + "\n" + status
}
