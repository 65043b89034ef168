// Package recent renders the dashboard grid of newest reservations
package recent

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/models"
)

var errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

type Model struct {
	table   table.Model
	items   []models.Reservation
	total   int
	loading bool
	err     error
	loc     *time.Location
}

func columns() []table.Column {
	return []table.Column{
		{Title: "Order", Width: 8},
		{Title: "Name", Width: 18},
		{Title: "Phone", Width: 12},
		{Title: "Guests", Width: 6},
		{Title: "Time", Width: 16},
		{Title: "Status", Width: 10},
		{Title: "Created", Width: 22},
	}
}

func New(loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	t := table.New(
		table.WithColumns(columns()),
		table.WithHeight(constants.RecentGridPageSize+1),
	)
	t.SetStyles(table.DefaultStyles())
	return Model{table: t, loading: true, loc: loc}
}

func (m *Model) SetSize(width, height int) {
	m.table.SetWidth(width)
}

// SetItems replaces the grid rows with a freshly fetched page
func (m *Model) SetItems(items []models.Reservation, total int) {
	m.items = items
	m.total = total
	m.loading = false
	m.err = nil
	m.table.SetRows(Rows(items, m.loc))
}

func (m *Model) SetError(err error) {
	m.loading = false
	m.err = err
}

func (m Model) Items() []models.Reservation {
	return m.items
}

func (m Model) View() string {
	header := fmt.Sprintf("Recent reservations (%d total)", m.total)
	switch {
	case m.err != nil:
		return header + "\n" + errStyle.Render("Failed to load reservations: "+m.err.Error())
	case m.loading && len(m.items) == 0:
		return header + "\nLoading..."
	}
	return header + "\n" + m.table.View()
}

// Rows converts reservations to table rows
func Rows(items []models.Reservation, loc *time.Location) []table.Row {
	rows := make([]table.Row, len(items))
	for i, r := range items {
		created := ""
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.In(loc).Format(constants.DisplayDateTimeFormat)
		}
		rows[i] = table.Row{
			r.Label(),
			r.Name,
			r.Phone,
			strconv.Itoa(r.GuestCount),
			r.ReservationTime(),
			string(r.Status),
			created,
		}
	}
	return rows
}
