package chart

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/dashboard"
)

var (
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(7)
	titleStyle = lipgloss.NewStyle().Bold(true)
	upStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	downStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type Model struct {
	Chart   dashboard.Chart
	Range   dashboard.Range
	Loading bool
	Err     error
	width   int
}

func New() Model {
	return Model{Range: dashboard.LastWeek, Loading: true}
}

func (m *Model) SetSize(width int) {
	m.width = width
}

// SetChart replaces the chart after a successful load
func (m *Model) SetChart(c dashboard.Chart) {
	m.Chart = c
	m.Loading = false
	m.Err = nil
}

func (m *Model) SetError(err error) {
	m.Loading = false
	m.Err = err
}

// ToggleRange switches between the week and month windows
func (m *Model) ToggleRange() dashboard.Range {
	if m.Range == dashboard.LastWeek {
		m.Range = dashboard.LastMonth
	} else {
		m.Range = dashboard.LastWeek
	}
	m.Loading = true
	return m.Range
}

func (m Model) View() string {
	header := titleStyle.Render("Reservations " + m.Range.Label())
	switch {
	case m.Err != nil:
		return header + "\n" + downStyle.Render("Failed to load chart: "+m.Err.Error())
	case m.Loading && len(m.Chart.Points) == 0:
		return header + "\nLoading..."
	}
	return header + "\n" + Render(m.Chart, m.width)
}

// Render draws one horizontal bar per day followed by the total and trend
func Render(c dashboard.Chart, width int) string {
	barWidth := width - 14
	if barWidth < 10 {
		barWidth = 30
	}
	peak := c.Max()

	var b strings.Builder
	for _, p := range c.Points {
		n := 0
		if peak > 0 {
			n = p.Value * barWidth / peak
		}
		if p.Value > 0 && n == 0 {
			n = 1
		}
		fmt.Fprintf(&b, "%s %s %d\n",
			labelStyle.Render(dayLabel(p.Date)),
			barStyle.Render(strings.Repeat("█", n)),
			p.Value,
		)
	}
	fmt.Fprintf(&b, "Total %d, trend %s", c.Total, trend(c.Trend))
	return b.String()
}

func dayLabel(date string) string {
	t, err := time.Parse(constants.DateFormat, date)
	if err != nil {
		return date
	}
	return t.Format("01-02")
}

func trend(n int) string {
	switch {
	case n > 0:
		return upStyle.Render(fmt.Sprintf("+%d", n))
	case n < 0:
		return downStyle.Render(fmt.Sprintf("%d", n))
	default:
		return "0"
	}
}
