package chart

import (
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/resdesk/internal/dashboard"
	"github.com/julianstephens/resdesk/internal/models"
)

func TestRenderOneLinePerDay(t *testing.T) {
	c := dashboard.Chart{
		Points: []models.ChartPoint{
			{Date: "2025-06-01", Value: 2},
			{Date: "2025-06-02", Value: 0},
			{Date: "2025-06-03", Value: 1},
		},
		Total: 3,
		Trend: -1,
	}

	out := Render(c, 40)
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "06-01") || !strings.HasSuffix(lines[0], " 2") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if strings.Contains(lines[1], "█") {
		t.Errorf("zero day should have no bar: %q", lines[1])
	}
	if !strings.Contains(lines[3], "Total 3") {
		t.Errorf("missing total line: %q", lines[3])
	}
}

func TestToggleRange(t *testing.T) {
	m := New()
	if got := m.ToggleRange(); got != dashboard.LastMonth {
		t.Errorf("ToggleRange() = %s, want lastMonth", got)
	}
	if got := m.ToggleRange(); got != dashboard.LastWeek {
		t.Errorf("ToggleRange() = %s, want lastWeek", got)
	}
	if !m.Loading {
		t.Error("toggling the range should mark the chart as loading")
	}
}

func TestViewShowsError(t *testing.T) {
	m := New()
	m.SetError(errors.New("boom"))
	if !strings.Contains(m.View(), "boom") {
		t.Errorf("error not rendered: %q", m.View())
	}
}
