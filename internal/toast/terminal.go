package toast

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/resdesk/internal/constants"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Writer prints toasts as single lines, for commands that do not own the
// whole terminal
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Show(t Toast) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintf(w.w, "%s %s  %s\n",
		timeStyle.Render(t.At.Format(constants.DisplayDateTimeFormat)),
		titleStyle.Render(t.Title),
		t.Description,
	)
	return err
}
