package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Iron-Ham/botswitch/internal/task"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	cancelledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
)

// WriterSink prints notifications as single lines, for headless runs.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a WriterSink on w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Notify implements Sink.
func (s *WriterSink) Notify(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, Format(n))
}

// Format renders a notification on one line. Multi-line texts are joined.
func Format(n Notification) string {
	text := strings.ReplaceAll(n.Text, "\n", " ")
	stamp := mutedStyle.Render(n.At.Format("15:04:05"))

	switch n.Slot {
	case SlotStateChanged:
		return fmt.Sprintf("%s %s %s", stamp, titleStyle.Render(n.Title+":"), KindStyle(n.Kind).Render(text))
	case SlotStatus:
		return fmt.Sprintf("%s %s", stamp, mutedStyle.Render("["+text+"]"))
	default:
		return fmt.Sprintf("%s %s", stamp, text)
	}
}

// KindStyle returns the color style used for an outcome kind.
func KindStyle(kind task.Kind) lipgloss.Style {
	switch kind {
	case task.KindSuccess:
		return successStyle
	case task.KindCancelled:
		return cancelledStyle
	case task.KindFailed:
		return failedStyle
	default:
		return lipgloss.NewStyle()
	}
}
