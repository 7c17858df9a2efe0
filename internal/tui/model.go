package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Iron-Ham/botswitch/internal/controller"
	"github.com/Iron-Ham/botswitch/internal/event"
	"github.com/Iron-Ham/botswitch/internal/gesture"
	"github.com/Iron-Ham/botswitch/internal/messagelog"
	"github.com/Iron-Ham/botswitch/internal/notify"
	"github.com/Iron-Ham/botswitch/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// Switch is the part of the controller the control surface drives.
type Switch interface {
	Toggle() controller.Transition
	Stop() controller.Transition
	Stopping() bool
	CurrentRun() (controller.Run, bool)
	Close(ctx context.Context) error
}

// logTailLines is how many message-log lines the status panel shows.
const logTailLines = 4

// footerHeight is the fixed height of the status panel: rule, status,
// notification, run line, log tail, help.
const footerHeight = 4 + logTailLines + 1

// Model holds the TUI state
type Model struct {
	sw         Switch
	buffer     *messagelog.Buffer
	classifier *gesture.Classifier
	publisher  event.Publisher
	now        func() time.Time

	notifications <-chan notify.Notification
	recordCounts  <-chan int

	keys keyMap
	help help.Model

	appName string
	width   int
	height  int

	status   notify.Notification
	last     notify.Notification
	toast    notify.Notification
	records  int
	counting bool

	quitting bool
}

// ModelOptions configures a Model.
type ModelOptions struct {
	AppName    string
	Switch     Switch
	Buffer     *messagelog.Buffer
	Classifier *gesture.Classifier
	// Publisher receives control.moved events. Optional.
	Publisher event.Publisher
	// Notifications feeds the status panel. Optional.
	Notifications <-chan notify.Notification
	// RecordCounts reports the number of saved message logs. Optional.
	RecordCounts <-chan int
	Now          func() time.Time
}

// NewModel creates the control surface model
func NewModel(opts ModelOptions) Model {
	m := Model{
		sw:            opts.Switch,
		buffer:        opts.Buffer,
		classifier:    opts.Classifier,
		publisher:     opts.Publisher,
		now:           opts.Now,
		notifications: opts.Notifications,
		recordCounts:  opts.RecordCounts,
		keys:          defaultKeyMap(),
		help:          help.New(),
		appName:       opts.AppName,
		status:        notify.Notification{Slot: notify.SlotStatus, Text: notify.StatusInactive},
	}
	if m.buffer == nil {
		m.buffer = messagelog.NewBuffer()
	}
	if m.classifier == nil {
		m.classifier = gesture.NewClassifier(gesture.DefaultTapThreshold, gesture.Position{})
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Messages

type tickMsg time.Time

type notificationMsg notify.Notification

type recordCountMsg struct {
	count int
	ok    bool
}

// Commands

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForNotification(ch <-chan notify.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg(n)
	}
}

func waitForRecordCount(ch <-chan int) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		return recordCountMsg{count: n, ok: ok}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tick(),
		waitForNotification(m.notifications),
		waitForRecordCount(m.recordCounts),
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.classifier.SetBounds(m.bounds())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case notificationMsg:
		n := notify.Notification(msg)
		switch n.Slot {
		case notify.SlotStatus:
			m.status = n
		case notify.SlotToast:
			m.toast = n
		default:
			m.last = n
		}
		return m, waitForNotification(m.notifications)

	case recordCountMsg:
		if !msg.ok {
			m.recordCounts = nil
			return m, nil
		}
		m.records = msg.count
		m.counting = true
		return m, waitForRecordCount(m.recordCounts)

	case tickMsg:
		return m, tick()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Stop):
		m.sw.Stop()
	case key.Matches(msg, m.keys.Toggle):
		m.sw.Toggle()
	}
	return m, nil
}

// handleMouse feeds pointer events to the gesture classifier. Only presses
// that land on the button open a gesture.
func (m Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !m.hitButton(msg.X, msg.Y) {
			return
		}
		m.classifier.Down(msg.X, msg.Y, m.now())

	case tea.MouseActionMotion:
		if m.classifier.Active() {
			m.classifier.Move(msg.X, msg.Y)
		}

	case tea.MouseActionRelease:
		if !m.classifier.Active() {
			return
		}
		action := m.classifier.Up(m.now())
		switch action.Kind {
		case gesture.Toggle:
			m.sw.Toggle()
		case gesture.Reposition:
			if m.publisher != nil {
				pos := m.classifier.Position()
				m.publisher.Publish(event.NewControlMovedEvent(pos.X, pos.Y))
			}
		}
	}
}

func (m Model) canvasHeight() int {
	return max(m.height-footerHeight, 0)
}

// bounds is the area the button's top-left corner may occupy so that the
// whole button stays on the canvas.
func (m Model) bounds() gesture.Bounds {
	return gesture.Bounds{
		MaxX: max(m.width-styles.ButtonWidth, 0),
		MaxY: max(m.canvasHeight()-styles.ButtonHeight, 0),
	}
}

// buttonOrigin is the on-screen position of the button. The classifier
// keeps its position inside bounds once the window size is known.
func (m Model) buttonOrigin() gesture.Position {
	return m.bounds().Clamp(m.classifier.Position())
}

func (m Model) hitButton(x, y int) bool {
	o := m.buttonOrigin()
	return x >= o.X && x < o.X+styles.ButtonWidth &&
		y >= o.Y && y < o.Y+styles.ButtonHeight
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Starting..."
	}
	return m.renderCanvas() + "\n" + m.renderFooter()
}

func (m Model) renderButton() string {
	_, running := m.sw.CurrentRun()
	switch {
	case running && m.sw.Stopping():
		return styles.ButtonStopping.Render("STOPPING")
	case running:
		return styles.ButtonRunning.Render("■ STOP")
	default:
		return styles.ButtonIdle.Render("▶ START")
	}
}

func (m Model) renderCanvas() string {
	h := m.canvasHeight()
	lines := make([]string, h)
	o := m.buttonOrigin()
	pad := strings.Repeat(" ", o.X)
	for i, l := range strings.Split(m.renderButton(), "\n") {
		if row := o.Y + i; row < h {
			lines[row] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	lines := make([]string, 0, footerHeight)
	lines = append(lines, styles.Rule.Render(strings.Repeat("─", m.width)))

	statusStyle := styles.Muted
	if m.status.Text == notify.StatusRunning {
		statusStyle = styles.Secondary
	}
	lines = append(lines, m.truncate(styles.Title.Render(m.appName)+" "+statusStyle.Render(m.status.Text)))

	switch {
	case m.last.Text != "":
		lines = append(lines, m.truncate(notify.Format(m.last)))
	case m.toast.Text != "":
		lines = append(lines, m.truncate(notify.Format(m.toast)))
	default:
		lines = append(lines, "")
	}

	runLine := "no active run"
	if run, ok := m.sw.CurrentRun(); ok {
		runLine = fmt.Sprintf("run %s · %s", run.ID, m.now().Sub(run.StartedAt).Truncate(time.Second))
	}
	if m.counting {
		runLine += fmt.Sprintf(" · %d saved logs", m.records)
	}
	lines = append(lines, m.truncate(styles.Muted.Render(runLine)))

	tail := m.buffer.Tail(logTailLines)
	for i := range logTailLines {
		if i < len(tail) {
			line := strings.ReplaceAll(tail[i], "\n", " ")
			lines = append(lines, m.truncate(styles.LogLine.Render(line)))
		} else {
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

func (m Model) truncate(s string) string {
	return ansi.Truncate(s, m.width, "…")
}
