package event

import (
	"time"

	"github.com/Iron-Ham/botswitch/internal/task"
)

// Event is the interface that all events implement.
type Event interface {
	// EventType returns the "category.action" identifier of the event.
	EventType() string
	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeRunStateChanged = "run.state_changed"
	TypeRunOutcome      = "run.outcome"
	TypeLogSaved        = "log.saved"
	TypeControlMoved    = "control.moved"
)

// baseEvent provides the Event methods to concrete types.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// RunStateChangedEvent is emitted when the controller moves between idle
// and running.
type RunStateChangedEvent struct {
	baseEvent
	RunID   string
	Running bool
}

// NewRunStateChangedEvent creates a RunStateChangedEvent.
func NewRunStateChangedEvent(runID string, running bool) RunStateChangedEvent {
	return RunStateChangedEvent{
		baseEvent: newBaseEvent(TypeRunStateChanged),
		RunID:     runID,
		Running:   running,
	}
}

// RunOutcomeEvent carries the terminal outcome of a run. It is published
// exactly once per run.
type RunOutcomeEvent struct {
	baseEvent
	RunID   string
	Outcome task.Outcome
}

// NewRunOutcomeEvent creates a RunOutcomeEvent.
func NewRunOutcomeEvent(runID string, outcome task.Outcome) RunOutcomeEvent {
	return RunOutcomeEvent{
		baseEvent: newBaseEvent(TypeRunOutcome),
		RunID:     runID,
		Outcome:   outcome,
	}
}

// LogSavedEvent is emitted after a run's message log is written.
type LogSavedEvent struct {
	baseEvent
	RunID  string
	Record string // Name of the record written
	Lines  int    // Number of lines written
	Wiped  int    // Records removed by the retention wipe
}

// NewLogSavedEvent creates a LogSavedEvent.
func NewLogSavedEvent(runID, record string, lines, wiped int) LogSavedEvent {
	return LogSavedEvent{
		baseEvent: newBaseEvent(TypeLogSaved),
		RunID:     runID,
		Record:    record,
		Lines:     lines,
		Wiped:     wiped,
	}
}

// ControlMovedEvent is emitted when a drag finishes repositioning the
// control surface.
type ControlMovedEvent struct {
	baseEvent
	X, Y int
}

// NewControlMovedEvent creates a ControlMovedEvent.
func NewControlMovedEvent(x, y int) ControlMovedEvent {
	return ControlMovedEvent{baseEvent: newBaseEvent(TypeControlMoved), X: x, Y: y}
}
