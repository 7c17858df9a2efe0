// Package notify turns controller events into user-facing notifications.
//
// There are two notification slots, mirroring a status-bar service:
//
//   - the status notification, which is ongoing and always reflects whether
//     the bot is running;
//   - the state-changed notification, which announces how a run ended.
//
// A [Center] subscribes to the event bus and forwards notifications to a
// [Sink]. Sinks decide how to render them (TUI banner, plain text, ...).
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/Iron-Ham/botswitch/internal/event"
	"github.com/Iron-Ham/botswitch/internal/task"
)

// Slot identifies which notification a message replaces.
type Slot int

const (
	// SlotStatus is the ongoing running/inactive notification.
	SlotStatus Slot = iota + 1
	// SlotStateChanged announces the outcome of a run.
	SlotStateChanged
	// SlotToast is a short-lived message that replaces nothing.
	SlotToast
)

// Status texts for the ongoing notification.
const (
	StatusRunning  = "Bot process is running"
	StatusInactive = "Bot process is currently inactive"
	// StateChangedTitle is the title of outcome notifications.
	StateChangedTitle = "Bot State Changed"
)

// Notification is one message for the user.
type Notification struct {
	Slot  Slot
	Title string
	Text  string
	// Ongoing notifications stay until replaced.
	Ongoing bool
	// Kind is set on outcome notifications.
	Kind task.Kind
	At   time.Time
}

// Sink receives notifications. Implementations must return quickly.
type Sink interface {
	Notify(Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notification)

// Notify calls f(n).
func (f SinkFunc) Notify(n Notification) { f(n) }

// Center maps bus events to notifications.
type Center struct {
	appName string
	sink    Sink

	mu      sync.Mutex
	bus     *event.Bus
	subIDs  []string
	running bool
}

// NewCenter creates a Center for appName delivering to sink.
func NewCenter(appName string, sink Sink) *Center {
	return &Center{appName: appName, sink: sink}
}

// Attach subscribes the Center to bus and posts the initial inactive
// status.
func (c *Center) Attach(bus *event.Bus) {
	c.mu.Lock()
	c.bus = bus
	c.subIDs = append(c.subIDs,
		bus.Subscribe(event.TypeRunStateChanged, c.onStateChanged),
		bus.Subscribe(event.TypeRunOutcome, c.onOutcome),
	)
	c.mu.Unlock()

	c.sink.Notify(c.status(false, time.Now()))
}

// Detach removes the Center's subscriptions.
func (c *Center) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bus == nil {
		return
	}
	for _, id := range c.subIDs {
		c.bus.Unsubscribe(id)
	}
	c.subIDs = nil
	c.bus = nil
}

// Running reports the last status the Center saw.
func (c *Center) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Center) onStateChanged(e event.Event) {
	sc, ok := e.(event.RunStateChangedEvent)
	if !ok {
		return
	}

	c.mu.Lock()
	c.running = sc.Running
	c.mu.Unlock()

	if sc.Running {
		c.sink.Notify(Notification{
			Slot:  SlotToast,
			Title: c.appName,
			Text:  fmt.Sprintf("Bot Service for %s is now running.", c.appName),
			At:    sc.Timestamp(),
		})
	}
	c.sink.Notify(c.status(sc.Running, sc.Timestamp()))
}

func (c *Center) onOutcome(e event.Event) {
	oe, ok := e.(event.RunOutcomeEvent)
	if !ok {
		return
	}
	c.sink.Notify(Notification{
		Slot:  SlotStateChanged,
		Title: StateChangedTitle,
		Text:  oe.Outcome.Message,
		Kind:  oe.Outcome.Kind,
		At:    oe.Timestamp(),
	})
}

func (c *Center) status(running bool, at time.Time) Notification {
	text := StatusInactive
	if running {
		text = StatusRunning
	}
	return Notification{
		Slot:    SlotStatus,
		Title:   c.appName,
		Text:    text,
		Ongoing: true,
		At:      at,
	}
}
