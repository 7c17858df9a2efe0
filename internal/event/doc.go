// Package event provides the pub-sub plumbing that decouples the task
// controller from whatever presents its state to the user.
//
// # Main Types
//
//   - [Event]: Interface that all events implement (EventType, Timestamp)
//   - [Bus]: Synchronous, panic-safe pub-sub dispatcher
//   - [Notifier]: Fire-and-forget publisher on top of a Bus
//
// # Events
//
//   - [RunStateChangedEvent] ("run.state_changed"): a run started or stopped
//   - [RunOutcomeEvent] ("run.outcome"): the terminal outcome of a run
//   - [LogSavedEvent] ("log.saved"): a run's message log was persisted
//   - [ControlMovedEvent] ("control.moved"): the control surface was dragged
//
// # Delivery
//
// [Bus.Publish] runs handlers on the caller's goroutine. [Notifier.Publish]
// queues the event for a background goroutine and returns at once, so a
// task worker never waits on presentation code. Queued events are delivered
// in publish order. Events published with no subscribers are dropped.
//
//	bus := event.NewBus()
//	bus.Subscribe(event.TypeRunOutcome, func(e event.Event) {
//	    out := e.(event.RunOutcomeEvent)
//	    fmt.Println(out.Outcome.Message)
//	})
//
//	notifier := event.NewNotifier(bus)
//	notifier.Publish(event.NewRunOutcomeEvent(runID, outcome))
//	notifier.Wait() // only needed in tests and at shutdown
package event
