// Package controller owns the single task slot behind the control surface.
//
// The controller is a two-state machine:
//
//	Idle --Toggle--> Running --Toggle/Stop--> (cancelling) --cleanup--> Idle
//
// Starting a run resets the message log, marks the controller Running,
// publishes a state change and spawns one worker goroutine. Toggling a
// running controller cancels the run's context; the task is expected to
// notice and return. The controller never abandons or kills a worker, and
// there is no timeout: a task that ignores cancellation keeps the
// controller Running.
//
// The worker turns the task's result into exactly one [task.Outcome],
// publishes it, then runs cleanup on its own goroutine: the message log is
// flushed once, the state returns to Idle and a second state change is
// published. Cleanup is idempotent per run.
//
// # Toggle during cancellation
//
// A toggle that arrives after cancellation was requested but before
// cleanup finished is ignored and reported as [Ignored]. The user sees the
// control as stopping, and the next toggle after cleanup starts a new run.
//
// # Basic Usage
//
//	ctrl := controller.New(myTask, controller.Options{
//	    Store:     messagelog.NewFileStore(dir),
//	    Publisher: event.NewNotifier(bus),
//	})
//	ctrl.Toggle() // start
//	ctrl.Toggle() // request stop
//	_ = ctrl.Wait(ctx)
package controller
