//go:build cucumber

package controller_test

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/botswitch/internal/controller"
	"github.com/Iron-Ham/botswitch/internal/event"
	"github.com/Iron-Ham/botswitch/internal/gesture"
	"github.com/Iron-Ham/botswitch/internal/messagelog"
	"github.com/Iron-Ham/botswitch/internal/task"
	"github.com/cucumber/godog"
)

// TestToggleFeatures executes the toggle switch scenarios via godog.
func TestToggleFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "toggle",
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{filepath.Join("features", "toggle.feature")},
			Strict:   true,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeScenario wires step definitions for the toggle feature.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &toggleState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		return ctx, state.close()
	})

	ctx.Step(`^an idle controller with a task that waits for cancellation$`, state.givenBlockingTask)
	ctx.Step(`^an idle controller with a task that logs "([^"]+)", "([^"]+)", "([^"]+)"$`, state.givenLoggingTask)
	ctx.Step(`^I toggle the switch$`, state.toggle)
	ctx.Step(`^the run state is "([^"]+)"$`, state.runStateIs)
	ctx.Step(`^the message log is empty$`, state.messageLogEmpty)
	ctx.Step(`^the task is running$`, state.taskRunning)
	ctx.Step(`^the controller returns to idle$`, state.returnsToIdle)
	ctx.Step(`^the outcome is "([^"]+)"$`, state.outcomeIs)
	ctx.Step(`^the store received (\d+) records?$`, state.storeReceived)
	ctx.Step(`^the saved record contains exactly:$`, state.savedRecordContains)
	ctx.Step(`^a control at (-?\d+), (-?\d+)$`, state.givenControl)
	ctx.Step(`^I drag the control by (-?\d+), (-?\d+) over (\d+) milliseconds$`, state.drag)
	ctx.Step(`^the control is at (-?\d+), (-?\d+)$`, state.controlAt)
	ctx.Step(`^no toggle occurred$`, state.noToggle)
}

// toggleState holds scenario state for the feature tests.
type toggleState struct {
	ctrl    *controller.Controller
	store   *messagelog.MemoryStore
	started chan struct{}

	mu       sync.Mutex
	outcomes []task.Outcome

	classifier *gesture.Classifier
	action     gesture.Action
}

func (s *toggleState) reset() {
	s.ctrl = nil
	s.store = nil
	s.started = nil
	s.classifier = nil
	s.action = gesture.Action{}

	s.mu.Lock()
	s.outcomes = nil
	s.mu.Unlock()
}

func (s *toggleState) close() error {
	if s.ctrl == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.ctrl.Close(ctx)
}

// Publish records outcomes; it is the controller's publisher.
func (s *toggleState) Publish(e event.Event) {
	if oe, ok := e.(event.RunOutcomeEvent); ok {
		s.mu.Lock()
		s.outcomes = append(s.outcomes, oe.Outcome)
		s.mu.Unlock()
	}
}

func (s *toggleState) newController(t task.Task) {
	s.store = messagelog.NewMemoryStore()
	s.ctrl = controller.New(t, controller.Options{Store: s.store, Publisher: s})
}

func (s *toggleState) givenBlockingTask() error {
	s.started = make(chan struct{}, 1)
	s.newController(task.Func(func(ctx context.Context, _ task.Log) (string, error) {
		s.started <- struct{}{}
		<-ctx.Done()
		return "", ctx.Err()
	}))
	return nil
}

func (s *toggleState) givenLoggingTask(a, b, c string) error {
	s.newController(task.Func(func(ctx context.Context, log task.Log) (string, error) {
		for _, line := range []string{a, b, c} {
			log.Printf("%s", line)
		}
		return "", nil
	}))
	return nil
}

func (s *toggleState) toggle() error {
	if s.ctrl == nil {
		return fmt.Errorf("no controller")
	}
	s.ctrl.Toggle()
	return nil
}

func (s *toggleState) runStateIs(want string) error {
	if got := s.ctrl.State().String(); got != want {
		return fmt.Errorf("run state = %q, want %q", got, want)
	}
	return nil
}

func (s *toggleState) messageLogEmpty() error {
	if n := s.ctrl.Buffer().Len(); n != 0 {
		return fmt.Errorf("message log has %d lines, want 0", n)
	}
	return nil
}

func (s *toggleState) taskRunning() error {
	select {
	case <-s.started:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("task did not start")
	}
}

func (s *toggleState) returnsToIdle() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.ctrl.Wait(ctx); err != nil {
		return fmt.Errorf("controller did not return to idle: %w", err)
	}
	if s.ctrl.State() != controller.Idle {
		return fmt.Errorf("run state = %v, want idle", s.ctrl.State())
	}
	return nil
}

func (s *toggleState) outcomeIs(want string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.outcomes) != 1 {
		return fmt.Errorf("got %d outcomes, want 1", len(s.outcomes))
	}
	if got := string(s.outcomes[0].Kind); got != want {
		return fmt.Errorf("outcome = %q, want %q", got, want)
	}
	return nil
}

func (s *toggleState) storeReceived(n int) error {
	if got := s.store.Writes(); got != n {
		return fmt.Errorf("store writes = %d, want %d", got, n)
	}
	return nil
}

func (s *toggleState) savedRecordContains(table *godog.Table) error {
	var want []string
	for _, row := range table.Rows {
		want = append(want, row.Cells[0].Value)
	}

	names, err := s.store.List()
	if err != nil {
		return err
	}
	if len(names) != 1 {
		return fmt.Errorf("store has %d records, want 1", len(names))
	}
	got, err := s.store.Read(names[0])
	if err != nil {
		return err
	}
	if !slices.Equal(got, want) {
		return fmt.Errorf("record = %v, want %v", got, want)
	}
	return nil
}

func (s *toggleState) givenControl(x, y int) error {
	s.classifier = gesture.NewClassifier(gesture.DefaultTapThreshold, gesture.Position{X: x, Y: y})
	return nil
}

func (s *toggleState) drag(dx, dy, ms int) error {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.classifier.Down(10, 10, start)
	s.classifier.Move(10+dx/2, 10+dy/2)
	s.classifier.Move(10+dx, 10+dy)
	s.action = s.classifier.Up(start.Add(time.Duration(ms) * time.Millisecond))
	return nil
}

func (s *toggleState) controlAt(x, y int) error {
	if got := s.classifier.Position(); got != (gesture.Position{X: x, Y: y}) {
		return fmt.Errorf("control at %+v, want (%d, %d)", got, x, y)
	}
	return nil
}

func (s *toggleState) noToggle() error {
	if s.action.Kind == gesture.Toggle {
		return fmt.Errorf("gesture was classified as a toggle")
	}
	return nil
}
