package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Iron-Ham/botswitch/internal/event"
	"github.com/Iron-Ham/botswitch/internal/logging"
	"github.com/Iron-Ham/botswitch/internal/messagelog"
	"github.com/Iron-Ham/botswitch/internal/task"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"
)

// RunState is the controller's externally visible state.
type RunState int

const (
	Idle RunState = iota
	Running
)

func (s RunState) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Transition reports what a Toggle or Stop call did.
type Transition int

const (
	// Ignored means the call had no effect.
	Ignored Transition = iota
	// Started means a new run was spawned.
	Started
	// StopRequested means cancellation of the current run was requested.
	StopRequested
)

func (t Transition) String() string {
	switch t {
	case Started:
		return "started"
	case StopRequested:
		return "stop_requested"
	default:
		return "ignored"
	}
}

// Run identifies one task run.
type Run struct {
	ID        string
	StartedAt time.Time
}

// Options configures a Controller. Zero values get defaults.
type Options struct {
	// AppName prefixes failure lines in the message log.
	AppName string
	// Buffer collects the message log. Defaults to a new buffer.
	Buffer *messagelog.Buffer
	// Store receives the message log at cleanup. Defaults to a MemoryStore.
	Store messagelog.Store
	// RetentionLimit is the record count above which the store is wiped.
	RetentionLimit int
	// Publisher receives state, outcome and log events. It must not block.
	Publisher event.Publisher
	// Logger receives diagnostic logs.
	Logger *logging.Logger
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// run is the controller's record of an active run.
type run struct {
	Run
	cancel   context.CancelFunc
	stopping bool
	cleanup  sync.Once
	done     chan struct{}
}

type nopPublisher struct{}

func (nopPublisher) Publish(event.Event) {}

// Controller owns the task slot. It is safe for concurrent use.
type Controller struct {
	task      task.Task
	appName   string
	buffer    *messagelog.Buffer
	store     messagelog.Store
	retention int
	publisher event.Publisher
	logger    *logging.Logger
	now       func() time.Time

	mu      sync.Mutex
	state   RunState
	current *run
}

// New creates an idle Controller for t.
func New(t task.Task, opts Options) *Controller {
	c := &Controller{
		task:      t,
		appName:   opts.AppName,
		buffer:    opts.Buffer,
		store:     opts.Store,
		retention: opts.RetentionLimit,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if c.appName == "" {
		c.appName = "botswitch"
	}
	if c.buffer == nil {
		c.buffer = messagelog.NewBuffer()
	}
	if c.store == nil {
		c.store = messagelog.NewMemoryStore()
	}
	if c.retention <= 0 {
		c.retention = messagelog.DefaultRetentionLimit
	}
	if c.publisher == nil {
		c.publisher = nopPublisher{}
	}
	if c.logger == nil {
		c.logger = logging.NopLogger()
	}
	c.logger = c.logger.WithComponent("controller")
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Buffer returns the message-log buffer shared by every run.
func (c *Controller) Buffer() *messagelog.Buffer {
	return c.buffer
}

// State returns the current run state.
func (c *Controller) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stopping reports whether cancellation of the current run was requested
// and cleanup has not finished yet.
func (c *Controller) Stopping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.current.stopping
}

// CurrentRun returns the active run, if any.
func (c *Controller) CurrentRun() (Run, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Run{}, false
	}
	return c.current.Run, true
}

// Toggle starts a run when idle and requests cancellation when running. It
// never blocks on the task.
func (c *Controller) Toggle() Transition {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle {
		c.startLocked()
		return Started
	}
	return c.requestStopLocked("toggle")
}

// Stop requests cancellation of the current run, if there is one. It is
// the path for stop requests that do not come from the control surface.
func (c *Controller) Stop() Transition {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle {
		return Ignored
	}
	return c.requestStopLocked("stop")
}

// Wait blocks until the controller is idle or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	if current == nil {
		return nil
	}
	select {
	case <-current.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close requests cancellation of any running task and waits for its
// cleanup, or for ctx to be done.
func (c *Controller) Close(ctx context.Context) error {
	c.Stop()
	return c.Wait(ctx)
}

// startLocked spawns a new run. The caller must hold c.mu.
func (c *Controller) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		Run:    Run{ID: uuid.NewString(), StartedAt: c.now()},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	c.buffer.Reset()
	c.state = Running
	c.current = r

	c.logger.WithRun(r.ID).Info(fmt.Sprintf("%s is now running", c.appName))
	c.publisher.Publish(event.NewRunStateChangedEvent(r.ID, true))

	go c.work(ctx, r)
}

// requestStopLocked cancels the current run. The caller must hold c.mu.
func (c *Controller) requestStopLocked(source string) Transition {
	r := c.current
	if r.stopping {
		c.logger.WithRun(r.ID).Debug("stop already in flight, ignoring", "source", source)
		return Ignored
	}

	r.stopping = true
	r.cancel()
	c.logger.WithRun(r.ID).Info("stop requested", "source", source)
	return StopRequested
}

// work is the body of the worker goroutine.
func (c *Controller) work(ctx context.Context, r *run) {
	defer close(r.done)
	defer r.cancel()

	logger := c.logger.WithRun(r.ID)

	var message string
	var err error
	var pc panics.Catcher
	pc.Try(func() {
		message, err = c.task.Run(ctx, c.buffer)
	})
	if rec := pc.Recovered(); rec != nil {
		err = fmt.Errorf("task panicked: %v", rec.Value)
		logger.Error("task panicked", "panic", fmt.Sprint(rec.Value), "stack", string(rec.Stack))
	}

	outcome := task.Classify(message, err)
	switch outcome.Kind {
	case task.KindFailed:
		c.buffer.Printf("%s encountered an Exception: %v", c.appName, err)
		logger.Error("task failed", "error", err)
	case task.KindCancelled:
		logger.Info("task cancelled")
	default:
		logger.Info("task completed", "message", outcome.Message)
	}

	c.publisher.Publish(event.NewRunOutcomeEvent(r.ID, outcome))
	c.cleanup(r)
}

// cleanup persists the message log and returns the controller to Idle. It
// runs at most once per run.
func (c *Controller) cleanup(r *run) {
	r.cleanup.Do(func() {
		logger := c.logger.WithRun(r.ID)

		res, err := c.buffer.Flush(c.store, c.retention, c.now())
		switch {
		case err != nil:
			logger.Warn("failed to save message log", "error", err)
		case res.Skipped:
			logger.Debug("message log already saved")
		default:
			logger.Info("message log saved", "record", res.Name, "lines", res.Lines, "wiped", res.Wiped)
			c.publisher.Publish(event.NewLogSavedEvent(r.ID, res.Name, res.Lines, res.Wiped))
		}

		c.mu.Lock()
		if c.current == r {
			c.current = nil
			c.state = Idle
		}
		c.mu.Unlock()

		logger.Info(fmt.Sprintf("%s is now stopped", c.appName), "duration", c.now().Sub(r.StartedAt).String())
		c.publisher.Publish(event.NewRunStateChangedEvent(r.ID, false))
	})
}
