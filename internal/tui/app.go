package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Iron-Ham/botswitch/internal/event"
	"github.com/Iron-Ham/botswitch/internal/gesture"
	"github.com/Iron-Ham/botswitch/internal/logging"
	"github.com/Iron-Ham/botswitch/internal/messagelog"
	"github.com/Iron-Ham/botswitch/internal/notify"
	tea "github.com/charmbracelet/bubbletea"
)

// ShutdownTimeout bounds how long quitting waits for the running task to
// reach a safe point.
const ShutdownTimeout = 10 * time.Second

// notificationBuffer is the capacity of the channel between the
// notification Center and the program.
const notificationBuffer = 32

// Options configures an App.
type Options struct {
	AppName    string
	Switch     Switch
	Buffer     *messagelog.Buffer
	Classifier *gesture.Classifier
	Notifier   *event.Notifier
	// Store is watched for the saved-log count. Optional.
	Store  *messagelog.FileStore
	Logger *logging.Logger
}

// App wraps the Bubbletea program
type App struct {
	opts    Options
	program *tea.Program
	logger  *logging.Logger
}

// New creates a new TUI application
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &App{opts: opts, logger: logger.WithComponent("tui")}
}

// Run starts the TUI application. It returns after the program exits and
// the controller has been closed.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Notifications are delivered on the notifier goroutine; the channel
	// hands them to the program without blocking it once the TUI is gone.
	notes := make(chan notify.Notification, notificationBuffer)
	center := notify.NewCenter(a.opts.AppName, notify.SinkFunc(func(n notify.Notification) {
		select {
		case notes <- n:
		case <-ctx.Done():
		}
	}))
	center.Attach(a.opts.Notifier.Bus())
	defer center.Detach()

	var counts <-chan int
	if a.opts.Store != nil {
		c, err := messagelog.Watch(ctx, a.opts.Store)
		if err != nil {
			a.logger.Warn("failed to watch message log directory", "dir", a.opts.Store.Dir(), "error", err)
		} else {
			counts = c
		}
	}

	model := NewModel(ModelOptions{
		AppName:       a.opts.AppName,
		Switch:        a.opts.Switch,
		Buffer:        a.opts.Buffer,
		Classifier:    a.opts.Classifier,
		Publisher:     a.opts.Notifier,
		Notifications: notes,
		RecordCounts:  counts,
	})

	a.program = tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		select {
		case <-sigChan:
			a.program.Send(tea.Quit())
		case <-ctx.Done():
		}
	}()

	a.logger.Info("control surface started")
	_, err := a.program.Run()

	signal.Stop(sigChan)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()
	if cerr := a.opts.Switch.Close(shutdownCtx); cerr != nil {
		a.logger.Warn("task did not stop before shutdown timeout", "error", cerr)
	}
	a.logger.Info("control surface stopped")

	return err
}
