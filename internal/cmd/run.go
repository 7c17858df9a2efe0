package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Iron-Ham/botswitch/internal/config"
	"github.com/Iron-Ham/botswitch/internal/controller"
	"github.com/Iron-Ham/botswitch/internal/event"
	"github.com/Iron-Ham/botswitch/internal/gesture"
	"github.com/Iron-Ham/botswitch/internal/logging"
	"github.com/Iron-Ham/botswitch/internal/messagelog"
	"github.com/Iron-Ham/botswitch/internal/notify"
	"github.com/Iron-Ham/botswitch/internal/task"
	"github.com/Iron-Ham/botswitch/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the control surface",
	Long: `Start the control surface for the configured task.

When stdout is a terminal, a full-screen UI shows a draggable toggle button.
Otherwise, or with --headless, a single run starts immediately and its
notifications are printed; interrupt (Ctrl+C) stops it.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runTaskFile string
	runHeadless bool
)

// isTerminal is replaced in tests.
var isTerminal = term.IsTerminal

// ErrRunFailed is returned by headless runs whose task failed.
var ErrRunFailed = errors.New("run failed")

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runTaskFile, "task", "t", "", "YAML task script (overrides task.file)")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "run once without the UI")
}

// runtime is the set of components shared by both run modes.
type runtime struct {
	cfg        *config.Config
	logger     *logging.Logger
	store      *messagelog.FileStore
	notifier   *event.Notifier
	controller *controller.Controller
}

func newRuntime(cfg *config.Config, taskFile string) (*runtime, error) {
	logger := createLogger(cfg)

	if taskFile == "" {
		taskFile = cfg.Task.File
	}
	var t task.Task = task.DefaultScript()
	if taskFile != "" {
		s, err := task.LoadScript(taskFile)
		if err != nil {
			_ = logger.Close()
			return nil, err
		}
		t = s
	}

	bus := event.NewBus()
	bus.SetLogger(logger)
	notifier := event.NewNotifier(bus)
	store := messagelog.NewFileStore(cfg.MessageLog.ResolveDir())

	ctrl := controller.New(t, controller.Options{
		AppName:        cfg.App.Name,
		Store:          store,
		RetentionLimit: cfg.MessageLog.RetentionLimit,
		Publisher:      notifier,
		Logger:         logger,
	})

	logger.Info("runtime ready",
		"task_file", taskFile,
		"log_dir", store.Dir(),
		"tap_threshold", cfg.Control.TapThreshold().String(),
	)

	return &runtime{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		notifier:   notifier,
		controller: ctrl,
	}, nil
}

// createLogger opens the debug log, falling back to a no-op logger when
// logging is disabled or the file cannot be opened.
func createLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}

	rotation := logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}
	logger, err := logging.NewLogger(config.ConfigDir(), cfg.Logging.Level, rotation)
	if err != nil {
		return logging.NopLogger()
	}
	return logger
}

func (r *runtime) close() {
	r.notifier.Wait()
	_ = r.logger.Close()
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	rt, err := newRuntime(cfg, runTaskFile)
	if err != nil {
		return err
	}
	defer rt.close()

	if runHeadless || !isTerminal(int(os.Stdout.Fd())) {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runOnce(ctx, rt, cmd.OutOrStdout())
	}

	classifier := gesture.NewClassifier(
		cfg.Control.TapThreshold(),
		gesture.Position{X: cfg.Control.StartX, Y: cfg.Control.StartY},
	)
	app := tui.New(tui.Options{
		AppName:    cfg.App.Name,
		Switch:     rt.controller,
		Buffer:     rt.controller.Buffer(),
		Classifier: classifier,
		Notifier:   rt.notifier,
		Store:      rt.store,
		Logger:     rt.logger,
	})
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// runOnce starts a single run, prints its notifications to out and waits
// for it to finish. Cancelling ctx requests a stop.
func runOnce(ctx context.Context, rt *runtime, out io.Writer) error {
	bus := rt.notifier.Bus()

	center := notify.NewCenter(rt.cfg.App.Name, notify.NewWriterSink(out))
	center.Attach(bus)
	defer center.Detach()

	outcomes := make(chan task.Outcome, 1)
	subID := bus.Subscribe(event.TypeRunOutcome, func(e event.Event) {
		if oe, ok := e.(event.RunOutcomeEvent); ok {
			select {
			case outcomes <- oe.Outcome:
			default:
			}
		}
	})
	defer bus.Unsubscribe(subID)

	rt.controller.Toggle()

	stopDone := make(chan struct{})
	defer close(stopDone)
	go func() {
		select {
		case <-ctx.Done():
			rt.controller.Stop()
		case <-stopDone:
		}
	}()

	// Cancellation is cooperative: the task decides when it is safe to stop
	if err := rt.controller.Wait(context.Background()); err != nil {
		return err
	}
	rt.notifier.Wait()

	select {
	case outcome := <-outcomes:
		if outcome.Kind == task.KindFailed {
			return fmt.Errorf("%w: %s", ErrRunFailed, outcome.Message)
		}
	default:
	}
	return nil
}
