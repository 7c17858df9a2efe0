// Package logging provides the diagnostic logger for botswitch.
//
// This is the developer-facing debug log, written as JSON lines through
// log/slog. It is separate from the message log in package messagelog,
// which is the flat, user-facing record of a single task run.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(dir, "info", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	runLogger := logger.WithComponent("controller").WithRun(runID)
//	runLogger.Info("run started")
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"run started","component":"controller","run_id":"..."}
//
// # Rotation
//
// The debug log lives at {dir}/debug.log and is rotated by size. Rotated
// files are named debug.log.1 (newest) through debug.log.N.
//
// # Testing
//
// Use [NopLogger] to discard output.
package logging
