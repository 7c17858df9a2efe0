package cmd

import (
	"errors"
	"fmt"

	"github.com/Iron-Ham/botswitch/internal/config"
	"github.com/Iron-Ham/botswitch/internal/messagelog"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs [name]",
	Short: "List or print saved message logs",
	Long: `List or print the message logs saved at the end of each run.

Without arguments, lists every saved log with its line count.
With a name, prints that log.

Examples:
  # List saved logs
  botswitch logs

  # Print one log
  botswitch logs "log @ 2024-03-01 12.00.00"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store := messagelog.NewFileStore(cfg.MessageLog.ResolveDir())
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		lines, err := store.Read(args[0])
		if errors.Is(err, messagelog.ErrNotFound) {
			return fmt.Errorf("no saved log named %q\nRun 'botswitch logs' to list saved logs", args[0])
		}
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(out, line)
		}
		return nil
	}

	names, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list logs: %w", err)
	}
	if len(names) == 0 {
		fmt.Fprintf(out, "No saved logs in %s\n", store.Dir())
		return nil
	}

	fmt.Fprintf(out, "Saved logs in %s (%d of %d before wipe):\n", store.Dir(), len(names), cfg.MessageLog.RetentionLimit)
	for _, name := range names {
		lines, err := store.Read(name)
		if err != nil {
			fmt.Fprintf(out, "  %s (unreadable: %v)\n", name, err)
			continue
		}
		fmt.Fprintf(out, "  %s (%d lines)\n", name, len(lines))
	}
	return nil
}
