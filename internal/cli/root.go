package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rileyhilliard/procdash/internal/errors"
	"github.com/rileyhilliard/procdash/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags, shared by every command.
var (
	cfgFile  string
	noColor  bool
	logFile  string
	debugLog bool
)

var rootCmd = &cobra.Command{
	Use:   "procdash",
	Short: "Terminal dashboard for a process supervisor",
	Long: `procdash polls a process-supervision backend and shows every managed
process with its status, resource usage and short trend graphs. Processes
can be started, stopped and restarted from the dashboard, and the backend's
configuration can be edited after entering the editor secret.

Running procdash without a subcommand opens the dashboard.

Examples:
  procdash
  procdash --config ./procdash.yaml
  procdash status
  procdash ctl restart api`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context(), dashboardOpts)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./procdash.yaml, then ~/.config/procdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file (default: $XDG_STATE_HOME/procdash/procdash.log)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "log debug messages")
}

// Terminal checks, replaced in tests.
var (
	stdinIsTerminal  = func() bool { return ui.IsTerminal(os.Stdin) }
	stdoutIsTerminal = func() bool { return ui.IsTerminal(os.Stdout) }
)

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	if stderrors.Is(err, ui.ErrCancelled) {
		fmt.Fprintln(os.Stderr, "Cancelled.")
		os.Exit(130)
	}
	if isUnknownCommandError(err) {
		fmt.Fprintf(os.Stderr, "✗ %s\n\n  Run 'procdash --help' to see the available commands.\n", err)
		os.Exit(2)
	}

	var pdErr *errors.Error
	if stderrors.As(err, &pdErr) {
		fmt.Fprint(os.Stderr, pdErr.Error())
	} else {
		fmt.Fprintf(os.Stderr, "✗ %s\n", err)
	}
	os.Exit(1)
}

// isUnknownCommandError reports cobra's usage errors for bad commands and flags.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}
