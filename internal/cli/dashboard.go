package cli

import (
	"context"
	stderrors "errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/procdash/internal/config"
	"github.com/rileyhilliard/procdash/internal/editor"
	"github.com/rileyhilliard/procdash/internal/errors"
	"github.com/rileyhilliard/procdash/internal/logger"
	"github.com/rileyhilliard/procdash/internal/monitor"
	"github.com/spf13/cobra"
)

// DashboardOptions holds the flags of the dashboard command.
type DashboardOptions struct {
	Backend  BackendFlags
	Interval string
	NoGraphs bool
}

var dashboardOpts DashboardOptions

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the live process dashboard (default)",
	Long: `Open the live process dashboard. The backend is polled continuously and
every process is shown with its status, pid, uptime, resource usage and
trend graphs.

Keyboard shortcuts:
  up/k, down/j  Select process
  Enter         Details for the selected process
  s / x / r     Start / stop / restart the selected process
  o             Open the process folder
  R / C / N     Restart all / kill CMD / kill Node (asks to confirm)
  S             Cycle sort order
  g             Toggle trend graphs
  e             Config editor (needs editor.secret)
  ?             Help
  q / Ctrl+C    Quit

Examples:
  procdash dashboard
  procdash dashboard --url http://10.0.0.5:8787 --interval 1s
  procdash dashboard --ssh lab`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context(), dashboardOpts)
	},
}

func init() {
	// The root command opens the dashboard too, so it takes the same flags.
	for _, cmd := range []*cobra.Command{rootCmd, dashboardCmd} {
		AddBackendFlags(cmd, &dashboardOpts.Backend)
		cmd.Flags().StringVar(&dashboardOpts.Interval, "interval", "", "poll interval (overrides poll.interval)")
		cmd.Flags().BoolVar(&dashboardOpts.NoGraphs, "no-graphs", false, "start with trend graphs hidden")
	}
}

// dashboardModelOptions maps the config onto dashboard options.
func dashboardModelOptions(cfg *config.Config, opts DashboardOptions) (monitor.Options, error) {
	interval := cfg.Poll.Interval
	parsed, err := ParseDurationFlag("interval", opts.Interval, config.MinPollInterval)
	if err != nil {
		return monitor.Options{}, err
	}
	if parsed > 0 {
		interval = parsed
	}

	anim := cfg.Animation.Duration
	if !cfg.Animation.Enabled {
		anim = 0
	}

	return monitor.Options{
		PollInterval:  interval,
		PollTimeout:   cfg.Backend.Timeout,
		ActionTimeout: monitor.DefaultActionTimeout,
		History: monitor.HistoryPolicy{
			Size:        cfg.History.Size,
			MaxEntities: cfg.History.MaxEntities,
			StaleAfter:  cfg.History.StaleAfter,
		},
		AnimationDuration: anim,
		ShowGraphs:        cfg.UI.ShowGraphs && !opts.NoGraphs,
	}, nil
}

func dashboardCommand(ctx context.Context, opts DashboardOptions) error {
	if !stdoutIsTerminal() {
		return errors.New(errors.ErrConfig,
			"The dashboard needs a terminal",
			"Use 'procdash status' for one-shot output, or 'procdash status --json' for scripts.")
	}

	e, err := loadEnv("dashboard", &opts.Backend)
	if err != nil {
		return err
	}
	defer e.Close()

	client, err := e.backend()
	if err != nil {
		return err
	}

	modelOpts, err := dashboardModelOptions(e.cfg, opts)
	if err != nil {
		return err
	}
	modelOpts.Label = e.label()
	modelOpts.Log = e.log

	if e.cfg.HasEditorSecret() {
		verifier, err := editor.NewVerifier(e.cfg.Editor.Secret, e.cfg.Editor.SecretHash)
		if err != nil {
			return err
		}
		modelOpts.Editor = editor.New(client, verifier,
			editor.WithSessionTTL(e.cfg.Editor.SessionTTL),
			editor.WithLogger(e.log))
	}

	e.log.Info("dashboard started: backend=%s interval=%s", e.label(), modelOpts.PollInterval)

	p := tea.NewProgram(monitor.NewModel(client, modelOpts),
		tea.WithAltScreen(),
		tea.WithContext(ctx))

	if e.cfgPath != "" {
		config.Watch(e.cfgPath,
			func(cfg *config.Config) {
				e.log.Info("config reloaded: show_graphs=%t", cfg.UI.ShowGraphs)
				p.Send(monitor.SettingsMsg{ShowGraphs: cfg.UI.ShowGraphs})
			},
			func(err error) {
				e.log.Warn("config reload ignored: %s", errors.OneLine(err))
			})
	}

	if _, err := p.Run(); err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"The dashboard stopped unexpectedly",
			"Check the log file for details: "+logFileHint(e))
	}
	return nil
}

func logFileHint(e *env) string {
	switch {
	case logFile != "":
		return logFile
	case e.cfg.Log.File != "":
		return e.cfg.Log.File
	}
	return logger.DefaultPath()
}
