package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rileyhilliard/procdash/internal/report"
	"github.com/rileyhilliard/procdash/internal/ui"
	"github.com/spf13/cobra"
)

// ExportOptions holds the flags of the export command.
type ExportOptions struct {
	Backend  BackendFlags
	Samples  int
	Interval string
	Out      string
	Title    string
}

var exportOpts ExportOptions

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write an HTML report with trend graphs",
	Long: `Poll the backend a number of times and write a standalone HTML page with
every process and an SVG trend per metric. The page has no external assets.

Examples:
  procdash export
  procdash export --samples 60 --interval 1s --out load.html`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportCommand(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), exportOpts)
	},
}

func init() {
	AddBackendFlags(exportCmd, &exportOpts.Backend)
	exportCmd.Flags().IntVar(&exportOpts.Samples, "samples", 20, "number of polls to collect")
	exportCmd.Flags().StringVar(&exportOpts.Interval, "interval", "", "time between polls (default: poll.interval)")
	exportCmd.Flags().StringVarP(&exportOpts.Out, "out", "o", "procdash-report.html", "output file")
	exportCmd.Flags().StringVar(&exportOpts.Title, "title", "", "report title (default: procdash report for <backend>)")
}

func exportCommand(ctx context.Context, stdout, stderr io.Writer, opts ExportOptions) error {
	e, err := loadEnv("export", &opts.Backend)
	if err != nil {
		return err
	}
	defer e.Close()

	client, err := e.backend()
	if err != nil {
		return err
	}

	interval := e.cfg.Poll.Interval
	if d, err := ParseDurationFlag("interval", opts.Interval, 0); err != nil {
		return err
	} else if d > 0 {
		interval = d
	}

	table, err := collectTable(ctx, client, e, opts.Samples, interval, stderr, true)
	if err != nil {
		return err
	}

	title := opts.Title
	if title == "" {
		title = "procdash report for " + e.label()
	}
	r := report.Build(table, title, max(opts.Samples, 1), time.Now())
	if err := report.WriteFile(opts.Out, r); err != nil {
		return err
	}

	e.log.Info("report written: %s (%d processes)", opts.Out, len(r.Entities))
	fmt.Fprintf(stdout, "%s Wrote %s (%d processes)\n", ui.SymbolSuccess, opts.Out, len(r.Entities))
	return nil
}
