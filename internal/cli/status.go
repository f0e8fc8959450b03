package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rileyhilliard/procdash/internal/backend"
	"github.com/rileyhilliard/procdash/internal/monitor"
	"github.com/rileyhilliard/procdash/internal/report"
	"github.com/rileyhilliard/procdash/internal/ui"
	"github.com/spf13/cobra"
)

// StatusOptions holds the flags of the status command.
type StatusOptions struct {
	Backend  BackendFlags
	JSON     bool
	Samples  int
	Interval string
}

var statusOpts StatusOptions

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current process table once",
	Long: `Poll the backend and print the process table once. With --samples the
backend is polled several times and a CPU trend is shown per process.

Examples:
  procdash status
  procdash status --samples 10 --interval 500ms
  procdash status --json | jq '.data.processes[] | select(.status == "error")'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCommand(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), statusOpts)
	},
}

func init() {
	AddBackendFlags(statusCmd, &statusOpts.Backend)
	statusCmd.Flags().BoolVar(&statusOpts.JSON, "json", false, "output in JSON format")
	statusCmd.Flags().IntVar(&statusOpts.Samples, "samples", 1, "number of polls to collect")
	statusCmd.Flags().StringVar(&statusOpts.Interval, "interval", "", "time between polls (default: poll.interval)")
}

// StatusOutput is the JSON shape of 'procdash status --json'.
type StatusOutput struct {
	Backend   string          `json:"backend"`
	Updated   string          `json:"updated"`
	Version   string          `json:"version"`
	NetMode   string          `json:"net_mode"`
	NetUnit   string          `json:"net_unit"`
	Processes []ProcessStatus `json:"processes"`
}

// ProcessStatus is one process in StatusOutput. Metrics are numbers, not the
// backend's strings.
type ProcessStatus struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Status   string  `json:"status"`
	Pid      string  `json:"pid"`
	Uptime   string  `json:"uptime"`
	Hung     bool    `json:"hung,omitempty"`
	CPU      float64 `json:"cpu"`
	GPU      float64 `json:"gpu"`
	MemMB    float64 `json:"mem_mb"`
	Net      float64 `json:"net"`
	IO       float64 `json:"io"`
	Error    string  `json:"error,omitempty"`
	CanStart bool    `json:"can_start"`
}

func statusCommand(ctx context.Context, stdout, stderr io.Writer, opts StatusOptions) error {
	e, err := loadEnv("status", &opts.Backend)
	if err != nil {
		return jsonOr(opts.JSON, stdout, err)
	}
	defer e.Close()

	client, err := e.backend()
	if err != nil {
		return jsonOr(opts.JSON, stdout, err)
	}

	interval := e.cfg.Poll.Interval
	if d, err := ParseDurationFlag("interval", opts.Interval, 0); err != nil {
		return jsonOr(opts.JSON, stdout, err)
	} else if d > 0 {
		interval = d
	}

	table, err := collectTable(ctx, client, e, opts.Samples, interval, stderr, !opts.JSON)
	if err != nil {
		return jsonOr(opts.JSON, stdout, err)
	}

	if opts.JSON {
		return WriteJSONSuccess(stdout, statusOutput(e.label(), table))
	}

	fmt.Fprint(stdout, renderStatus(e.label(), table))
	return nil
}

// collectTable polls the backend, showing a spinner on stderr for multi-sample runs.
func collectTable(ctx context.Context, b backend.Backend, e *env, samples int, interval time.Duration, stderr io.Writer, showProgress bool) (monitor.Table, error) {
	if samples < 1 {
		samples = 1
	}

	var spin *ui.Spinner
	if showProgress && samples > 1 {
		spin = ui.NewSpinner(fmt.Sprintf("Collecting %d samples", samples), stderr, isTerminalWriter(stderr))
		spin.Start()
	}

	table, err := report.Collect(ctx, b, report.CollectOptions{
		Samples:  samples,
		Interval: interval,
		History: monitor.HistoryPolicy{
			Size:        max(samples, e.cfg.History.Size),
			MaxEntities: e.cfg.History.MaxEntities,
			StaleAfter:  e.cfg.History.StaleAfter,
		},
		Log: e.log,
		Progress: func(done, total int) {
			if spin != nil {
				spin.SetLabel(fmt.Sprintf("Collecting samples %d/%d", done, total))
			}
		},
	})

	if spin != nil {
		if err != nil {
			spin.Fail()
		} else {
			spin.Success()
		}
	}
	return table, err
}

func renderStatus(label string, table monitor.Table) string {
	h := table.Header
	info := ui.HeaderInfo{
		Tagline: fmt.Sprintf("updated %s | version %s | net %s", h.Updated, h.Version, h.Net()),
		Detail:  label,
	}

	rows := make([]ui.ProcessTableRow, 0, len(table.Rows))
	for _, r := range table.Rows {
		rows = append(rows, ui.ProcessTableRow{
			Status: string(r.Status),
			Icon:   r.Icon,
			Name:   r.Name,
			Type:   r.Type,
			Pid:    r.Pid(nil),
			Uptime: r.Uptime,
			CPU:    r.Metrics[monitor.ChannelCPU].Final,
			Mem:    r.Metrics[monitor.ChannelMem].Final,
			Net:    r.Metrics[monitor.ChannelNet].Final,
			Trend:  r.Metrics[monitor.ChannelCPU].Samples,
			Hung:   r.Hung,
		})
	}

	return ui.RenderHeader(info) + ui.RenderProcessTable(rows, "NET "+h.Unit+"/s") + "\n"
}

func statusOutput(label string, table monitor.Table) StatusOutput {
	out := StatusOutput{
		Backend:   label,
		Updated:   table.Header.Updated,
		Version:   table.Header.Version,
		NetMode:   table.Header.Net(),
		NetUnit:   table.Header.Unit,
		Processes: make([]ProcessStatus, 0, len(table.Rows)),
	}
	for _, r := range table.Rows {
		out.Processes = append(out.Processes, ProcessStatus{
			Name:     r.Name,
			Type:     r.Type,
			Status:   string(r.Status),
			Pid:      r.Pid(nil),
			Uptime:   r.Uptime,
			Hung:     r.Hung,
			CPU:      r.Metrics[monitor.ChannelCPU].Raw,
			GPU:      r.Metrics[monitor.ChannelGPU].Raw,
			MemMB:    r.Metrics[monitor.ChannelMem].Raw,
			Net:      r.Metrics[monitor.ChannelNet].Raw,
			IO:       r.Metrics[monitor.ChannelIO].Raw,
			Error:    r.Error,
			CanStart: r.CanRun(backend.ActionStart),
		})
	}
	return out
}

// isTerminalWriter reports whether w is a terminal file.
func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTerminal(f)
}
