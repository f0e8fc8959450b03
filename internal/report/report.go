// Package report exports the dashboard's trends as a standalone HTML page.
package report

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rileyhilliard/procdash/internal/backend"
	"github.com/rileyhilliard/procdash/internal/errors"
	"github.com/rileyhilliard/procdash/internal/logger"
	"github.com/rileyhilliard/procdash/internal/monitor"
)

// Report is the data behind one HTML export.
type Report struct {
	Title     string
	Generated string
	Samples   int
	Header    monitor.Header
	Entities  []Entity
}

// Entity is one process with a trend per channel.
type Entity struct {
	Name     string
	Type     string
	Status   string
	Icon     string
	Pid      string
	Uptime   string
	Hung     bool
	Disabled bool
	Channels []Channel
}

// Channel is one metric trend.
type Channel struct {
	Name   string
	Label  string
	Detail string
	Color  string
	Style  template.CSS
	SVG    template.HTML
}

// CollectOptions controls how many snapshots feed the export.
type CollectOptions struct {
	Samples  int
	Interval time.Duration
	History  monitor.HistoryPolicy
	Log      logger.Logger
	// Progress, when set, is called after every poll attempt.
	Progress func(done, total int)
}

// Collect polls b Samples times, Interval apart, and returns the table built
// from the last snapshot with the accumulated history behind it. Failed polls
// are logged and skipped; Collect fails only if no poll succeeded.
func Collect(ctx context.Context, b backend.Backend, opts CollectOptions) (monitor.Table, error) {
	if opts.Samples < 1 {
		opts.Samples = 1
	}
	if opts.Log == nil {
		opts.Log = logger.Noop()
	}

	hist := monitor.NewHistory(opts.History)
	anim := monitor.NewAnimator(0)
	var prev *backend.Snapshot
	var table monitor.Table
	var lastErr error

	for i := 0; i < opts.Samples; i++ {
		if i > 0 && opts.Interval > 0 {
			select {
			case <-ctx.Done():
				return table, ctx.Err()
			case <-time.After(opts.Interval):
			}
		}

		snap, err := b.GetSnapshot(ctx)
		if err != nil {
			lastErr = err
			opts.Log.Warn("sample %d/%d failed: %v", i+1, opts.Samples, err)
		} else {
			table = monitor.BuildTable(snap, prev, hist, anim, time.Now())
			prev = snap
		}
		if opts.Progress != nil {
			opts.Progress(i+1, opts.Samples)
		}
	}

	if prev == nil {
		return table, errors.WrapWithCode(lastErr, errors.ErrBackend,
			"Couldn't collect any snapshot",
			"Check that the backend is running and reachable.")
	}
	return table, nil
}

// Build turns a table into report data.
func Build(table monitor.Table, title string, samples int, now time.Time) Report {
	r := Report{
		Title:     title,
		Generated: now.Format("2006-01-02 15:04:05"),
		Samples:   samples,
		Header:    table.Header,
	}
	for _, row := range table.Rows {
		e := Entity{
			Name:     row.Name,
			Type:     row.Type,
			Status:   string(row.Status),
			Icon:     row.Icon,
			Pid:      row.Pid(nil),
			Uptime:   row.Uptime,
			Hung:     row.Hung,
			Disabled: row.Disabled,
		}
		for _, c := range monitor.Channels {
			cell := row.Metrics[c]
			color := monitor.ChannelColor(c)
			e.Channels = append(e.Channels, Channel{
				Name:   strings.ToUpper(c.String()),
				Label:  cell.Final,
				Detail: cell.Detail,
				Color:  color,
				Style:  template.CSS("color: " + color),
				// RenderTrendSVG escapes the only caller-supplied value.
				SVG: template.HTML(monitor.RenderTrendSVG(cell.Samples, color)),
			})
		}
		r.Entities = append(r.Entities, e)
	}
	return r
}

// Render writes r as a standalone HTML document.
func Render(w io.Writer, r Report) error {
	if err := page.Execute(w, r); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport, "Couldn't render the report", "")
	}
	return nil
}

// WriteFile renders r to path, creating parent directories.
func WriteFile(path string, r Report) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapWithCode(err, errors.ErrExport,
				fmt.Sprintf("Couldn't create %s", dir), "")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Couldn't write %s", path),
			"Check the path and that you have permission to write there.")
	}
	if err := Render(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
