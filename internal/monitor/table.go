package monitor

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rileyhilliard/procdash/internal/backend"
)

// Placeholders for missing values.
const (
	HeaderPlaceholder = "—"
	CellPlaceholder   = "-"
)

// Header is the snapshot-level status line.
type Header struct {
	Updated  string
	Version  string
	NetMode  string
	NetError string
	NetDebug string
	Unit     string
}

// Net renders the network mode with its error, e.g. "ETW (access denied)".
func (h Header) Net() string {
	if h.NetError == "" {
		return h.NetMode
	}
	return h.NetMode + " (" + h.NetError + ")"
}

// MetricCell pairs a channel's trend samples with its animated label.
type MetricCell struct {
	Channel Channel
	Samples []float64
	Raw     float64
	Key     AnimKey
	Final   string
	Detail  string
}

// ActionButton is one row action and whether it can be triggered.
type ActionButton struct {
	Action  backend.Action
	Enabled bool
}

// Row is one rendered entity.
type Row struct {
	Name      string
	Type      string
	Status    backend.Status
	Icon      string
	HasPid    bool
	PidKey    AnimKey
	PidFinal  string
	StartedAt string
	Uptime    string
	Metrics   [numChannels]MetricCell
	Unit      string
	Target    string
	Error     string
	Actions   []ActionButton
	Hung      bool
	Disabled  bool
}

// Pid returns the pid label as currently displayed.
func (r Row) Pid(anim *Animator) string {
	if !r.HasPid {
		return CellPlaceholder
	}
	return labelOf(anim, r.PidKey, r.PidFinal)
}

// Label returns a metric label as currently displayed.
func (c MetricCell) Label(anim *Animator) string {
	return labelOf(anim, c.Key, c.Final)
}

// CanRun reports whether action is enabled for this row.
func (r Row) CanRun(action backend.Action) bool {
	for _, b := range r.Actions {
		if b.Action == action {
			return b.Enabled
		}
	}
	return false
}

func labelOf(anim *Animator, key AnimKey, final string) string {
	if anim != nil {
		if s, ok := anim.Text(key); ok {
			return s
		}
	}
	return final
}

// Table is everything the surface needs to draw one snapshot.
type Table struct {
	Header Header
	Rows   []Row
}

// BuildTable turns snap into rows. For every entity it records a history
// sample, then starts label animations from the matching entity in prev
// (entities new in snap snap straight to their value). History is swept
// with the set of names in snap. prev may be nil.
func BuildTable(snap, prev *backend.Snapshot, hist *History, anim *Animator, now time.Time) Table {
	if snap == nil {
		return Table{Header: buildHeader(nil)}
	}

	prevByName := make(map[string]backend.EntityState)
	if prev != nil {
		for _, it := range prev.Items {
			prevByName[it.Name] = it
		}
	}

	unit := snap.Unit()
	rows := make([]Row, 0, len(snap.Items))
	for _, it := range snap.Items {
		m := it.Metrics()
		hist.RecordMetrics(it.Name, m)
		rows = append(rows, buildRow(it, m, unit, hist.Get(it.Name)))
	}

	for i, it := range snap.Items {
		startAnimations(anim, rows[i], it, prevByName, now)
	}

	for _, name := range hist.Sweep(snap.Names()) {
		anim.Forget(name)
	}

	return Table{Header: buildHeader(snap), Rows: rows}
}

func buildHeader(snap *backend.Snapshot) Header {
	h := Header{
		Updated:  HeaderPlaceholder,
		Version:  HeaderPlaceholder,
		NetMode:  HeaderPlaceholder,
		NetDebug: HeaderPlaceholder,
		Unit:     "KB",
	}
	if snap == nil {
		return h
	}
	h.Updated = orDefault(snap.Updated, HeaderPlaceholder)
	h.Version = orDefault(snap.Version, HeaderPlaceholder)
	h.NetMode = orDefault(snap.NetMode, HeaderPlaceholder)
	h.NetError = snap.NetErr
	h.NetDebug = orDefault(snap.NetDebug, HeaderPlaceholder)
	h.Unit = snap.Unit()
	return h
}

func buildRow(it backend.EntityState, m backend.Metrics, unit string, samples Samples) Row {
	row := Row{
		Name:      it.Name,
		Type:      it.Type,
		Status:    it.Status,
		Icon:      orDefault(it.Icon, string(it.Status)),
		HasPid:    it.Pid.Valid(),
		PidKey:    AnimKey{Entity: it.Name, Field: "pid"},
		StartedAt: orDefault(it.StartedAt, CellPlaceholder),
		Uptime:    orDefault(it.Uptime, CellPlaceholder),
		Unit:      unit,
		Target:    it.Target,
		Error:     it.Error,
		Hung:      it.Hung,
		Disabled:  it.Status == backend.StatusDisabled,
		Actions: []ActionButton{
			{Action: backend.ActionOpenFolder, Enabled: true},
			{Action: backend.ActionStart, Enabled: it.Status.CanStart()},
			{Action: backend.ActionStop, Enabled: true},
			{Action: backend.ActionRestart, Enabled: true},
		},
	}
	if row.HasPid {
		row.PidFinal = FormatPid(float64(it.Pid))
	}

	raw := [numChannels]float64{m.CPU, m.GPU, m.Mem, m.Net, m.IO}
	for _, c := range Channels {
		row.Metrics[c] = MetricCell{
			Channel: c,
			Samples: samples.Of(c),
			Raw:     raw[c],
			Key:     AnimKey{Entity: it.Name, Field: c.String()},
			Final:   FormatterFor(c, unit)(raw[c]),
		}
	}

	gpuMem := backend.ParseMetric(it.GPUMemMB)
	row.Metrics[ChannelGPU].Detail = fmt.Sprintf("GPU memory: %s MB", strconv.FormatFloat(gpuMem, 'f', -1, 64))
	row.Metrics[ChannelMem].Detail = fmt.Sprintf("RAM: %.2f MB", m.Mem)
	row.Metrics[ChannelNet].Detail = rateDetail("NET", m.Net, unit)
	row.Metrics[ChannelIO].Detail = rateDetail("IO", m.IO, unit)
	return row
}

// startAnimations eases each label from the previous snapshot's raw value.
func startAnimations(anim *Animator, row Row, it backend.EntityState, prevByName map[string]backend.EntityState, now time.Time) {
	prev, hadPrev := prevByName[it.Name]
	var pm backend.Metrics
	if hadPrev {
		pm = prev.Metrics()
	}

	if row.HasPid {
		from := float64(it.Pid)
		if hadPrev && prev.Pid.Valid() {
			from = float64(prev.Pid)
		}
		anim.Animate(row.PidKey, from, float64(it.Pid), FormatPid, now)
	}

	prevRaw := [numChannels]float64{pm.CPU, pm.GPU, pm.Mem, pm.Net, pm.IO}
	for _, c := range Channels {
		cell := row.Metrics[c]
		from := cell.Raw
		if hadPrev {
			from = prevRaw[c]
		}
		anim.Animate(cell.Key, from, cell.Raw, FormatterFor(c, row.Unit), now)
	}
}

// rateDetail shows a rate in both units, converting by 1024.
func rateDetail(label string, v float64, unit string) string {
	kb, mb := v, v/1024
	if unit == "MB" {
		kb, mb = v*1024, v
	}
	return fmt.Sprintf("%s: %.1f KB/s | %.2f MB/s", label, kb, mb)
}

// FormatPid renders a pid label.
func FormatPid(v float64) string {
	return strconv.Itoa(int(math.Max(0, math.Round(v))))
}

// FormatPercent renders cpu/gpu labels: rounded, never negative.
func FormatPercent(v float64) string {
	return strconv.Itoa(int(math.Max(0, math.Round(v)))) + "%"
}

// FormatMem renders memory in MB with two decimals.
func FormatMem(v float64) string {
	return strconv.FormatFloat(math.Max(0, v), 'f', 2, 64) + "MB"
}

// RateFormatter renders network/IO labels in unit: whole KB or MB to two decimals.
func RateFormatter(unit string) Formatter {
	if unit == "MB" {
		return func(v float64) string {
			return strconv.FormatFloat(math.Max(0, v), 'f', 2, 64) + "MB"
		}
	}
	return func(v float64) string {
		return strconv.Itoa(int(math.Max(0, math.Round(v)))) + "KB"
	}
}

// FormatterFor returns the label formatter for a channel.
func FormatterFor(c Channel, unit string) Formatter {
	switch c {
	case ChannelCPU, ChannelGPU:
		return FormatPercent
	case ChannelMem:
		return FormatMem
	default:
		return RateFormatter(unit)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
