package backend

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Demo is an in-memory Backend with a synthetic roster and metrics. It backs
// 'procdash serve --demo' and end-to-end tests.
type Demo struct {
	mu      sync.Mutex
	version string
	model   ConfigModel
	procs   map[string]*demoProc
	nextPid int
	tick    int
	rng     *rand.Rand
	now     func() time.Time
	opened  []string
}

type demoProc struct {
	status    Status
	pid       int
	startedAt time.Time
	startTick int
	phase     float64
	load      float64
	err       string
}

// DemoOption configures a Demo.
type DemoOption func(*Demo)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) DemoOption {
	return func(d *Demo) { d.now = now }
}

// WithSeed makes the synthetic metrics reproducible.
func WithSeed(seed uint64) DemoOption {
	return func(d *Demo) { d.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithModel replaces the default roster.
func WithModel(m ConfigModel) DemoOption {
	return func(d *Demo) { d.model = m.Clone() }
}

// DefaultDemoModel is the roster served when no model is given.
func DefaultDemoModel() ConfigModel {
	return ConfigModel{
		Settings: Settings{
			CheckTiming:   "1s",
			RestartTiming: "5s",
			NetUnit:       "KB",
			NetScale:      "1",
		},
		Processes: []ProcessDef{
			{Name: "api-gateway", Type: "exe", Process: "gateway.exe", Path: `C:\svc\gateway`, MonitorHang: true, HangTimeout: "30s"},
			{Name: "render-node", Type: "cmd", Process: "node.exe", Path: `C:\svc\render`, Command: "node", Args: "server.js"},
			{Name: "ingest", Type: "bat", Process: "ingest.exe", Path: `C:\svc\ingest`, Command: "run.bat"},
			{Name: "gpu-worker", Type: "exe", Process: "worker.exe", Path: `C:\svc\gpu`, MonitorHang: true, HangTimeout: "1m"},
			{Name: "archiver", Type: "exe", Process: "archiver.exe", Path: `C:\svc\archive`, Disabled: true},
		},
	}
}

// NewDemo returns a demo backend with every enabled process running.
func NewDemo(version string, opts ...DemoOption) *Demo {
	d := &Demo{
		version: version,
		model:   DefaultDemoModel(),
		procs:   make(map[string]*demoProc),
		nextPid: 4100,
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 1)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.syncRoster()
	for _, p := range d.model.Processes {
		if !p.Disabled {
			d.launch(d.procs[p.Name], StatusRunning)
		}
	}
	return d
}

// syncRoster adds state for new definitions and drops removed ones.
func (d *Demo) syncRoster() {
	keep := make(map[string]*demoProc, len(d.model.Processes))
	for i, p := range d.model.Processes {
		st, ok := d.procs[p.Name]
		if !ok {
			st = &demoProc{
				status: StatusStopped,
				phase:  float64(i) * 1.3,
				load:   15 + float64(i*13%60),
			}
		}
		if p.Disabled {
			st.status = StatusDisabled
			st.pid = 0
		} else if st.status == StatusDisabled {
			st.status = StatusStopped
		}
		keep[p.Name] = st
	}
	d.procs = keep
}

func (d *Demo) launch(p *demoProc, status Status) {
	d.nextPid += 4 + d.rng.IntN(40)
	p.pid = d.nextPid
	p.status = status
	p.startedAt = d.now()
	p.startTick = d.tick
	p.err = ""
}

func (d *Demo) def(name string) (ProcessDef, bool) {
	for _, p := range d.model.Processes {
		if p.Name == name {
			return p, true
		}
	}
	return ProcessDef{}, false
}

func (d *Demo) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.tick++
	now := d.now()
	unit := strings.ToUpper(d.model.Settings.NetUnit)
	if unit != "MB" {
		unit = "KB"
	}

	snap := &Snapshot{
		Updated:  now.Format("2006-01-02 15:04:05"),
		Version:  d.version,
		NetMode:  "demo",
		NetUnit:  unit,
		NetDebug: fmt.Sprintf("tick=%d procs=%d", d.tick, len(d.model.Processes)),
		Items:    make([]EntityState, 0, len(d.model.Processes)),
	}

	for _, def := range d.model.Processes {
		p := d.procs[def.Name]

		// Started processes report as started for one poll, then running.
		if p.status == StatusStarted && d.tick > p.startTick+1 {
			p.status = StatusRunning
		}

		item := EntityState{
			Name:   def.Name,
			Type:   def.Type,
			Status: p.status,
			Icon:   statusIcon(p.status),
			Target: demoTarget(def),
			Error:  p.err,
		}
		if p.pid > 0 {
			item.Pid = PID(p.pid)
			item.StartedAt = p.startedAt.Format("15:04:05")
			item.Uptime = now.Sub(p.startedAt).Round(time.Second).String()
			d.fillMetrics(&item, p, unit)
			item.Hung = def.MonitorHang && d.tick%40 >= 36
		}
		snap.Items = append(snap.Items, item)
	}
	return snap, nil
}

// fillMetrics writes slowly drifting synthetic numbers as wire strings.
func (d *Demo) fillMetrics(item *EntityState, p *demoProc, unit string) {
	t := float64(d.tick)/8 + p.phase
	jitter := func(scale float64) float64 { return (d.rng.Float64() - 0.5) * scale }
	clamp := func(v float64) float64 { return math.Max(0, math.Min(100, v)) }

	cpu := clamp(p.load + 20*math.Sin(t) + jitter(6))
	gpu := clamp(p.load/2 + 25*math.Sin(t/2+1) + jitter(4))
	mem := 120 + p.load*6 + 30*math.Sin(t/5) + jitter(2)
	netKB := math.Max(0, 300+250*math.Sin(t*1.7)+jitter(40))
	ioKB := math.Max(0, 150+140*math.Cos(t/1.3)+jitter(30))

	item.CPU = strconv.FormatFloat(cpu, 'f', 1, 64)
	item.GPU = strconv.FormatFloat(gpu, 'f', 1, 64)
	item.MemMB = strconv.FormatFloat(mem, 'f', 2, 64)
	item.GPUMemMB = strconv.Itoa(int(64 + gpu*8))
	if unit == "MB" {
		item.NetKBs = strconv.FormatFloat(netKB/1024, 'f', 3, 64)
		item.IOKBs = strconv.FormatFloat(ioKB/1024, 'f', 3, 64)
	} else {
		item.NetKBs = strconv.FormatFloat(netKB, 'f', 0, 64)
		item.IOKBs = strconv.FormatFloat(ioKB, 'f', 0, 64)
	}
}

func demoTarget(def ProcessDef) string {
	if def.Command != "" {
		return strings.TrimSpace(def.Command + " " + def.Args)
	}
	return def.Process
}

func statusIcon(s Status) string {
	switch s {
	case StatusRunning:
		return "★ WORK"
	case StatusStarted:
		return "☆ RUN"
	case StatusStopped:
		return "✗ NRUN"
	case StatusDisabled:
		return "⛔ DISABLED"
	case StatusError:
		return "! ERROR"
	}
	return "☠ UNKNOWN"
}

func (d *Demo) withProc(name string, fn func(def ProcessDef, p *demoProc) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	def, ok := d.def(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProcess, name)
	}
	return fn(def, d.procs[name])
}

func (d *Demo) Start(ctx context.Context, name string) error {
	return d.withProc(name, func(def ProcessDef, p *demoProc) error {
		if def.Disabled {
			return fmt.Errorf("%s is disabled", name)
		}
		if p.status.CanStart() {
			d.launch(p, StatusStarted)
		}
		return nil
	})
}

func (d *Demo) Stop(ctx context.Context, name string) error {
	return d.withProc(name, func(def ProcessDef, p *demoProc) error {
		if p.status != StatusDisabled {
			p.status = StatusStopped
			p.pid = 0
		}
		return nil
	})
}

func (d *Demo) Restart(ctx context.Context, name string) error {
	return d.withProc(name, func(def ProcessDef, p *demoProc) error {
		if def.Disabled {
			return fmt.Errorf("%s is disabled", name)
		}
		d.launch(p, StatusStarted)
		return nil
	})
}

func (d *Demo) OpenFolder(ctx context.Context, name string) error {
	return d.withProc(name, func(def ProcessDef, p *demoProc) error {
		d.opened = append(d.opened, def.Path)
		return nil
	})
}

// Opened returns the folders OpenFolder was asked to show, oldest first.
func (d *Demo) Opened() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.opened...)
}

func (d *Demo) RestartAll(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, def := range d.model.Processes {
		if !def.Disabled {
			d.launch(d.procs[def.Name], StatusStarted)
		}
	}
	return nil
}

// KillCMD stops every cmd/bat process.
func (d *Demo) KillCMD(ctx context.Context) error {
	return d.killWhere(func(def ProcessDef) bool { return def.Type == "cmd" || def.Type == "bat" })
}

// KillNode stops every process whose image is node.exe.
func (d *Demo) KillNode(ctx context.Context) error {
	return d.killWhere(func(def ProcessDef) bool {
		return strings.EqualFold(def.Process, "node.exe") || strings.EqualFold(def.Command, "node")
	})
}

func (d *Demo) killWhere(match func(ProcessDef) bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, def := range d.model.Processes {
		p := d.procs[def.Name]
		if match(def) && p.status != StatusDisabled {
			p.status = StatusStopped
			p.pid = 0
		}
	}
	return nil
}

func (d *Demo) GetConfigModel(ctx context.Context) (*ConfigModel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m := d.model.Clone()
	return &m, nil
}

// SaveConfigModel validates and applies model. Processes keep their runtime
// state across saves when their name is unchanged.
func (d *Demo) SaveConfigModel(ctx context.Context, model ConfigModel) error {
	if err := model.Validate(); err != nil {
		return err
	}
	model = model.Clone()
	model.Normalize()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.model = model
	d.syncRoster()
	return nil
}
