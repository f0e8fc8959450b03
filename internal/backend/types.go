package backend

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Status is the runtime state the backend reports for a managed process.
type Status string

const (
	StatusUnknown  Status = "unknown"
	StatusRunning  Status = "running"
	StatusStarted  Status = "started"
	StatusStopped  Status = "stopped"
	StatusDisabled Status = "disabled"
	StatusError    Status = "error"
)

// CanStart reports whether a start request makes sense for this status.
func (s Status) CanStart() bool {
	return s != StatusRunning && s != StatusStarted
}

// Snapshot is one full poll result. It is never mutated after decoding.
type Snapshot struct {
	Updated  string        `json:"updated"`
	Version  string        `json:"version"`
	NetMode  string        `json:"net_mode,omitempty"`
	NetErr   string        `json:"net_err,omitempty"`
	NetDebug string        `json:"net_dbg,omitempty"`
	NetUnit  string        `json:"net_unit,omitempty"`
	Items    []EntityState `json:"items"`
}

// Unit returns the network/IO display unit, KB unless the backend says MB.
func (s *Snapshot) Unit() string {
	if strings.EqualFold(strings.TrimSpace(s.NetUnit), "MB") {
		return "MB"
	}
	return "KB"
}

// Names returns the set of entity names in this snapshot.
func (s *Snapshot) Names() map[string]struct{} {
	out := make(map[string]struct{}, len(s.Items))
	for _, it := range s.Items {
		out[it.Name] = struct{}{}
	}
	return out
}

// EntityState is one managed process as observed in a snapshot. Metrics
// travel as strings and are read through the accessor methods.
type EntityState struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Status    Status `json:"status"`
	Icon      string `json:"icon"`
	Pid       PID    `json:"pid"`
	StartedAt string `json:"started_at"`
	Uptime    string `json:"uptime"`
	CPU       string `json:"cpu,omitempty"`
	GPU       string `json:"gpu,omitempty"`
	MemMB     string `json:"mem_mb,omitempty"`
	NetKBs    string `json:"net_kbs,omitempty"`
	IOKBs     string `json:"io_kbs,omitempty"`
	GPUMemMB  string `json:"gpu_mem_mb,omitempty"`
	Target    string `json:"target"`
	Error     string `json:"error"`
	Hung      bool   `json:"hung"`
}

// Metrics holds the five parsed metric channels of an entity.
type Metrics struct {
	CPU float64
	GPU float64
	Mem float64
	Net float64
	IO  float64
}

// Metrics parses every metric field, defaulting malformed values to 0.
func (e EntityState) Metrics() Metrics {
	return Metrics{
		CPU: ParseMetric(e.CPU),
		GPU: ParseMetric(e.GPU),
		Mem: ParseMetric(e.MemMB),
		Net: ParseMetric(e.NetKBs),
		IO:  ParseMetric(e.IOKBs),
	}
}

// ParseMetric converts a wire metric to a finite number. Empty, garbage,
// suffixed ("12abc", "42%"), NaN and infinite values all become 0.
func ParseMetric(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return Finite(v)
}

// Finite maps NaN and ±Inf to 0.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// PID is an optional process id. Zero means no pid. The backend sends it as a
// string, but plain JSON numbers are accepted too.
type PID int

// UnmarshalJSON accepts "1234", 1234, "", null and garbage (garbage becomes 0).
func (p *PID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*p = 0
		return nil
	}
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = unq
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !(f > 0) || math.IsInf(f, 0) || f > math.MaxInt32 {
		*p = 0
		return nil
	}
	*p = PID(math.Round(f))
	return nil
}

// MarshalJSON writes the pid the way the backend does: a string, empty for none.
func (p PID) MarshalJSON() ([]byte, error) {
	if p <= 0 {
		return json.Marshal("")
	}
	return json.Marshal(strconv.Itoa(int(p)))
}

// Valid reports whether a pid is present.
func (p PID) Valid() bool { return p > 0 }

// ConfigModel is the editable view of the backend's process definitions and
// global settings.
type ConfigModel struct {
	Settings  Settings     `json:"settings" yaml:"settings"`
	Processes []ProcessDef `json:"processes" yaml:"processes"`
}

// Settings are the backend's global supervision settings.
type Settings struct {
	CheckTiming           string `json:"checkTiming" yaml:"check_timing"`
	RestartTiming         string `json:"restartTiming" yaml:"restart_timing"`
	UseETWNetwork         bool   `json:"useETWNetwork" yaml:"use_etw_network"`
	NetDebug              bool   `json:"netDebug" yaml:"net_debug"`
	NetUnit               string `json:"netUnit" yaml:"net_unit"`
	NetScale              string `json:"netScale" yaml:"net_scale"`
	LaunchInNewConsole    bool   `json:"launchInNewConsole" yaml:"launch_in_new_console"`
	AutoCloseErrorDialogs bool   `json:"autoCloseErrorDialogs" yaml:"auto_close_error_dialogs"`
	ErrorWindowTitles     string `json:"errorWindowTitles" yaml:"error_window_titles"`
}

// ProcessDef is one managed process definition.
type ProcessDef struct {
	Name         string `json:"name" yaml:"name"`
	Disabled     bool   `json:"disabled" yaml:"disabled"`
	Type         string `json:"type" yaml:"type"`
	Process      string `json:"process" yaml:"process"`
	Path         string `json:"path" yaml:"path"`
	Command      string `json:"command" yaml:"command"`
	Args         string `json:"args" yaml:"args"`
	CheckProcess string `json:"checkProcess" yaml:"check_process"`
	CheckCmdline string `json:"checkCmdline" yaml:"check_cmdline"`
	MonitorHang  bool   `json:"monitorHang" yaml:"monitor_hang"`
	HangTimeout  string `json:"hangTimeout" yaml:"hang_timeout"`
}

// ProcessTypes are the accepted values of ProcessDef.Type.
var ProcessTypes = []string{"exe", "cmd", "bat"}

// NetUnits are the accepted values of Settings.NetUnit.
var NetUnits = []string{"KB", "MB"}

// Clone returns a deep copy so a working copy never aliases its source.
func (m ConfigModel) Clone() ConfigModel {
	out := ConfigModel{Settings: m.Settings}
	if m.Processes != nil {
		out.Processes = make([]ProcessDef, len(m.Processes))
		copy(out.Processes, m.Processes)
	}
	return out
}
