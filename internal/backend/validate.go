package backend

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ValidationError describes the first problem found in a ConfigModel.
// Index is the offending process entry, or -1 for settings.
type ValidationError struct {
	Index   int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ParseDuration accepts Go durations ("100ms", "1s") or plain seconds ("1.5").
// An empty string is a zero duration.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(float64(time.Second) * f), nil
}

// Normalize trims process names and the net unit in place.
func (m *ConfigModel) Normalize() {
	for i := range m.Processes {
		m.Processes[i].Name = strings.TrimSpace(m.Processes[i].Name)
	}
	m.Settings.NetUnit = strings.ToUpper(strings.TrimSpace(m.Settings.NetUnit))
}

// Validate checks names first (non-empty, unique after trimming), then the
// duration and enum fields. It does not modify m.
func (m ConfigModel) Validate() error {
	seen := make(map[string]int, len(m.Processes))
	for i, p := range m.Processes {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return &ValidationError{Index: i, Field: "name",
				Message: fmt.Sprintf("Process #%d has an empty name", i+1)}
		}
		if _, dup := seen[name]; dup {
			return &ValidationError{Index: i, Field: "name",
				Message: "Duplicate process name: " + name}
		}
		seen[name] = i
	}

	s := m.Settings
	if _, err := ParseDuration(s.CheckTiming); err != nil {
		return &ValidationError{Index: -1, Field: "checkTiming", Message: "checkTiming: " + err.Error()}
	}
	if _, err := ParseDuration(s.RestartTiming); err != nil {
		return &ValidationError{Index: -1, Field: "restartTiming", Message: "restartTiming: " + err.Error()}
	}
	if unit := strings.ToUpper(strings.TrimSpace(s.NetUnit)); unit != "" && !slices.Contains(NetUnits, unit) {
		return &ValidationError{Index: -1, Field: "netUnit",
			Message: fmt.Sprintf("netUnit must be KB or MB, got %q", s.NetUnit)}
	}
	if ns := strings.TrimSpace(s.NetScale); ns != "" {
		if _, err := strconv.ParseFloat(ns, 64); err != nil {
			return &ValidationError{Index: -1, Field: "netScale",
				Message: fmt.Sprintf("netScale must be a number, got %q", s.NetScale)}
		}
	}

	for i, p := range m.Processes {
		if p.Type != "" && !slices.Contains(ProcessTypes, p.Type) {
			return &ValidationError{Index: i, Field: "type",
				Message: fmt.Sprintf("%s: type must be exe, cmd or bat, got %q", strings.TrimSpace(p.Name), p.Type)}
		}
		if _, err := ParseDuration(p.HangTimeout); err != nil {
			return &ValidationError{Index: i, Field: "hangTimeout",
				Message: fmt.Sprintf("%s: hangTimeout: %v", strings.TrimSpace(p.Name), err)}
		}
	}
	return nil
}
