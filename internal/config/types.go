package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete procdash.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	Backend   BackendConfig   `yaml:"backend" mapstructure:"backend"`
	Poll      PollConfig      `yaml:"poll" mapstructure:"poll"`
	History   HistoryConfig   `yaml:"history" mapstructure:"history"`
	Animation AnimationConfig `yaml:"animation" mapstructure:"animation"`
	Editor    EditorConfig    `yaml:"editor" mapstructure:"editor"`
	UI        UIConfig        `yaml:"ui" mapstructure:"ui"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// BackendConfig describes how to reach the supervision backend.
type BackendConfig struct {
	// URL is the base URL of the backend HTTP API (e.g., http://127.0.0.1:8787).
	URL string `yaml:"url" mapstructure:"url"`

	// Timeout bounds every single backend call, polls included.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// SSH, when set, tunnels the HTTP connection through this SSH host or alias.
	// The URL host is then dialed from the remote side.
	SSH string `yaml:"ssh,omitempty" mapstructure:"ssh"`

	// SSHInsecure skips known_hosts verification for the tunnel.
	SSHInsecure bool `yaml:"ssh_insecure,omitempty" mapstructure:"ssh_insecure"`
}

// PollConfig controls the snapshot poll cadence.
type PollConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// HistoryConfig bounds the per-entity metric history.
type HistoryConfig struct {
	// Size is the number of samples kept per metric channel.
	Size int `yaml:"size" mapstructure:"size"`

	// MaxEntities caps how many entities keep history at once.
	MaxEntities int `yaml:"max_entities" mapstructure:"max_entities"`

	// StaleAfter prunes an entity missing from this many consecutive snapshots.
	StaleAfter int `yaml:"stale_after" mapstructure:"stale_after"`
}

// AnimationConfig controls eased number transitions.
type AnimationConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Duration time.Duration `yaml:"duration" mapstructure:"duration"`
}

// EditorConfig holds the shared secret gating the config editor.
// Exactly one of Secret or SecretHash should be set.
type EditorConfig struct {
	// Secret is compared in constant time against the submitted value.
	Secret string `yaml:"secret,omitempty" mapstructure:"secret"`

	// SecretHash is a bcrypt hash (see 'procdash config hash-secret').
	SecretHash string `yaml:"secret_hash,omitempty" mapstructure:"secret_hash"`

	// SessionTTL is how long an unlocked editor stays unlocked without activity.
	SessionTTL time.Duration `yaml:"session_ttl" mapstructure:"session_ttl"`
}

// UIConfig controls terminal rendering.
type UIConfig struct {
	// Color mode: "auto", "always", or "never".
	Color string `yaml:"color" mapstructure:"color"`

	// ShowGraphs toggles trend graphs next to metric values.
	ShowGraphs bool `yaml:"show_graphs" mapstructure:"show_graphs"`
}

// LogConfig controls the log file written while the dashboard runs.
type LogConfig struct {
	File  string `yaml:"file,omitempty" mapstructure:"file"`
	Debug bool   `yaml:"debug" mapstructure:"debug"`
}

// Default values shared by the loader, validation and flag help.
const (
	DefaultBackendURL        = "http://127.0.0.1:8787"
	DefaultBackendTimeout    = 2 * time.Second
	DefaultPollInterval      = 500 * time.Millisecond
	MinPollInterval          = 100 * time.Millisecond
	DefaultHistorySize       = 40
	DefaultMaxEntities       = 256
	DefaultStaleAfter        = 120
	DefaultAnimationDuration = 320 * time.Millisecond
	DefaultSessionTTL        = 15 * time.Minute
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Backend: BackendConfig{
			URL:     DefaultBackendURL,
			Timeout: DefaultBackendTimeout,
		},
		Poll: PollConfig{
			Interval: DefaultPollInterval,
		},
		History: HistoryConfig{
			Size:        DefaultHistorySize,
			MaxEntities: DefaultMaxEntities,
			StaleAfter:  DefaultStaleAfter,
		},
		Animation: AnimationConfig{
			Enabled:  true,
			Duration: DefaultAnimationDuration,
		},
		Editor: EditorConfig{
			SessionTTL: DefaultSessionTTL,
		},
		UI: UIConfig{
			Color:      "auto",
			ShowGraphs: true,
		},
	}
}
