package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rileyhilliard/procdash/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but procdash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade procdash or lower the version field")
	}

	if err := validateBackend(cfg.Backend); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'backend' section in your procdash.yaml.")
	}

	if cfg.Poll.Interval < MinPollInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("poll.interval %s is too fast", cfg.Poll.Interval),
			fmt.Sprintf("Use at least %s.", MinPollInterval))
	}

	if err := validateHistory(cfg.History); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'history' section in your procdash.yaml.")
	}

	if cfg.Animation.Duration < 0 {
		return errors.New(errors.ErrConfig,
			"animation.duration can't be negative",
			"Use something like 320ms, or set animation.enabled: false.")
	}

	if err := validateEditor(cfg.Editor); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'editor' section in your procdash.yaml.")
	}

	switch cfg.UI.Color {
	case "", "auto", "always", "never":
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a valid ui.color", cfg.UI.Color),
			"Use one of: auto, always, never")
	}

	return nil
}

func validateBackend(b BackendConfig) error {
	if strings.TrimSpace(b.URL) == "" {
		return fmt.Errorf("backend.url is required")
	}
	u, err := url.Parse(b.URL)
	if err != nil {
		return fmt.Errorf("backend.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.url must start with http:// or https://, got %q", b.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("backend.url %q has no host", b.URL)
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}
	if strings.ContainsAny(b.SSH, " \t\n") {
		return fmt.Errorf("backend.ssh %q can't contain whitespace", b.SSH)
	}
	return nil
}

func validateHistory(h HistoryConfig) error {
	if h.Size < 2 {
		return fmt.Errorf("history.size must be at least 2, got %d", h.Size)
	}
	if h.MaxEntities < 1 {
		return fmt.Errorf("history.max_entities must be at least 1, got %d", h.MaxEntities)
	}
	if h.StaleAfter < 1 {
		return fmt.Errorf("history.stale_after must be at least 1, got %d", h.StaleAfter)
	}
	return nil
}

func validateEditor(e EditorConfig) error {
	if e.Secret != "" && e.SecretHash != "" {
		return fmt.Errorf("set editor.secret or editor.secret_hash, not both")
	}
	if e.SecretHash != "" && !strings.HasPrefix(e.SecretHash, "$2") {
		return fmt.Errorf("editor.secret_hash doesn't look like a bcrypt hash")
	}
	if e.SessionTTL < time.Second {
		return fmt.Errorf("editor.session_ttl must be at least 1s, got %s", e.SessionTTL)
	}
	return nil
}

// HasEditorSecret reports whether the config editor can be unlocked at all.
func (c *Config) HasEditorSecret() bool {
	return c.Editor.Secret != "" || c.Editor.SecretHash != ""
}
