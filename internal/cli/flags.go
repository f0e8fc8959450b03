package cli

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/procdash/internal/config"
	"github.com/rileyhilliard/procdash/internal/errors"
	"github.com/spf13/cobra"
)

// BackendFlags override the backend section of the config file.
type BackendFlags struct {
	URL     string
	Timeout string
	SSH     string
}

// AddBackendFlags registers --url, --timeout and --ssh on a command.
func AddBackendFlags(cmd *cobra.Command, flags *BackendFlags) {
	cmd.Flags().StringVar(&flags.URL, "url", "", "backend URL (overrides backend.url)")
	cmd.Flags().StringVar(&flags.Timeout, "timeout", "", "per-call backend timeout (e.g., 2s, 500ms)")
	cmd.Flags().StringVar(&flags.SSH, "ssh", "", "tunnel through this SSH host or alias")
}

// Apply copies the set flags onto cfg.
func (f BackendFlags) Apply(cfg *config.Config) error {
	if f.URL != "" {
		cfg.Backend.URL = f.URL
	}
	if f.SSH != "" {
		cfg.Backend.SSH = f.SSH
	}
	timeout, err := ParseDurationFlag("timeout", f.Timeout, 0)
	if err != nil {
		return err
	}
	if timeout > 0 {
		cfg.Backend.Timeout = timeout
	}
	return nil
}

// ParseDurationFlag parses a duration flag. It returns zero when the flag is
// empty and rejects values below minimum.
func ParseDurationFlag(name, flag string, minimum time.Duration) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid --%s", flag, name),
			"Try something like 500ms, 2s, or 1m.")
	}
	if d <= 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("--%s must be positive", name),
			"Try something like 500ms, 2s, or 1m.")
	}
	if d < minimum {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("--%s %s is too short", name, d),
			fmt.Sprintf("Use at least %s.", minimum))
	}
	return d, nil
}
