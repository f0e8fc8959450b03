package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/procdash/internal/config"
	"github.com/rileyhilliard/procdash/internal/editor"
	"github.com/rileyhilliard/procdash/internal/errors"
	"github.com/rileyhilliard/procdash/internal/logger"
	"github.com/rileyhilliard/procdash/internal/ui"
	"github.com/rileyhilliard/procdash/pkg/sshutil"
	"github.com/spf13/cobra"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	URL            string // Pre-specified backend URL
	SSH            string // Pre-specified SSH host/alias
	Global         bool   // Write ~/.config/procdash/config.yaml instead of ./procdash.yaml
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use flags and defaults
	SkipCheck      bool   // Don't poll the backend before saving
}

var initOpts InitOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a procdash.yaml config file",
	Long: `Create a commented procdash.yaml. Interactively, you are asked for the
backend URL, an optional SSH host from ~/.ssh/config to tunnel through, and
an optional editor secret (stored as a bcrypt hash). The backend is polled
once before saving.

Examples:
  procdash init
  procdash init --global
  procdash init --url http://10.0.0.5:8787 --non-interactive`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOpts
		if !stdinIsTerminal() {
			opts.NonInteractive = true
		}
		return Init(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	initCmd.Flags().StringVar(&initOpts.URL, "url", "", "backend URL")
	initCmd.Flags().StringVar(&initOpts.SSH, "ssh", "", "SSH host or alias to tunnel through")
	initCmd.Flags().BoolVar(&initOpts.Global, "global", false, "write the global config (~/.config/procdash/config.yaml)")
	initCmd.Flags().BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initOpts.NonInteractive, "non-interactive", false, "don't prompt, use flags and defaults")
	initCmd.Flags().BoolVar(&initOpts.SkipCheck, "skip-check", false, "don't poll the backend before saving")
}

// initPath returns where init writes.
func initPath(global bool) (string, error) {
	if !global {
		return filepath.Join(".", config.ConfigFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't find your home directory",
			"Write a local config instead (drop --global).")
	}
	return filepath.Join(home, config.GlobalConfigDir, config.GlobalConfigFile), nil
}

func validateBackendURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter a URL like http://127.0.0.1:8787")
	}
	return nil
}

// Init creates a new procdash.yaml configuration file.
func Init(ctx context.Context, stdout io.Writer, opts InitOptions) error {
	path, err := initPath(opts.Global)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}
		ok, err := ui.Confirm(fmt.Sprintf("'%s' already exists. Overwrite?", path), "")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(stdout, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if opts.URL != "" {
		cfg.Backend.URL = strings.TrimRight(strings.TrimSpace(opts.URL), "/")
	}
	cfg.Backend.SSH = opts.SSH

	if !opts.NonInteractive {
		if err := promptInit(cfg, opts); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if !opts.SkipCheck {
		if err := checkBackend(ctx, stdout, cfg, opts.NonInteractive); err != nil {
			return err
		}
	}

	if err := config.Write(path, cfg, true); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s Created %s\n", ui.SymbolSuccess, path)
	fmt.Fprintln(stdout, "  Run 'procdash' to open the dashboard.")
	return nil
}

// promptInit fills cfg from interactive prompts.
func promptInit(cfg *config.Config, opts InitOptions) error {
	if opts.URL == "" {
		u, err := ui.PromptText("Backend URL", cfg.Backend.URL, validateBackendURL)
		if err != nil {
			return err
		}
		cfg.Backend.URL = strings.TrimRight(strings.TrimSpace(u), "/")
	}

	if opts.SSH == "" {
		// A missing or unreadable ~/.ssh/config just means nothing to pick.
		hosts, _ := sshutil.ListHosts()
		alias, err := ui.PickSSHHost(hosts)
		if err != nil {
			return err
		}
		cfg.Backend.SSH = alias
	}

	protect, err := ui.Confirm("Protect the config editor with a secret?",
		"Without one the editor stays disabled.")
	if err != nil {
		return err
	}
	if protect {
		secret, err := ui.PromptSecret("Editor secret")
		if err != nil {
			return err
		}
		if secret != "" {
			hash, err := editor.HashSecret(secret, 0)
			if err != nil {
				return err
			}
			cfg.Editor.SecretHash = hash
		}
	}
	return nil
}

// checkBackend polls the backend once. Interactively a failure can be
// ignored; otherwise it aborts.
func checkBackend(ctx context.Context, stdout io.Writer, cfg *config.Config, nonInteractive bool) error {
	e := &env{cfg: cfg, log: logger.Noop()}
	defer e.Close()

	client, err := e.backend()
	if err != nil {
		return err
	}

	spin := ui.NewSpinner("Polling "+e.label(), stdout, isTerminalWriter(stdout))
	spin.Start()

	ctx, cancel := context.WithTimeout(ctx, cfg.Backend.Timeout)
	defer cancel()
	snap, err := client.GetSnapshot(ctx)
	if err == nil {
		spin.SetLabel(fmt.Sprintf("Backend %s reports %d processes", orUnknown(snap.Version), len(snap.Items)))
		spin.Success()
		return nil
	}
	spin.Fail()

	failure := errors.WrapWithCode(err, errors.ErrBackend,
		fmt.Sprintf("Couldn't reach the backend at %s", e.label()),
		"Start the backend, fix the URL, or pass --skip-check to save anyway.")
	if nonInteractive {
		return failure
	}

	fmt.Fprintf(stdout, "\n%s %s\n\n", ui.SymbolFail, errors.OneLine(err))
	saveAnyway, promptErr := ui.Confirm("Save config anyway?", "You can start the backend later.")
	if promptErr != nil || !saveAnyway {
		return failure
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown version)"
	}
	return s
}
