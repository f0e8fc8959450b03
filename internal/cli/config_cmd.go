package cli

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/procdash/internal/backend"
	"github.com/rileyhilliard/procdash/internal/config"
	"github.com/rileyhilliard/procdash/internal/editor"
	"github.com/rileyhilliard/procdash/internal/errors"
	"github.com/rileyhilliard/procdash/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// redacted replaces secrets in 'config show' output.
const redacted = "<redacted>"

var (
	configExportBackend BackendFlags
	configExportOut     string
	secretFromStdin     bool
	hashCost            int
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect procdash and backend configuration",
	Long: `Inspect the local procdash configuration, export the backend's process
configuration, or hash an editor secret.

Examples:
  procdash config show
  procdash config export --out backend.yaml
  procdash config hash-secret`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective procdash config",
	Long: `Print the config procdash would run with: the config file merged over
defaults and PROCDASH_* environment overrides. Secrets are redacted.

Examples:
  procdash config show
  PROCDASH_POLL_INTERVAL=1s procdash config show`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCommand(cmd.OutOrStdout())
	},
}

var configExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the backend's process configuration as YAML",
	Long: `Fetch the backend's settings and process definitions and write them as
YAML for offline review. The editor secret is required, as in the dashboard.

The secret is prompted for, or read from the first line of stdin with
--secret-stdin.

Examples:
  procdash config export
  procdash config export --out backend.yaml
  echo "$SECRET" | procdash config export --secret-stdin`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configExportCommand(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), configExportOut)
	},
}

var configHashSecretCmd = &cobra.Command{
	Use:   "hash-secret",
	Short: "Hash an editor secret for editor.secret_hash",
	Long: `Hash an editor secret with bcrypt. Put the result in editor.secret_hash
instead of keeping the plain secret in editor.secret.

Examples:
  procdash config hash-secret
  echo "$SECRET" | procdash config hash-secret --secret-stdin`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return hashSecretCommand(cmd.InOrStdin(), cmd.OutOrStdout(), hashCost)
	},
}

func init() {
	AddBackendFlags(configExportCmd, &configExportBackend)
	configExportCmd.Flags().StringVarP(&configExportOut, "out", "o", "", "write to this file instead of stdout")
	configExportCmd.Flags().BoolVar(&secretFromStdin, "secret-stdin", false, "read the editor secret from stdin")
	configHashSecretCmd.Flags().BoolVar(&secretFromStdin, "secret-stdin", false, "read the secret from stdin")
	configHashSecretCmd.Flags().IntVar(&hashCost, "cost", 0, "bcrypt cost (default: library default)")

	configCmd.AddCommand(configShowCmd, configExportCmd, configHashSecretCmd)
}

func configShowCommand(stdout io.Writer) error {
	cfg, path, err := config.LoadOrDefault(Config())
	if err != nil {
		return err
	}

	shown := *cfg
	if shown.Editor.Secret != "" {
		shown.Editor.Secret = redacted
	}
	if shown.Editor.SecretHash != "" {
		shown.Editor.SecretHash = redacted
	}

	data, err := config.Render(&shown)
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "defaults (no config file found)"
	}
	fmt.Fprintf(stdout, "# source: %s\n", source)
	_, err = stdout.Write(data)
	return err
}

func configExportCommand(ctx context.Context, stdin io.Reader, stdout io.Writer, out string) error {
	e, err := loadEnv("config-export", &configExportBackend)
	if err != nil {
		return err
	}
	defer e.Close()

	if !e.cfg.HasEditorSecret() {
		return errors.New(errors.ErrAuth,
			"No editor secret is configured",
			"Set editor.secret or editor.secret_hash in procdash.yaml.")
	}
	verifier, err := editor.NewVerifier(e.cfg.Editor.Secret, e.cfg.Editor.SecretHash)
	if err != nil {
		return err
	}

	secret, err := readSecret(stdin, "Editor secret")
	if err != nil {
		return err
	}

	client, err := e.backend()
	if err != nil {
		return err
	}

	model, err := unlockAndFetch(ctx, client, verifier, e, secret)
	if err != nil {
		return err
	}

	data, err := marshalConfigModel(model)
	if err != nil {
		return err
	}

	if out == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport,
			"Couldn't write "+out,
			"Check the directory exists and is writable.")
	}
	fmt.Fprintf(stdout, "%s Wrote %d processes to %s\n", ui.SymbolSuccess, len(model.Processes), out)
	return nil
}

// unlockAndFetch runs the editor's unlock flow once and returns the fetched model.
func unlockAndFetch(ctx context.Context, b backend.Backend, v editor.Verifier, e *env, secret string) (*backend.ConfigModel, error) {
	ed := editor.New(b, v,
		editor.WithSessionTTL(e.cfg.Editor.SessionTTL),
		editor.WithLogger(e.log))
	ed.Toggle()
	defer ed.Close()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Backend.Timeout)
	defer cancel()

	if err := ed.Submit(ctx, secret); err != nil {
		if stderrors.Is(err, editor.ErrInvalidSecret) {
			return nil, errors.New(errors.ErrAuth,
				"Invalid secret",
				"Use the value of editor.secret, or the secret behind editor.secret_hash.")
		}
		return nil, err
	}
	model := ed.Working().Clone()
	return &model, nil
}

// marshalConfigModel renders the backend config as YAML with a header comment.
func marshalConfigModel(model *backend.ConfigModel) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(model); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExport, "Couldn't encode the backend config", "")
	}
	doc.HeadComment = fmt.Sprintf("backend configuration: %d processes", len(model.Processes))

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExport, "Couldn't encode the backend config", "")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExport, "Couldn't encode the backend config", "")
	}
	return []byte(sb.String()), nil
}

func hashSecretCommand(stdin io.Reader, stdout io.Writer, cost int) error {
	secret, err := readSecret(stdin, "Secret to hash")
	if err != nil {
		return err
	}
	if secret == "" {
		return errors.New(errors.ErrConfig, "The secret is empty", "Enter a non-empty secret.")
	}
	hash, err := editor.HashSecret(secret, cost)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, hash)
	return nil
}

// readSecret takes the first line of stdin with --secret-stdin, otherwise
// prompts on the terminal.
func readSecret(stdin io.Reader, title string) (string, error) {
	if secretFromStdin {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !stderrors.Is(err, io.EOF) {
			return "", errors.WrapWithCode(err, errors.ErrConfig, "Couldn't read the secret from stdin", "")
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	if !stdinIsTerminal() {
		return "", errors.New(errors.ErrConfig,
			"No terminal to prompt for the secret",
			"Pipe it in with --secret-stdin.")
	}
	return ui.PromptSecret(title)
}
