// Package cli implements the procdash command-line interface.
//
// Each command is a cobra.Command that parses its flags into an options
// struct and hands off to a plain function taking a context and writers, so
// the logic can be tested without going through cobra.
//
// # Command Structure
//
//	procdash                 - Live dashboard (same as 'procdash dashboard')
//	procdash status          - One-shot process table, --json for scripts
//	procdash ctl <action>    - Start/stop/restart a process, or roster-wide actions
//	procdash config show     - Effective local config, secrets redacted
//	procdash config export   - Backend process config as YAML (needs the editor secret)
//	procdash config hash-secret - bcrypt hash for editor.secret_hash
//	procdash export          - HTML report with trend graphs
//	procdash serve           - Demo backend, or a local relay to the real one
//	procdash init            - Create procdash.yaml
//
// # Startup
//
// loadEnv is shared by every command that talks to the backend: it loads
// the config (file, defaults, PROCDASH_* overrides), applies --url,
// --timeout and --ssh, validates, sets the color profile and opens the log
// file. The dashboard owns the terminal, so logs never go to stderr.
//
// # Flag Handling
//
// Global flags (--config, --no-color, --log-file, --debug) are defined on
// the root command. Backend overrides are added per command with
// AddBackendFlags.
package cli
