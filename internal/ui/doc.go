// Package ui provides terminal output helpers for procdash's one-shot
// commands: the status table, sparklines, a line spinner, the branded
// header and huh prompts.
//
// The interactive dashboard lives in internal/monitor; this package covers
// everything printed outside of it.
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - running processes, successful calls
//	ColorError     (red)    - errors and failed calls
//	ColorWarning   (yellow) - starting or hung processes
//	ColorInfo      (cyan)   - branding
//	ColorMuted     (gray)   - secondary text, timing info
//	ColorSecondary (blue)   - in-progress indicators
//
// ConfigureColors applies the ui.color setting; DisableColors backs --no-color.
//
// # Prompts
//
// PickSSHHost, Confirm, PromptSecret and PromptText need a terminal. Callers
// check IsTerminal first and fall back to flags.
package ui
