package cli

import (
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/procdash/internal/backend"
	"github.com/stretchr/testify/require"
)

// useDemoBackend serves a demo backend over HTTP and points the CLI globals at
// a temp config for it. extra is appended to the config YAML.
func useDemoBackend(t *testing.T, extra string) (*backend.Demo, string) {
	t.Helper()

	demo := backend.NewDemo("1.4.2")
	srv := httptest.NewServer(backend.NewHandler(demo, nil))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	path := filepath.Join(dir, "procdash.yaml")
	content := fmt.Sprintf("version: 1\nbackend:\n  url: %s\n  timeout: 2s\nui:\n  color: never\n%s", srv.URL, extra)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	useConfig(t, path)
	return demo, srv.URL
}

// useConfig sets --config and --log-file for the duration of the test.
func useConfig(t *testing.T, path string) {
	t.Helper()

	prevCfg, prevLog, prevNoColor := cfgFile, logFile, noColor
	cfgFile = path
	logFile = filepath.Join(t.TempDir(), "procdash.log")
	noColor = true
	t.Cleanup(func() {
		cfgFile, logFile, noColor = prevCfg, prevLog, prevNoColor
	})
	withoutTerminal(t)
}

// withoutTerminal makes stdin and stdout look like pipes.
func withoutTerminal(t *testing.T) {
	t.Helper()

	prevIn, prevOut := stdinIsTerminal, stdoutIsTerminal
	stdinIsTerminal = func() bool { return false }
	stdoutIsTerminal = func() bool { return false }
	t.Cleanup(func() {
		stdinIsTerminal, stdoutIsTerminal = prevIn, prevOut
	})
}
