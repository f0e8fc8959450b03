package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUnknownCommandError(t *testing.T) {
	assert.True(t, isUnknownCommandError(fmt.Errorf(`unknown command "stauts" for "procdash"`)))
	assert.True(t, isUnknownCommandError(fmt.Errorf("unknown flag: --jsn")))
	assert.True(t, isUnknownCommandError(fmt.Errorf("unknown shorthand flag: 'z' in -z")))
	assert.False(t, isUnknownCommandError(fmt.Errorf("backend.url is required")))
}

func TestRootCommand_Subcommands(t *testing.T) {
	want := []string{"dashboard", "status", "ctl", "config", "export", "serve", "init", "version", "completion"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "no-color", "log-file", "debug"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	for _, name := range []string{"url", "timeout", "ssh", "interval", "no-graphs"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), name)
		assert.NotNil(t, dashboardCmd.Flags().Lookup(name), name)
	}
}

func TestRootCommand_Help(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--help"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "procdash polls a process-supervision backend")
	assert.Contains(t, buf.String(), "status")
}

func TestConfigAccessor(t *testing.T) {
	prev := cfgFile
	t.Cleanup(func() { cfgFile = prev })

	cfgFile = "/tmp/custom.yaml"
	assert.Equal(t, "/tmp/custom.yaml", Config())
}
