package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCompletion runs 'procdash completion <shell>' through the real root command.
func runCompletion(t *testing.T, shell string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"completion", shell})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCompletionBashGeneration(t *testing.T) {
	out, err := runCompletion(t, "bash")
	require.NoError(t, err)

	assert.Contains(t, out, "# bash completion for procdash")
	assert.Contains(t, out, "__procdash_debug")
}

func TestCompletionZshGeneration(t *testing.T) {
	out, err := runCompletion(t, "zsh")
	require.NoError(t, err)

	assert.Contains(t, out, "#compdef procdash")
	assert.Contains(t, out, "_procdash()")
}

func TestCompletionFishGeneration(t *testing.T) {
	out, err := runCompletion(t, "fish")
	require.NoError(t, err)

	assert.Contains(t, out, "# fish completion for procdash")
	assert.Contains(t, out, "complete -c procdash")
}

func TestCompletionPowerShellGeneration(t *testing.T) {
	out, err := runCompletion(t, "powershell")
	require.NoError(t, err)

	assert.Contains(t, out, "procdash")
	assert.Contains(t, out, "Register-ArgumentCompleter")
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	_, err := runCompletion(t, "tcsh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument")
}
