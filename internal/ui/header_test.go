package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderHeader(t *testing.T) {
	out := stripANSI(RenderHeader(HeaderInfo{
		Version: "v1.2.0",
		Tagline: "Process dashboard",
		Detail:  "http://127.0.0.1:8787",
	}))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "procdash v1.2.0", lines[0])
	assert.Equal(t, "Process dashboard", lines[1])
	assert.Equal(t, "http://127.0.0.1:8787", lines[2])
	assert.Equal(t, strings.Repeat("━", HeaderWidth), lines[3])
}

func TestRenderHeader_Minimal(t *testing.T) {
	out := stripANSI(RenderHeader(HeaderInfo{}))
	assert.True(t, strings.HasPrefix(out, "procdash\n"))
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 2)
}
