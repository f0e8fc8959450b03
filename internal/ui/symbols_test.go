package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusSymbol(t *testing.T) {
	tests := map[string]string{
		"running":  SymbolComplete,
		"started":  SymbolProgress,
		"stopped":  SymbolPending,
		"disabled": SymbolSkipped,
		"error":    SymbolFail,
		"bogus":    SymbolPending,
	}
	for status, want := range tests {
		assert.Equal(t, want, StatusSymbol(status), status)
	}
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, ColorSuccess, StatusColor("running"))
	assert.Equal(t, ColorWarning, StatusColor("started"))
	assert.Equal(t, ColorError, StatusColor("error"))
	assert.Equal(t, ColorMuted, StatusColor("disabled"))
	assert.Equal(t, ColorPrimary, StatusColor(""))
}
