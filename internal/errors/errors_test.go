package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrBackend,
		ErrSSH,
		ErrEditor,
		ErrAuth,
		ErrExport,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in procdash.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "backend error",
			code:       ErrBackend,
			message:    "Backend refused the request",
			suggestion: "Check the backend is running",
		},
		{
			name:       "editor error",
			code:       ErrEditor,
			message:    "Duplicate process name: api",
			suggestion: "Rename one of the entries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "basic error formatting",
			err:           New(ErrConfig, "Invalid configuration", "Check procdash.yaml syntax"),
			expectedParts: []string{"Invalid configuration", "Check procdash.yaml syntax"},
		},
		{
			name:          "error with failure symbol",
			err:           New(ErrBackend, "Connection failed", "Try again"),
			expectedParts: []string{"✗", "Connection failed"},
		},
		{
			name:          "error without suggestion",
			err:           New(ErrEditor, "Save failed", ""),
			expectedParts: []string{"Save failed"},
			notExpected:   []string{"suggestion"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := Wrap(cause, "Backend unreachable")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrBackend, wrapped.Code, "Wrap should default to ErrBackend code")
	assert.Equal(t, "Backend unreachable", wrapped.Message)
	assert.Equal(t, cause, wrapped.Cause)
	assert.True(t, errors.Is(wrapped, cause))
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("file not found")
	wrapped := WrapWithCode(cause, ErrConfig, "Failed to load config", "Run procdash init")

	assert.Equal(t, ErrConfig, wrapped.Code)
	assert.Equal(t, "Run procdash init", wrapped.Suggestion)
	assert.Equal(t, cause, wrapped.Unwrap())
	assert.Contains(t, wrapped.Error(), "file not found")
}

func TestErrorsAs(t *testing.T) {
	wrapped := New(ErrAuth, "Wrong secret", "")

	var pdErr *Error
	ok := errors.As(wrapped, &pdErr)

	assert.True(t, ok)
	assert.Equal(t, ErrAuth, pdErr.Code)
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Config error", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrSSH))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("dial tcp 127.0.0.1:8787: connect: connection refused"),
		ErrBackend,
		"Cannot reach the backend",
		"Start it with: procdash serve --demo",
	)

	lines := strings.Split(err.Error(), "\n")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "✗"))
	assert.Contains(t, lines[0], "Cannot reach the backend")
}

func TestOneLine(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), "boom"},
		{"multi-line plain", errors.New("first\nsecond"), "first"},
		{"structured without cause", New(ErrBackend, "Start failed", "retry"), "Start failed"},
		{"structured with cause", Wrap(errors.New("timeout\nmore"), "Start failed"), "Start failed: timeout"},
		{"structured cause is structured", Wrap(New(ErrSSH, "tunnel down", "x"), "Poll failed"), "Poll failed: tunnel down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OneLine(tt.err))
		})
	}
}
