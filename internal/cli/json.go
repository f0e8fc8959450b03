package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/procdash/internal/backend"
	"github.com/rileyhilliard/procdash/internal/errors"
)

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound     = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid      = "CONFIG_INVALID"
	ErrCodeBackendUnreachable = "BACKEND_UNREACHABLE"
	ErrCodeBackendRejected    = "BACKEND_REJECTED"
	ErrCodeSSHFailed          = "SSH_FAILED"
	ErrCodeAuthFailed         = "AUTH_FAILED"
	ErrCodeExportFailed       = "EXPORT_FAILED"
	ErrCodeUnknown            = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: false, Error: ErrorToJSON(err)})
}

// jsonOr writes err as a JSON envelope when asJSON is set, then returns it
// so the exit status still reflects the failure.
func jsonOr(asJSON bool, w io.Writer, err error) error {
	if asJSON {
		_ = WriteJSONFromError(w, err)
	}
	return err
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var beErr *backend.Error
	rejected := stderrors.As(err, &beErr)

	var pdErr *errors.Error
	if stderrors.As(err, &pdErr) {
		out := &JSONError{
			Code:       mapErrorCode(pdErr),
			Message:    pdErr.Message,
			Suggestion: pdErr.Suggestion,
		}
		if rejected {
			out.Details = map[string]interface{}{"status": beErr.Status, "reason": beErr.Message}
		}
		return out
	}

	if rejected {
		return &JSONError{
			Code:    ErrCodeBackendRejected,
			Message: beErr.Message,
			Details: map[string]interface{}{"status": beErr.Status},
		}
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(err *errors.Error) string {
	switch err.Code {
	case errors.ErrConfig:
		msg := strings.ToLower(err.Message)
		if strings.Contains(msg, "not found") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrBackend:
		var beErr *backend.Error
		if stderrors.As(err, &beErr) {
			return ErrCodeBackendRejected
		}
		return ErrCodeBackendUnreachable
	case errors.ErrSSH:
		return ErrCodeSSHFailed
	case errors.ErrAuth:
		return ErrCodeAuthFailed
	case errors.ErrExport:
		return ErrCodeExportFailed
	}
	return ErrCodeUnknown
}
