package tool

import (
	"errors"

	"github.com/wrenlabs/docsmith/engine"
	"github.com/wrenlabs/docsmith/workspace"
)

// Envelope is the uniform response wrapper returned by every operation.
// Error is present exactly when Success is false.
type Envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail is the structured error block of a failed envelope.
type ErrorDetail struct {
	Code       string `json:"code"`
	Type       string `json:"type"`
	Details    string `json:"details"`
	Suggestion string `json:"suggestion"`
}

func success(message string, data map[string]any) Envelope {
	return Envelope{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// failure translates any error into a failed envelope. Sentinel errors from
// the workspace and engine map to kind codes; everything else falls back to
// the operation's family code.
func failure(err error, familyCode string) Envelope {
	opErr := translate(err, familyCode)
	return Envelope{
		Success: false,
		Message: opErr.Message,
		Error: &ErrorDetail{
			Code:       opErr.Code,
			Type:       opErr.Type,
			Details:    opErr.Error(),
			Suggestion: suggestionFor(opErr.Code),
		},
	}
}

func translate(err error, familyCode string) *OpError {
	if opErr, ok := asOpError(err); ok {
		return opErr
	}
	switch {
	case errors.Is(err, workspace.ErrInvalidPath):
		return newOpError(CodeInvalidPath, "", err)
	case errors.Is(err, engine.ErrNotFound):
		return newOpError(CodeDocumentNotFound, "", err)
	case errors.Is(err, engine.ErrIndexOutOfRange):
		return newOpError(CodeIndexOutOfRange, "", err)
	default:
		return newOpError(familyCode, "", err)
	}
}
