package render

import (
	"errors"
	"fmt"
)

// Common rendering errors
var (
	// ErrLayoutFailed is returned when the PDF engine reports an error while
	// placing content, e.g. an unknown page size or font.
	ErrLayoutFailed = errors.New("invoice layout failed")

	// ErrOutputFailed is returned when the finished document cannot be serialized.
	ErrOutputFailed = errors.New("invoice output failed")

	// ErrVerifyFailed is returned when the generated bytes do not parse back
	// as a valid PDF.
	ErrVerifyFailed = errors.New("generated PDF failed validation")

	// ErrCanceled is returned when rendering is canceled via context.
	ErrCanceled = errors.New("invoice rendering was canceled")
)

// RenderError wraps errors with the rendering step that failed.
type RenderError struct {
	// Op is the operation that failed (e.g., "Render", "Verify").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("render: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("render: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// NewRenderError creates a new RenderError with the specified operation and underlying error.
func NewRenderError(op string, err error, details string) *RenderError {
	return &RenderError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapRenderError wraps an error as a RenderError if it isn't already one.
func WrapRenderError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var renderErr *RenderError
	if errors.As(err, &renderErr) {
		return err
	}

	return NewRenderError(op, err, details)
}
