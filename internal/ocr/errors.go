package ocr

import (
	"errors"
	"fmt"
)

// Recognition failures, classified at the engine boundary
var (
	// ErrEmptyImage is returned for a nil or zero-sized image.
	ErrEmptyImage = errors.New("image is empty")

	// ErrEngineUnavailable is returned when the engine is missing credentials or its runtime.
	ErrEngineUnavailable = errors.New("ocr engine unavailable")

	// ErrRecognitionFailed is returned when the engine ran but produced an error.
	ErrRecognitionFailed = errors.New("text recognition failed")

	// ErrCanceled is returned when the caller's context ended before recognition finished.
	ErrCanceled = errors.New("text recognition canceled")
)

// Error represents a recognition failure with context
type Error struct {
	Op     string
	Engine string
	Err    error
}

func (e *Error) Error() string {
	if e.Engine != "" {
		return fmt.Sprintf("ocr.%s [%s]: %v", e.Op, e.Engine, e.Err)
	}
	return fmt.Sprintf("ocr.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify maps err onto one of the package sentinels
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrEmptyImage):
		return ErrEmptyImage
	case errors.Is(err, ErrEngineUnavailable):
		return ErrEngineUnavailable
	case errors.Is(err, ErrCanceled):
		return ErrCanceled
	default:
		return ErrRecognitionFailed
	}
}
