package backend

import (
	"errors"
	"fmt"
)

// LoadFailureKind classifies why a model failed to load.
type LoadFailureKind int

const (
	LoadFailureUnknown LoadFailureKind = iota
	LoadFileNotFound
	LoadUnsupportedFormat
	LoadResourceExhausted
)

func (k LoadFailureKind) String() string {
	switch k {
	case LoadFileNotFound:
		return "file not found"
	case LoadUnsupportedFormat:
		return "unsupported format"
	case LoadResourceExhausted:
		return "resource exhausted"
	default:
		return "load failure"
	}
}

// ModelLoadError reports a failed model load. The handler that returned it is
// left in the unloaded state.
type ModelLoadError struct {
	Kind LoadFailureKind
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load model %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("load model %s: %s", e.Path, e.Kind)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// NewModelLoadError wraps err as a load failure of the given kind.
func NewModelLoadError(kind LoadFailureKind, path string, err error) *ModelLoadError {
	return &ModelLoadError{Kind: kind, Path: path, Err: err}
}

// IsModelLoadError reports whether err is a ModelLoadError of the given kind.
func IsModelLoadError(err error, kind LoadFailureKind) bool {
	var loadErr *ModelLoadError
	return errors.As(err, &loadErr) && loadErr.Kind == kind
}

// InferenceError reports a runtime failure during generation. The model stays
// loaded; the caller may simply retry.
type InferenceError struct {
	Backend Kind
	Err     error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s inference: %v", e.Backend, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// NewInferenceError wraps err as an inference failure for the given backend.
func NewInferenceError(kind Kind, err error) *InferenceError {
	return &InferenceError{Backend: kind, Err: err}
}
