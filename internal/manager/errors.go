package manager

import (
	"errors"
	"net/http"

	"memoryd/internal/runtime"
)

// LifecycleErrorKind tags a LifecycleError.
type LifecycleErrorKind string

const (
	FileNotFound      LifecycleErrorKind = "file_not_found"
	RuntimeLoadFailed LifecycleErrorKind = "runtime_load_failed"
	// LockContention means the exclusive load/unload section could not be
	// entered in time. Retryable.
	LockContention LifecycleErrorKind = "lock_contention"
)

// LifecycleError is returned by Load and Unload.
type LifecycleError struct {
	Kind LifecycleErrorKind
	Path string
	Err  error
}

func (e *LifecycleError) Error() string {
	msg := string(e.Kind)
	switch e.Kind {
	case FileNotFound:
		msg = "model file not found"
	case RuntimeLoadFailed:
		msg = "model load failed"
	case LockContention:
		msg = "model lifecycle busy"
	}
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LifecycleError) Unwrap() error { return e.Err }

// StatusCode maps the error kind to an HTTP status.
func (e *LifecycleError) StatusCode() int {
	switch e.Kind {
	case FileNotFound:
		return http.StatusNotFound
	case LockContention:
		return http.StatusTooManyRequests
	}
	if errors.Is(e.Err, runtime.ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func lifecycleKind(err error) (LifecycleErrorKind, bool) {
	var le *LifecycleError
	if errors.As(err, &le) {
		return le.Kind, true
	}
	return "", false
}

// IsFileNotFound reports whether err is a FileNotFound lifecycle error.
func IsFileNotFound(err error) bool {
	k, ok := lifecycleKind(err)
	return ok && k == FileNotFound
}

// IsRuntimeLoadFailed reports whether the runtime rejected the model.
func IsRuntimeLoadFailed(err error) bool {
	k, ok := lifecycleKind(err)
	return ok && k == RuntimeLoadFailed
}

// IsLockContention reports whether the lifecycle section was busy.
func IsLockContention(err error) bool {
	k, ok := lifecycleKind(err)
	return ok && k == LockContention
}
