package inference

import (
	"errors"
	"net/http"
)

// GenerationErrorKind tags a GenerationError.
type GenerationErrorKind string

const (
	ModelNotLoaded GenerationErrorKind = "model_not_loaded"
	EmptyPrompt    GenerationErrorKind = "empty_prompt"
	TokenizeFailed GenerationErrorKind = "tokenize_failed"
	DecodeFailed   GenerationErrorKind = "decode_failed"
	SampleFailed   GenerationErrorKind = "sample_failed"
)

// GenerationError is the terminal error of a failed generation.
type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	var msg string
	switch e.Kind {
	case ModelNotLoaded:
		msg = "model not loaded"
	case EmptyPrompt:
		msg = "prompt produced no tokens"
	case TokenizeFailed:
		msg = "tokenize failed"
	case DecodeFailed:
		msg = "decode failed"
	case SampleFailed:
		msg = "sampling failed"
	default:
		msg = string(e.Kind)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

// StatusCode maps the error kind to an HTTP status.
func (e *GenerationError) StatusCode() int {
	switch e.Kind {
	case ModelNotLoaded:
		return http.StatusConflict
	case EmptyPrompt:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func genErr(kind GenerationErrorKind, err error) error {
	return &GenerationError{Kind: kind, Err: err}
}

// KindOf returns the kind of a GenerationError in err's chain.
func KindOf(err error) (GenerationErrorKind, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return "", false
}

// IsModelNotLoaded reports whether generation failed for lack of a model.
func IsModelNotLoaded(err error) bool {
	k, ok := KindOf(err)
	return ok && k == ModelNotLoaded
}

// tooBusyError signals that the generation slot stayed taken past max wait.
type tooBusyError struct{}

func (tooBusyError) Error() string { return "too busy: another generation is running" }

func (tooBusyError) StatusCode() int { return http.StatusTooManyRequests }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var tb tooBusyError
	return errors.As(err, &tb)
}

// ErrStopped may be returned by a fragment consumer to end generation
// early. It is not reported as a failure.
var ErrStopped = errors.New("generation stopped by consumer")
