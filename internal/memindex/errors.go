package memindex

import (
	"errors"
	"fmt"
)

// IndexErrorKind tags an IndexError.
type IndexErrorKind string

const (
	EmbedFailed   IndexErrorKind = "embed_failed"
	StorageFailed IndexErrorKind = "storage_failed"
)

// IndexError reports a failed index, search or delete operation.
type IndexError struct {
	Kind IndexErrorKind
	Op   string
	Err  error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("memindex %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

func embedErr(op string, err error) error {
	return &IndexError{Kind: EmbedFailed, Op: op, Err: err}
}

func storageErr(op string, err error) error {
	return &IndexError{Kind: StorageFailed, Op: op, Err: err}
}

// IsEmbedFailed reports whether err came from the embedding model.
func IsEmbedFailed(err error) bool {
	var ie *IndexError
	return errors.As(err, &ie) && ie.Kind == EmbedFailed
}

// IsStorageFailed reports whether err came from the embedding store.
func IsStorageFailed(err error) bool {
	var ie *IndexError
	return errors.As(err, &ie) && ie.Kind == StorageFailed
}

// ErrDimensionMismatch is wrapped when an embedder returns a vector whose
// length differs from the vectors already stored.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ErrInvalidKind is returned for source kinds other than message and memory.
var ErrInvalidKind = errors.New("invalid source kind")
