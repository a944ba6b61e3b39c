package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("storage item does not exist")
	ErrClosed         = errors.New("storage item handle is closed")
	ErrRegistryClosed = errors.New("storage registry is closed")
	ErrNilCallback    = errors.New("callback is nil")
	ErrNoMapper       = errors.New("path mapper is nil")
	ErrWatcher        = errors.New("failed to start change watcher")
	ErrSave           = errors.New("failed to save storage item")
)

// DisposeError
// every stream close failure collected while disposing a handle, in the order
// they happened.
type DisposeError struct {
	Name string
	Errs []error
}

func (e *DisposeError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d error(s) encountered while disposing storage item %q: %s",
		len(e.Errs), e.Name, strings.Join(msgs, "; "))
}

func (e *DisposeError) Unwrap() []error { return e.Errs }
