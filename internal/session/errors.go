package session

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrUnsupportedType indicates no backend recognizes the path.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrLoadFailed indicates a backend could not load the document.
	ErrLoadFailed = errors.New("load failed")

	// ErrSaveFailed indicates a backend could not persist the document.
	ErrSaveFailed = errors.New("save failed")

	// ErrNotOpen indicates the document is not in the session.
	ErrNotOpen = errors.New("document not open")

	// ErrUnsavedChanges indicates an operation would discard unsaved changes.
	ErrUnsavedChanges = errors.New("unsaved changes")

	// ErrNotReloadable indicates the backend cannot refresh from disk.
	ErrNotReloadable = errors.New("backend cannot reload")

	// ErrReentrant indicates a call made while the same document is in
	// the middle of opening or closing.
	ErrReentrant = errors.New("document transition in progress")
)

// OperationError records the operation and document an error belongs to.
type OperationError struct {
	Op   string // "open", "close", "save", "reload"
	Path string
	Err  error
}

func newOpError(op, path string, err error) *OperationError {
	return &OperationError{Op: op, Path: path, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the wrapper itself and anything it wraps.
func (e *OperationError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*OperationError); ok {
		return e == t
	}
	return errors.Is(e.Err, target)
}

// ErrorList collects the failures of a best-effort batch.
type ErrorList struct {
	errs []error
}

// Add appends err. Nil errors are ignored.
func (l *ErrorList) Add(err error) {
	if err != nil {
		l.errs = append(l.errs, err)
	}
}

// Len returns the number of errors.
func (l *ErrorList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.errs)
}

// Errors returns a copy of the collected errors.
func (l *ErrorList) Errors() []error {
	if l == nil || len(l.errs) == 0 {
		return nil
	}
	out := make([]error, len(l.errs))
	copy(out, l.errs)
	return out
}

func (l *ErrorList) Error() string {
	switch l.Len() {
	case 0:
		return ""
	case 1:
		return l.errs[0].Error()
	default:
		return fmt.Sprintf("%d errors: first: %v", len(l.errs), l.errs[0])
	}
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (l *ErrorList) Unwrap() []error {
	return l.Errors()
}

// AsError returns nil for an empty list.
func (l *ErrorList) AsError() error {
	if l.Len() == 0 {
		return nil
	}
	return l
}
