package document

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidNodeKind      = errors.New("invalid node kind")
	ErrInvalidChildType     = errors.New("invalid child type")
	ErrInvalidAttribute     = errors.New("invalid node attribute")
	ErrTreeTooDeep          = errors.New("document tree too deep")
	ErrMalformedTree        = errors.New("malformed document tree")
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// MalformedError reports a tree that failed validation while loading. It
// matches ErrMalformedTree and unwraps to the underlying schema error.
type MalformedError struct {
	Path string
	Err  error
}

func (e *MalformedError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", ErrMalformedTree, e.Err)
	}
	return fmt.Sprintf("%s at %s: %v", ErrMalformedTree, e.Path, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

func (e *MalformedError) Is(target error) bool { return target == ErrMalformedTree }

// Malformed wraps err as a MalformedError unless it already is one.
func Malformed(path string, err error) error {
	var me *MalformedError
	if errors.As(err, &me) {
		return err
	}
	return &MalformedError{Path: path, Err: err}
}
