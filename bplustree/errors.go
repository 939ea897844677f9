package bplus

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotSorted is the cause of every PreconditionError.
var ErrNotSorted = errors.New("key violates sort order")

// PreconditionError reports a sorted or bulk insertion whose input does not
// respect the required order. It is a caller bug, not bad data: nothing was
// inserted when it is returned.
type PreconditionError struct {
	Op     string // "sorted" or "bulk"
	Key    string // offending key
	Bound  string // key it had to follow
	Index  int    // position in the bulk input, -1 for single inserts
	Strict bool   // whether equality with Bound was also rejected
}

func (e *PreconditionError) Error() string {
	rel := ">="
	if e.Strict {
		rel = ">"
	}
	if e.Index >= 0 {
		return fmt.Sprintf("%s insert: key %s at input %d must be %s %s", e.Op, e.Key, e.Index, rel, e.Bound)
	}
	return fmt.Sprintf("%s insert: key %s must be %s %s", e.Op, e.Key, rel, e.Bound)
}

func (e *PreconditionError) Unwrap() error {
	return ErrNotSorted
}
