package cacheman

import (
	"errors"
	"fmt"
)

var (
	ErrEngineRequired = errors.New("cacheman: engine is required")
	ErrCodecRequired  = errors.New("cacheman: codec is required")
	ErrClosed         = errors.New("cacheman: cache is closed")
)

// OpError reports an engine failure for one operation on one key.
// Key is the caller's key; empty for Clear.
type OpError struct {
	Op  string // "get", "set", "del", "clear"
	Key string
	Err error
}

func (e *OpError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cacheman: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cacheman: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func opErr(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Key: key, Err: err}
}
