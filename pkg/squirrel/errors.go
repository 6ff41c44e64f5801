package squirrel

import (
	"fmt"
)

// Op identifies the cache operation that produced a PersistenceError.
type Op string

const (
	// OpSave indicates a failure while writing an entry to disk
	OpSave Op = "save"

	// OpGet indicates a failure while reading an entry from disk
	OpGet Op = "get"

	// OpDecode indicates a failure while decoding an entry's bytes
	OpDecode Op = "decode"
)

// ConfigError reports an invalid cache configuration. It is returned at
// construction time only; no cache is returned alongside it.
type ConfigError struct {
	Setting string // the offending setting, e.g. "directory" or "ttl"
	Value   string // the rejected value
	Reason  string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid cache %s %q: %s", e.Setting, e.Value, e.Reason)
}

// PersistenceError reports a storage or codec failure during Squirrel.
// Failures are surfaced, never converted into silent cache misses.
type PersistenceError struct {
	Op  Op
	Key string
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	var what string
	switch e.Op {
	case OpSave:
		what = "failed to save item"
	case OpGet:
		what = "failed to get item"
	case OpDecode:
		what = "failed to decode item"
	default:
		what = "cache failure"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", what, e.Key, e.Err)
	}
	return fmt.Sprintf("%s %q", what, e.Key)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
