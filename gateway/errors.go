package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrForbiddenTable is returned when an operation names a table outside
	// the allow-list. It signals a routing/configuration bug, not an external
	// condition, and is never swallowed by callers.
	ErrForbiddenTable = errors.New("table not in allow-list")
	// ErrNotFound is returned by FetchOne when zero rows match.
	ErrNotFound = errors.New("record not found")
	// ErrAmbiguousMatch is returned by FetchOne when more than one row
	// matches a supposedly-unique field.
	ErrAmbiguousMatch = errors.New("lookup matched more than one record")
)

// StoreError wraps a transport, timeout, or malformed-response failure on a
// single shard query.
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("gateway: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err is (or wraps) a shard transport failure.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
