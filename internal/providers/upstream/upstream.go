package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrUnavailable classifies any failure to obtain data from an external
// source: non-success status or timeout.
var ErrUnavailable = errors.New("external data source unavailable")

// Error reports which source failed. Source is empty when the failure class
// does not identify one, e.g. a timeout.
type Error struct {
	Source string
	Cause  error
}

func (e *Error) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("external data source unavailable: %v", e.Cause)
	}
	return fmt.Sprintf("external data source %s unavailable: %v", e.Source, e.Cause)
}

func (e *Error) Unwrap() error {
	return ErrUnavailable
}

// ClassifyFetchError maps transport errors: timeouts become the unavailable
// class without naming a source, everything else propagates as-is and is
// reported as internal by the caller.
func ClassifyFetchError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Cause: err}
	}
	return err
}
