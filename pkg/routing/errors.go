package routing

import (
	"errors"
	"fmt"
)

// Common routing errors that can be checked with errors.Is().
var (
	// ErrUnknownSegment is returned when a segment name is not recognized.
	ErrUnknownSegment = errors.New("unknown network segment")

	// ErrNoCandidates is returned when a segment would be left without endpoints.
	ErrNoCandidates = errors.New("segment has no candidate endpoints")
)

// UnknownSegmentError is returned by ParseSegment for unrecognized names.
type UnknownSegmentError struct {
	// Name is the name that failed to parse.
	Name string
}

// Error implements the error interface.
func (e *UnknownSegmentError) Error() string {
	return fmt.Sprintf("unknown network segment %q: must be 'devnet' or 'mainnet'", e.Name)
}

// Is implements error matching for errors.Is().
func (e *UnknownSegmentError) Is(target error) bool {
	return target == ErrUnknownSegment
}

// ProbeError explains why a probe marked an endpoint dead.
type ProbeError struct {
	// Reason is a short description (e.g., "result not ok").
	Reason string

	// Cause is the underlying transport or RPC error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("probe failed: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("probe failed: %s", e.Reason)
}

// Unwrap returns the underlying error for error chain support.
func (e *ProbeError) Unwrap() error {
	return e.Cause
}
