// The three fatal error conditions of the engine. Every one of them
// invalidates the replication that raised it; nothing is retried or
// silently clamped.

package sim

import "fmt"

// ConfigurationError reports scenario parameters outside the contract,
// detected before any event executes.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// ExhaustedTraceError reports a trace replay asked for more values than the
// recording provides. The horizon must fit inside the trace.
type ExhaustedTraceError struct {
	Provided int
}

func (e *ExhaustedTraceError) Error() string {
	return fmt.Sprintf("trace exhausted after %d values", e.Provided)
}

// InternalConsistencyError reports a broken engine invariant, such as a
// live completion firing for a customer not in service. It always means a
// scheduling bug, never bad input.
type InternalConsistencyError struct {
	Detail string
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency error: %s", e.Detail)
}

func consistencyErrorf(format string, args ...any) error {
	return &InternalConsistencyError{Detail: fmt.Sprintf(format, args...)}
}
