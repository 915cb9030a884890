package bootstrap

import "fmt"

// The bootstrapper's failures fall into four kinds, all fatal at the
// process level. None are retried here; restart policy belongs to the
// external supervisor.

// ConfigurationError reports a malformed or out-of-range configuration value.
type ConfigurationError struct {
	Name   string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s=%q: %s", e.Name, e.Value, e.Reason)
}

// ResolutionError reports a service reference that does not resolve to a
// registered service.
type ResolutionError struct {
	Ref ServiceRef
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolution error: %s: %v", e.Ref, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// BindError reports a failure to acquire the listening socket.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind error: %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// RuntimeFault reports a failure after the socket was acquired: the service
// failed to start, or serving aborted with an unrecoverable I/O fault.
type RuntimeFault struct {
	Err error
}

func (e *RuntimeFault) Error() string {
	return fmt.Sprintf("runtime fault: %v", e.Err)
}

func (e *RuntimeFault) Unwrap() error { return e.Err }
