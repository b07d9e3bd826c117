package explorer

import "fmt"

// TransportError reports an explorer backend that is unreachable or
// returned a non-success status. Response carries the backend's raw
// reply verbatim, for callers that want to log or inspect it.
type TransportError struct {
	Msg      string
	Response string
	Err      error
}

func (e *TransportError) Error() string {
	if e.Response != "" {
		return fmt.Sprintf("%s: %s (response: %s)", e.Msg, e.Err, e.Response)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *TransportError) Unwrap() error { return e.Err }

func transportErrorf(format string, args ...any) *TransportError {
	return &TransportError{Msg: fmt.Sprintf(format, args...)}
}

func wrapTransportError(msg string, err error) *TransportError {
	return &TransportError{Msg: msg, Err: err}
}
