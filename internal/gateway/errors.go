package gateway

import "fmt"

// TransportError means the gateway subprocess could not be spawned or exited
// abnormally before producing a usable response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError means the subprocess ran but its output was not valid JSON
// or did not match the expected response shape.
type ProtocolError struct {
	Op     string
	Detail string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway protocol: %s: %s: %v", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("gateway protocol: %s: %s", e.Op, e.Detail)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
