package routeros

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned when a command is issued on a closed or
// never-opened connection. It signals a programming error, not a condition
// to retry.
var ErrNotConnected = errors.New("routeros: not connected")

// ErrLoginFailed is wrapped by authentication failures during Dial
var ErrLoginFailed = errors.New("routeros: login failed")

// TrapError is a command-level error (!trap). The connection stays usable
// for subsequent commands.
type TrapError struct {
	Message  string
	Category string
}

func (e *TrapError) Error() string {
	if e.Message == "" {
		return "routeros: command failed"
	}
	return "routeros: command failed: " + e.Message
}

func (e *TrapError) setAttr(key, value string) {
	switch key {
	case "message":
		e.Message = value
	case "category":
		e.Category = value
	}
}

// ConnError is a connection-level failure: socket errors, timeouts, or a
// !fatal reply. The connection is invalid afterwards and the caller must
// reconnect.
type ConnError struct {
	Op  string
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("routeros: %s: %v", e.Op, e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// FatalError carries the reason word of a !fatal reply
type FatalError struct {
	Reason string
}

func (e *FatalError) Error() string {
	return "routeros: fatal: " + e.Reason
}
