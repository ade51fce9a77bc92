// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package backend

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrTransport   = errors.New("backend: host unreachable or transport failure")
	ErrServer      = errors.New("backend: server reported an error")
	ErrBadResponse = errors.New("backend: invalid response format or malformed data")
)

// maxBodySnippet bounds how much of an unparseable body is kept for logs.
const maxBodySnippet = 256

// Error wraps one of the sentinel errors with request context.
type Error struct {
	Sentinel  error
	Operation string
	Status    int
	// Message is the server-authored error text, set only for ErrServer.
	Message string
	// Body holds a truncated copy of an unparseable response.
	Body string
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("backend: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

func transportError(op string, err error) error {
	return &Error{Sentinel: ErrTransport, Operation: op, Err: err}
}

func badResponse(op string, status int, body []byte, err error) error {
	return &Error{Sentinel: ErrBadResponse, Operation: op, Status: status, Body: snippet(body), Err: err}
}

func serverError(op string, status int, message string) error {
	return &Error{Sentinel: ErrServer, Operation: op, Status: status, Message: message}
}

func snippet(body []byte) string {
	if len(body) > maxBodySnippet {
		body = body[:maxBodySnippet]
	}
	return string(body)
}
