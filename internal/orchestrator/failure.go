// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package orchestrator

import (
	"errors"
	"fmt"

	"github.com/ManuGH/unmark/internal/backend"
)

// Kind classifies a failed call.
type Kind string

const (
	KindUserInput Kind = "user_input"
	KindTransport Kind = "transport"
	KindServer    Kind = "server"
	KindProtocol  Kind = "protocol"
)

var (
	ErrUserInput = errors.New("orchestrator: invalid user input")
	ErrTransport = errors.New("orchestrator: network error")
	ErrServer    = errors.New("orchestrator: server-reported error")
	ErrProtocol  = errors.New("orchestrator: malformed server response")
)

// Failure reasons.
const (
	ReasonNoFile        = "no file selected"
	ReasonNetwork       = "network error"
	ReasonServer        = "server-reported error"
	ReasonMalformed     = "malformed server response"
	ReasonMissingUpload = "missing upload"
	ReasonMissingRegion = "missing/empty region"
	ReasonUnsupported   = "unsupported file type"
)

// User-facing messages.
const (
	MsgSelectVideo   = "Select a video first"
	MsgUploadFirst   = "Upload a video first"
	MsgDrawRegion    = "Draw a rectangle over the watermark"
	MsgNetwork       = "Network error"
	MsgInvalid       = "Invalid server response"
	MsgUploadFailed  = "Upload failed"
	MsgProcessFailed = "Processing failed"
	MsgUnsupported   = "Unsupported video format"
)

// Failure is the terminal error of an upload or process call. Error returns
// the text shown to the user.
type Failure struct {
	Kind    Kind
	Reason  string
	Message string
	// Status is the HTTP status for server and protocol failures.
	Status int
	Err    error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() []error {
	errs := []error{f.Kind.sentinel()}
	if f.Err != nil {
		errs = append(errs, f.Err)
	}
	return errs
}

// Detail renders the failure for logs.
func (f *Failure) Detail() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.Kind, f.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", f.Kind, f.Reason, f.Err)
}

func (k Kind) sentinel() error {
	switch k {
	case KindUserInput:
		return ErrUserInput
	case KindTransport:
		return ErrTransport
	case KindServer:
		return ErrServer
	default:
		return ErrProtocol
	}
}

// NewUserInput builds a failure caused by missing or invalid input.
func NewUserInput(reason, message string) *Failure {
	return &Failure{Kind: KindUserInput, Reason: reason, Message: message}
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// classify maps a backend error onto the failure taxonomy. fallback is the
// message used when the server sent an error without text.
func classify(err error, fallback string) *Failure {
	if f, ok := AsFailure(err); ok {
		return f
	}
	var be *backend.Error
	status := 0
	if errors.As(err, &be) {
		status = be.Status
	}
	switch {
	case errors.Is(err, backend.ErrServer):
		msg := fallback
		if be != nil && be.Message != "" {
			msg = be.Message
		}
		return &Failure{Kind: KindServer, Reason: ReasonServer, Message: msg, Status: status, Err: err}
	case errors.Is(err, backend.ErrBadResponse):
		return &Failure{Kind: KindProtocol, Reason: ReasonMalformed, Message: MsgInvalid, Status: status, Err: err}
	default:
		return &Failure{Kind: KindTransport, Reason: ReasonNetwork, Message: MsgNetwork, Err: err}
	}
}
