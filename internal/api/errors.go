// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ManuGH/unmark/internal/backend"
	xlog "github.com/ManuGH/unmark/internal/log"
	"github.com/ManuGH/unmark/internal/orchestrator"
	"github.com/ManuGH/unmark/internal/session"
)

var (
	// errBadRequest marks malformed request bodies.
	errBadRequest = errors.New("bad request")
	errNotArmed   = fmt.Errorf("%w: comparison not armed", session.ErrNotAllowed)
)

type errorResponse struct {
	Error     string            `json:"error"`
	Kind      orchestrator.Kind `json:"kind,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	State     session.State     `json:"state,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and a JSON body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorStatus(err)
	body.RequestID = xlog.RequestIDFromContext(r.Context())

	logger := xlog.WithComponentFromContext(r.Context(), "api")
	ev := logger.Debug()
	if status >= 500 {
		ev = logger.Error()
	}
	ev.Err(err).Str(xlog.FieldEvent, "api.error").Int(xlog.FieldStatus, status).Msg("request rejected")

	writeJSON(w, status, body)
}

func errorStatus(err error) (int, errorResponse) {
	var fail *orchestrator.Failure
	if errors.As(err, &fail) {
		body := errorResponse{Error: fail.Message, Kind: fail.Kind, Reason: fail.Reason}
		if fail.Kind == orchestrator.KindUserInput {
			return http.StatusUnprocessableEntity, body
		}
		return http.StatusBadGateway, body
	}

	var na *session.NotAllowedError
	if errors.As(err, &na) {
		return http.StatusConflict, errorResponse{Error: err.Error(), Reason: na.Reason, State: na.State}
	}

	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone, errorResponse{Error: err.Error()}
	case errors.Is(err, session.ErrNotAllowed),
		errors.Is(err, session.ErrNoMedia),
		errors.Is(err, session.ErrStale):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, backend.ErrServer):
		var be *backend.Error
		msg := orchestrator.MsgNetwork
		if errors.As(err, &be) && be.Message != "" {
			msg = be.Message
		}
		return http.StatusBadGateway, errorResponse{Error: msg, Kind: orchestrator.KindServer}
	case errors.Is(err, backend.ErrTransport):
		return http.StatusBadGateway, errorResponse{Error: orchestrator.MsgNetwork, Kind: orchestrator.KindTransport}
	case errors.Is(err, backend.ErrBadResponse):
		return http.StatusBadGateway, errorResponse{Error: orchestrator.MsgInvalid, Kind: orchestrator.KindProtocol}
	}
	return http.StatusInternalServerError, errorResponse{Error: "Internal server error"}
}
