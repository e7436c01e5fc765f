// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the backend's failure modes. StatusError unwraps
// to these so callers can branch with errors.Is.
var (
	// ErrPermissionDenied maps HTTP 403: the backend refused the
	// acting user's identity for this operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound maps HTTP 404: the manuscript is missing or was
	// deleted server-side.
	ErrNotFound = errors.New("not found")

	// ErrStaleVersion maps HTTP 409: the manuscript version sent with
	// the request no longer matches the server's copy.
	ErrStaleVersion = errors.New("stale manuscript version")

	// ErrServer covers any other non-2xx response.
	ErrServer = errors.New("server error")
)

// StatusError is a non-2xx backend response. Message carries the
// server-provided error text when the body included one.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusForbidden:
		return ErrPermissionDenied
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrStaleVersion
	}
	return ErrServer
}
