// Package errors defines domain-level errors used throughout the application.
// These errors represent monitor and status failures and are mapped to appropriate HTTP status codes at the API boundary.
//
// NOTE: Important for developers
// When adding a new error here, you MUST consider how it should be handled when returned from API endpoints.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
//
// Don't forget to:
// 1. Add your error to mapError (internal/daemon/api_server.go)
// 2. Add a test case to TestMapError (internal/daemon/api_server_test.go)
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the client provided invalid input or made a malformed request.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrNotConfigured indicates that the gateway URL or API key has not been configured.
	// This is an idle state rather than a failure, nothing is fetched until settings are completed.
	// Recommended to map to HTTP 409 Conflict.
	ErrNotConfigured = errors.New("gateway not configured")

	// ErrFetchFailed indicates that the status endpoint could not be reached,
	// or answered with a non-success HTTP status.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrFetchFailed = errors.New("status fetch failed")

	// ErrInvalidSnapshot indicates that the status endpoint answered with a body that is not a valid snapshot.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrInvalidSnapshot = errors.New("invalid status snapshot")

	// ErrNoSnapshot indicates that no snapshot has been fetched (or cached) yet.
	// Recommended to map to HTTP 404 Not Found.
	ErrNoSnapshot = errors.New("no status snapshot available")

	// ErrNotificationNotFound indicates that the notification is unknown or has been evicted from the inbox.
	// Recommended to map to HTTP 404 Not Found.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrActivationFailed indicates that the notification's activation action (opening the status page) failed.
	// Recommended to map to HTTP 500 Internal Server Error.
	ErrActivationFailed = errors.New("notification activation failed")
)
