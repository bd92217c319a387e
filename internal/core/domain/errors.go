package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrAuthorizationCanceled indicates the user dismissed the external
	// authorization flow (closed the OAuth popup) rather than failing it
	ErrAuthorizationCanceled = errors.New("authorization canceled")

	// ErrSyncInProgress indicates a sync is already running for the source
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrSyncNotRunning indicates a stop was requested for a sync that is
	// not currently running
	ErrSyncNotRunning = errors.New("sync not running")

	// ErrSubmissionInProgress indicates a duplicate submit while the
	// previous one is still in flight
	ErrSubmissionInProgress = errors.New("submission already in progress")

	// ErrSourceNotDeletable indicates the source type does not support
	// user-initiated deletion
	ErrSourceNotDeletable = errors.New("source cannot be deleted")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrQuotaExceeded indicates the team reached its indexed-content quota
	ErrQuotaExceeded = errors.New("content quota exceeded")
)
