package errors

import "errors"

// Sentinel errors shared by the CLI commands.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrLoginRejected    = errors.New("login rejected")
)
