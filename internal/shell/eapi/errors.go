package eapi

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrAuth is returned when the device rejects the credentials.
	ErrAuth = errors.New("authentication rejected")

	// ErrConnect is returned when the device cannot be reached,
	// including timeouts.
	ErrConnect = errors.New("connection failed")

	// ErrConfigRejected is returned when the device refuses a
	// configuration line during session populate.
	ErrConfigRejected = errors.New("configuration rejected")

	// ErrCommit is returned when the finalize phase fails.
	ErrCommit = errors.New("commit failed")

	// ErrProtocol is returned for malformed or unexpected device
	// responses.
	ErrProtocol = errors.New("malformed device response")
)

// AuthError reports credential rejection by a device.
type AuthError struct {
	Host string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication rejected: %v", e.Host, e.Err)
}

func (e *AuthError) Unwrap() error { return ErrAuth }

// ConnectError reports a transport-level failure, including timeouts.
type ConnectError struct {
	Host string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s: connection failed: %v", e.Host, e.Err)
}

func (e *ConnectError) Unwrap() error { return ErrConnect }

// ConfigRejectedError reports that the device refused part of the
// staged configuration.
type ConfigRejectedError struct {
	Host    string
	Session string
	Err     error
}

func (e *ConfigRejectedError) Error() string {
	return fmt.Sprintf("%s: configuration rejected in session %s: %v", e.Host, e.Session, e.Err)
}

func (e *ConfigRejectedError) Unwrap() error { return ErrConfigRejected }

// CommitError reports a failure while committing or aborting a session.
type CommitError struct {
	Host    string
	Session string
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%s: commit failed for session %s: %v", e.Host, e.Session, e.Err)
}

func (e *CommitError) Unwrap() error { return ErrCommit }

// ProtocolError reports a response the client could not interpret.
type ProtocolError struct {
	Host string
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: malformed device response: %v", e.Host, e.Err)
}

func (e *ProtocolError) Unwrap() error { return ErrProtocol }

// commandError is the device-reported failure for one batch of
// commands. The device applies nothing after the failing command, but
// commands before it have already run; rollback is the caller's abort.
type commandError struct {
	Code    int
	Message string
}

func (e *commandError) Error() string {
	return fmt.Sprintf("device error %d: %s", e.Code, e.Message)
}
