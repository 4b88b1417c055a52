package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned verbatim when a sign request names a
	// public key the agent does not hold. SSH clients probe agents with
	// keys they may not have, so the message matches what they expect.
	ErrKeyNotFound = errors.New("agent: key not found")

	// ErrInvalidIndex reports a key slot index outside the configured
	// reference list.
	ErrInvalidIndex = errors.New("key slot index out of range")

	// ErrKeyFormat reports secret material that does not parse as an
	// OpenSSH private key.
	ErrKeyFormat = errors.New("secret is not a valid private key")

	// ErrSigningFailed reports a crypto-layer failure on a key that
	// already matched the requested public key. It is not retried
	// against other keys.
	ErrSigningFailed = errors.New("signing failed")

	// ErrAgentReadOnly is returned for add/remove/lock requests. Keys
	// only enter this agent through the secret store.
	ErrAgentReadOnly = errors.New("agent is read-only")

	// ErrStalePIDFile reports unreadable PID file content. A corrupt
	// record is never treated as "not running".
	ErrStalePIDFile = errors.New("invalid PID file content")
)

// AlreadyRunningError reports a start attempt while a live agent holds
// the PID file.
type AlreadyRunningError struct {
	PID int
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("agent is already running with PID %d (use 'stop' or 'restart')", e.PID)
}

// InvalidSecretIDError reports a configured secret id that is not a
// valid UUID.
type InvalidSecretIDError struct {
	Raw      string
	Position int
	Err      error
}

func (e *InvalidSecretIDError) Error() string {
	return fmt.Sprintf("secret id %q at position %d: %v", e.Raw, e.Position, e.Err)
}

func (e *InvalidSecretIDError) Unwrap() error { return e.Err }
