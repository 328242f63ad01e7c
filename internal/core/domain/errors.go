package domain

import "errors"

var (
	// ErrInvalidCredentials is returned when the upstream rejects a login
	// attempt (wrong password). Distinct from transport failure so the
	// caller can render "wrong password" versus "try again".
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned when the upstream knows no account for
	// the given email.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailInUse is returned on registration with a duplicate email.
	ErrEmailInUse = errors.New("email already in use")

	// ErrSessionNotFound is returned when a presented credential maps to no
	// live session (never created, logged out, or expired).
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSession is returned when the upstream auth response cannot
	// be assembled into a complete session.
	ErrInvalidSession = errors.New("invalid session")

	// ErrForbidden is returned when a session's role does not permit the
	// requested operation.
	ErrForbidden = errors.New("access forbidden")

	// ErrUpstreamUnavailable wraps transport-level failures reaching the
	// backend (timeout, DNS, connection refused).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
