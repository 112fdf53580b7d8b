// Package apperrors holds the error classes shared by the scheduler,
// the quiz generator and the session engine. Callers classify with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced item, session or scenario does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks a contract violation by the caller. Values are never clamped.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStaleSession is returned when an answer references an option that no longer exists.
	ErrStaleSession = fmt.Errorf("%w: stale session", ErrInvalidInput)

	// ErrSessionExpired is returned when a step hits a completed, replaced or absent session.
	ErrSessionExpired = errors.New("session expired")

	// ErrInsufficientContent is returned when there is not enough content to build a quiz or review batch.
	ErrInsufficientContent = errors.New("insufficient content")
)
