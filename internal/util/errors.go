package util

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrPermissionDenied = errors.New("permission denied")

	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizNotPublished = errors.New("quiz not published or not accessible")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAttemptFinished  = errors.New("attempt already in a final state")
	ErrAttemptActive    = errors.New("an unfinished attempt already exists")
	ErrOverrideNotFound = errors.New("override not found")
	ErrOverrideScope    = errors.New("override must target exactly one of user or group")
	ErrGroupNotFound    = errors.New("group not found")

	// ErrNoPreviousAttempt is a caller bug: a builds-on-last attempt was
	// requested with no finished attempt to build on.
	ErrNoPreviousAttempt = errors.New("no previous attempt to build on")
)
