package store

import "errors"

// ErrNotFound indicates a missing or foreign-owned resource lookup. The two
// cases are deliberately indistinguishable so callers cannot probe for the
// existence of other users' events.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail indicates the email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrInvalidInterval indicates an event interval with start >= end. It takes
// precedence over conflict checking.
var ErrInvalidInterval = errors.New("event end time must be after start time")

// ErrSchedulingConflict indicates the interval collides with another event
// owned by the same user.
var ErrSchedulingConflict = errors.New("event time conflicts with existing event")
