package store

import "errors"

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert or update collides with a
	// uniqueness constraint on a plain entity (reg no, RFID tag, course
	// code, user email).
	ErrDuplicate = errors.New("duplicate entity")

	// ErrActiveSessionExists is returned when a session insert loses the
	// one-active-session-per-course constraint.
	ErrActiveSessionExists = errors.New("session already active for this course")

	// ErrDuplicateAttendance is returned when an attendance insert loses the
	// one-record-per-student-per-session constraint.
	ErrDuplicateAttendance = errors.New("attendance already marked for this session")

	// ErrSessionClosed is returned by EndSession when the session has already
	// been flipped inactive. Double-close is a reported error, never a no-op.
	ErrSessionClosed = errors.New("session already ended")
)
