package engine

import (
	"errors"
	"fmt"
)

// Error is a navigation or persistence failure with a stable code.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Passage is the id or name that was requested, when relevant.
	Passage string

	// Slot is the save slot involved, when relevant.
	Slot string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodePassageNotFound indicates an id or name resolved to nothing.
	ErrCodePassageNotFound ErrorCode = "PASSAGE_NOT_FOUND"

	// ErrCodeNoPassageLoaded indicates the current passage was read before
	// any show completed.
	ErrCodeNoPassageLoaded ErrorCode = "NO_PASSAGE_LOADED"

	// ErrCodeCorruptSave indicates a stored save could not be decoded.
	ErrCodeCorruptSave ErrorCode = "CORRUPT_SAVE"
)

// Sentinels for errors.Is. Any *Error with the same code matches.
var (
	ErrPassageNotFound = &Error{Code: ErrCodePassageNotFound, Message: "passage not found"}
	ErrNoPassageLoaded = &Error{Code: ErrCodeNoPassageLoaded, Message: "no passage loaded"}
	ErrCorruptSave     = &Error{Code: ErrCodeCorruptSave, Message: "corrupt save"}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Passage != "" {
		msg += fmt.Sprintf(" (passage=%q)", e.Passage)
	}
	if e.Slot != "" {
		msg += fmt.Sprintf(" (slot=%q)", e.Slot)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// IsPassageNotFound returns true if err is or wraps a PASSAGE_NOT_FOUND error.
func IsPassageNotFound(err error) bool { return hasCode(err, ErrCodePassageNotFound) }

// IsNoPassageLoaded returns true if err is or wraps a NO_PASSAGE_LOADED error.
func IsNoPassageLoaded(err error) bool { return hasCode(err, ErrCodeNoPassageLoaded) }

// IsCorruptSave returns true if err is or wraps a CORRUPT_SAVE error.
func IsCorruptSave(err error) bool { return hasCode(err, ErrCodeCorruptSave) }

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// NewPassageNotFound creates the error raised when idOrName resolves to nothing.
func NewPassageNotFound(idOrName string) *Error {
	return &Error{
		Code:    ErrCodePassageNotFound,
		Message: "there is no passage with this id or name",
		Passage: idOrName,
	}
}

func newCorruptSave(slot string, cause error) *Error {
	return &Error{
		Code:    ErrCodeCorruptSave,
		Message: "save slot could not be decoded",
		Slot:    slot,
		Err:     cause,
	}
}
