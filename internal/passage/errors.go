package passage

import (
	"errors"
	"fmt"
)

// ErrConfigParse matches any ParseError via errors.Is.
var ErrConfigParse = errors.New("config parse error")

// ParseError reports a malformed metadata header or configuration block.
type ParseError struct {
	// Passage identifies the offending passage (id or name).
	Passage string

	// Field names the part that failed ("header", "title", "config").
	Field string

	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Passage != "" {
		return fmt.Sprintf("%s: passage %q: %s: %v", ErrConfigParse, e.Passage, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrConfigParse, e.Field, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error { return e.Err }

// Is reports ErrConfigParse as a match.
func (e *ParseError) Is(target error) bool { return target == ErrConfigParse }

// IsConfigParseError returns true if err is or wraps a ParseError.
func IsConfigParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
