package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidationFailed is matched by every *ValidationError.
	ErrValidationFailed = errors.New("validation failed")

	// ErrFileNotFound is returned by Load for a missing --config file.
	ErrFileNotFound = errors.New("config file not found")
)

// ParseError locates a TOML decoding failure. Line and Column are 1-based
// and zero when the decoder could not tell.
type ParseError struct {
	Source       string
	Line, Column int
	Message      string
	Err          error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.Source, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Message)
	default:
		return e.Source + ": " + e.Message
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError carries every problem Validate found, in check order.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
