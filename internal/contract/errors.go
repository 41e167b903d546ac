package contract

import (
	"errors"
	"fmt"
)

// Error classes shared by every stage of the pipeline. Configuration and reference-data
// errors abort a run; parse errors only skip the offending report.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrParse         = errors.New("parse error")
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrValue         = errors.New("invalid value")
	ErrEmptyResult   = errors.New("empty result")
)

// MissingFieldError reports a required report field whose pattern never matched.
type MissingFieldError struct {
	Field  string
	Source string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("value for %q not found in %s", e.Field, e.Source)
}

// Unwrap classifies the error as a parse error.
func (e *MissingFieldError) Unwrap() error { return ErrParse }

// EmptyResultError reports a report that parsed but held no peaks.
type EmptyResultError struct {
	Source string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no peaks found in %s", e.Source)
}

// Unwrap classifies the error as an empty result.
func (e *EmptyResultError) Unwrap() error { return ErrEmptyResult }

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrParse) || errors.Is(err, ErrEmptyResult) {
		return false
	}
	return true
}
