// Package validate collects field-level validation failures so that an
// operation can report every violated constraint at once.
package validate

import (
	"fmt"
	"strings"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}

	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *Error) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *Error) Addf(field, format string, args ...interface{}) {
	e.Add(field, fmt.Sprintf(format, args...))
}

// Err returns the collected error, or nil when no field failed.
func (e *Error) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Length reports whether the rune length of s is within [min, max].
// A max of 0 means unbounded.
func Length(s string, min, max int) bool {
	n := len([]rune(s))
	if n < min {
		return false
	}
	if max > 0 && n > max {
		return false
	}
	return true
}
