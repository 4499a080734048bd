package store

import "fmt"

// DecodeError reports a stored record that can't be decoded,
// or that lacks a required field.
type DecodeError struct {
	Table string
	Key   string
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid record %q in %s: %v", e.Key, e.Table, e.Err)
	}
	return fmt.Sprintf("invalid record %q in %s: missing field %q", e.Key, e.Table, e.Field)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
