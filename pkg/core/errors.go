package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNotFound            = errors.New("entity not found")
	ErrNilEntity           = errors.New("entity is nil")
	ErrMalformedPayload    = errors.New("malformed payload")
	ErrMalformedRecord     = errors.New("malformed resource object")
	ErrInvalidRelationship = errors.New("invalid relationship value")
)

// NotFoundError reports a (type, id) pair that is not indexed by the store.
type NotFoundError struct {
	Type string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("entity not found: type=%q id=%q", e.Type, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MalformedError describes a payload that violates the JSON:API document shape.
// Path points at the offending member, e.g. "/included/2/relationships/author/data".
type MalformedError struct {
	Kind   error
	Path   string
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%v at %s: %s", e.Kind, e.Path, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return e.Kind
}

func malformedPayload(path, format string, args ...any) error {
	return &MalformedError{Kind: ErrMalformedPayload, Path: path, Reason: fmt.Sprintf(format, args...)}
}

func malformedRecord(path, format string, args ...any) error {
	return &MalformedError{Kind: ErrMalformedRecord, Path: path, Reason: fmt.Sprintf(format, args...)}
}
