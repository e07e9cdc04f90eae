package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// NotFoundError indicates that a referenced entity does not exist. Ref holds
// the reference as supplied by the caller (surrogate id or natural key).
type NotFoundError struct {
	Entity string
	Ref    string
}

func NewNotFoundError(entity, ref string) error {
	return &NotFoundError{Entity: entity, Ref: ref}
}

func (err NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", err.Entity, err.Ref)
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

// ConflictError indicates a unique-key collision in a context where idempotent
// merge does not apply, or a delete that would orphan dependent records.
type ConflictError struct {
	Entity string
	Key    string
}

func NewConflictError(entity, key string) error {
	return &ConflictError{Entity: entity, Key: key}
}

func (err ConflictError) Error() string {
	return fmt.Sprintf("%s conflict on %s", err.Entity, err.Key)
}

func IsConflict(err error) bool {
	_, ok := errors.Cause(err).(*ConflictError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
