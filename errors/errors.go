/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	// ErrNotFound is returned when an entry is not registered
	ErrNotFound = errors.New("entry not found")

	// ErrAlreadyExists is returned when an entry is registered twice where overwriting is not allowed
	ErrAlreadyExists = errors.New("entry already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a conditional removal or replacement does not match
	ErrConditionFailed = errors.New("condition check failed")

	// ErrNoRegistry is returned when no key registry exists for a type
	ErrNoRegistry = errors.New("no registry found for type")
)

// NotFoundError reports that no value of Type is registered under Key.
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s registered at %q", e.Type, e.Key)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NoRegistryError reports a lookup against a type that has no key registry.
type NoRegistryError struct {
	Type string
}

func (e *NoRegistryError) Error() string {
	return fmt.Sprintf("no registry found for type %s", e.Type)
}

// Is matches ErrNoRegistry and ErrNotFound, so IsNotFound covers both
// a missing entry and a missing registry.
func (e *NoRegistryError) Is(target error) bool {
	return target == ErrNoRegistry || target == ErrNotFound
}

// AlreadyExistsError reports a registration that would overwrite an existing
// entry where overwriting is refused, as in strict manifest loading.
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already registered at %q", e.Type, e.Key)
}

// Is matches ErrAlreadyExists.
func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError reports a malformed identifier, manifest entry or value.
// Register panics with one when handed a nil value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConditionFailedError reports a value-conditional removal whose entry exists
// but holds a different value.
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("%s skipped: %s does not hold", e.Operation, e.Condition)
}

// Is matches ErrConditionFailed.
func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// NewNotFoundError reports a missing entry of typeName at key.
func NewNotFoundError(typeName, key string) error {
	return &NotFoundError{Type: typeName, Key: key}
}

// NewNoRegistryError reports that typeName has no key registry.
func NewNoRegistryError(typeName string) error {
	return &NoRegistryError{Type: typeName}
}

// NewAlreadyExistsError reports a refused overwrite of typeName at key.
func NewAlreadyExistsError(typeName, key string) error {
	return &AlreadyExistsError{Type: typeName, Key: key}
}

// NewValidationError reports invalid input for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConditionFailedError reports that operation was skipped because condition did not hold.
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// IsNotFound reports a missing entry or a missing key registry.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNoRegistry reports a lookup against a type with no key registry.
func IsNoRegistry(err error) bool {
	return errors.Is(err, ErrNoRegistry)
}

// IsAlreadyExists reports a refused overwrite.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError reports invalid input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed reports a value mismatch in a conditional removal.
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}
