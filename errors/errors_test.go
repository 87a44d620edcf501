/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("string", "app:greeting")

	expected := `no string registered at "app:greeting"`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
	if IsNoRegistry(err) {
		t.Error("NotFoundError should not match ErrNoRegistry")
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestNoRegistryError(t *testing.T) {
	err := NewNoRegistryError("strfmt.UUID")

	expected := "no registry found for type strfmt.UUID"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	// A missing registry is also a missing entry.
	if !IsNotFound(err) {
		t.Error("NoRegistryError should match ErrNotFound")
	}
	if !IsNoRegistry(err) {
		t.Error("NoRegistryError should match ErrNoRegistry")
	}
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("int", "limits:max")

	expected := `int already registered at "limits:max"`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrAlreadyExists) {
		t.Error("AlreadyExistsError should match ErrAlreadyExists")
	}
	if !IsAlreadyExists(err) {
		t.Error("IsAlreadyExists should return true for AlreadyExistsError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "namespace",
			message:  "invalid character 'A'",
			expected: `validation failed for field "namespace": invalid character 'A'`,
		},
		{
			name:     "without field",
			field:    "",
			message:  "cannot register nil value",
			expected: "validation failed: cannot register nil value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Error("ValidationError should match ErrInvalidInput")
			}
			if !IsValidationError(err) {
				t.Error("IsValidationError should return true for ValidationError")
			}
		})
	}
}

func TestConditionFailedError(t *testing.T) {
	err := NewConditionFailedError("unregister", `value == "a"`)

	expected := `unregister skipped: value == "a" does not hold`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrConditionFailed) {
		t.Error("ConditionFailedError should match ErrConditionFailed")
	}
	if !IsConditionFailed(err) {
		t.Error("IsConditionFailed should return true for ConditionFailedError")
	}
}

func TestErrorWrapping(t *testing.T) {
	original := NewNotFoundError("string", "app:greeting")
	wrapped := fmt.Errorf("lookup failed: %w", original)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("Wrapped NotFoundError should still match ErrNotFound")
	}
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should work with wrapped errors")
	}

	var nf *NotFoundError
	if !errors.As(wrapped, &nf) || nf.Key != "app:greeting" {
		t.Errorf("errors.As should recover the NotFoundError, got %v", nf)
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidInput,
		ErrConditionFailed,
		ErrNoRegistry,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}
