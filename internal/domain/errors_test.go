package domain

import (
	"errors"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{{Field: "collector.base_dir", Message: "required"}})

	if got := err.Error(); got != "validation: collector.base_dir: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "storage.bucket", Message: "required"},
		{Field: "storage.access_key", Message: "required"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestMalformedf(t *testing.T) {
	t.Parallel()

	err := Malformedf("root of %s is not an array", "a.json")

	if !errors.Is(err, ErrMalformedInput) {
		t.Fatal("errors.Is(err, ErrMalformedInput) = false")
	}
	if got := err.Error(); got != "malformed input: root of a.json is not an array" {
		t.Fatalf("unexpected Error(): %q", got)
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{ErrNotFound, ErrValidation, ErrMalformedInput}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("errors.Is(%v, %v) = true, want false", a, b)
			}
		}
	}
}
