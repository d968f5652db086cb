package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestCriticalWrapsAndUnwraps(t *testing.T) {
	base := errors.New("missing table")
	err := Critical(base)

	if !IsCritical(err) {
		t.Error("Expected wrapped error to be critical")
	}
	if !errors.Is(err, base) {
		t.Error("Expected errors.Is to reach the base error")
	}
}

func TestCriticalSurvivesFurtherWrapping(t *testing.T) {
	err := fmt.Errorf("list symbols: %w", Critical(errors.New("bad schema")))
	if !IsCritical(err) {
		t.Error("Expected critical classification to survive wrapping")
	}
}

func TestNonCriticalErrors(t *testing.T) {
	if IsCritical(errors.New("connection refused")) {
		t.Error("Plain error must not be critical")
	}
	if Critical(nil) != nil {
		t.Error("Critical(nil) must stay nil")
	}
}
