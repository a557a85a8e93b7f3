package fault

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMissingFieldMessage(t *testing.T) {
	err := MissingField("group", "minimumMemory")
	if !IsSchemaViolation(err) {
		t.Fatalf("expected schema violation, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"schema_violation", "group", "minimumMemory"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func TestClassificationThroughWrapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NotFound("group lobby"), IsNotFound},
		{"conflict", Conflict("group lobby exists"), IsConflict},
		{"contract", ContractViolation("disable before enable"), IsContractViolation},
		{"invalid", Invalid("minMemory > maxMemory", nil), IsInvalid},
		{"bad field", BadField("player", "uniqueId", errors.New("bad uuid")), IsSchemaViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !tt.check(wrapped) {
				t.Errorf("classification lost through wrapping: %v", wrapped)
			}
		})
	}
}

func TestIsComparesClassAndCode(t *testing.T) {
	a := MissingField("group", "name")
	b := MissingField("service", "id")
	if !errors.Is(a, b) {
		t.Error("expected errors with same class and code to match")
	}
	if errors.Is(a, Conflict("x")) {
		t.Error("expected different classes not to match")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := BadField("service", "state", cause).WithOperation("decode")
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable")
	}
	if !strings.Contains(err.Error(), "during decode") {
		t.Errorf("operation missing from %q", err.Error())
	}
	if ClassOf(errors.New("plain")) != "" {
		t.Error("expected empty class for unclassified error")
	}
}
