package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	valid := NewRunID().String()

	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{valid, RunID(valid), false},
		{"run-123", "", true},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestParseTableName tests table name parsing
func TestParseTableName(t *testing.T) {
	name, err := ParseTableName("DB_Dept_Health")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if name.String() != "DB_Dept_Health" {
		t.Errorf("Expected DB_Dept_Health, got %s", name)
	}
	if _, err := ParseTableName(" "); err == nil {
		t.Error("Expected error for blank table name")
	}
}

// TestUpstreamLoadErrors tests the load error family
func TestUpstreamLoadErrors(t *testing.T) {
	err := NewSheetNotFoundError("exits.xlsx", "Internal exits")
	if !IsUpstreamLoadError(err) {
		t.Errorf("Expected sheet error to be an upstream load error: %v", err)
	}
	if !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("Expected errors.Is(err, ErrSheetNotFound)")
	}
	if IsUpstreamLoadError(NewTableNotFoundError("x")) {
		t.Error("Table lookups are not load errors")
	}
}

// TestHashDeterminism tests that equal input gives equal hashes
func TestHashDeterminism(t *testing.T) {
	a := NewHash([]byte("grid"))
	b := NewHash([]byte("grid"))
	if !a.Equals(b) {
		t.Errorf("Expected equal hashes, got %s and %s", a, b)
	}
	if a.Equals(NewHash([]byte("other"))) {
		t.Error("Expected different hashes for different input")
	}
	if len(a.Short()) != 12 {
		t.Errorf("Expected 12 char short hash, got %q", a.Short())
	}
}
