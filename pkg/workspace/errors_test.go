package workspace

import (
	"errors"
	"fmt"
	"testing"
)

func TestStructuredErrorUnwrap(t *testing.T) {
	root := fmt.Errorf("disk full")
	err := NewFileSystemError("write", "src/App.tsx", root)

	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is to reach the root cause through Unwrap")
	}
	if err.Resource != "src/App.tsx" {
		t.Errorf("Resource = %q, want the failing path", err.Resource)
	}
}

func TestIsCategory(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		want     bool
	}{
		{"path violation", NewPathViolationError("bad path", "embedded space"), CategoryPath, true},
		{"semantic finding", NewSemanticError("src/a.tsx", "undeclared call"), CategorySemantic, true},
		{"domain violation", NewDomainViolationError("form", "missing resolver"), CategoryDomain, true},
		{"retry exhausted", NewRetryExhaustedError("src/a.tsx", 3), CategoryRetryExhausted, true},
		{"category mismatch", NewDiffParseError("no edits found"), CategoryPath, false},
		{"plain error", errors.New("plain"), CategorySemantic, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCategory(tt.err, tt.category); got != tt.want {
				t.Errorf("IsCategory() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPathViolationIsNotRecoverable(t *testing.T) {
	err := NewPathViolationError("src/a b.tsx", "embedded space")
	if err.Recoverable {
		t.Error("path violations must not be marked recoverable")
	}
	if err.Severity != SeverityHigh {
		t.Errorf("Severity = %v, want SeverityHigh", err.Severity)
	}
}
