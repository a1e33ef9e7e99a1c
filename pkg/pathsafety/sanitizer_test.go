package pathsafety

import (
	"strings"
	"testing"
)

func TestValidatePathRejections(t *testing.T) {
	s := NewSanitizer(200)

	tests := []struct {
		name string
		path string
	}{
		{"descriptive prefix", "contains the helper for formatting dates.ts"},
		{"embedded space in filename", "src/my component.tsx"},
		{"unrecognized root", "components/Button.tsx"},
		{"no code extension", "src/notes"},
		{"multiple paths", "src/a.ts, src/b.ts"},
		{"empty", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := s.ValidatePath(tt.path)
			if report.OK {
				t.Errorf("ValidatePath(%q) passed, want rejection", tt.path)
			}
			if len(report.Violations) == 0 {
				t.Errorf("ValidatePath(%q) rejected without naming a violation", tt.path)
			}
		})
	}
}

func TestValidatePathAccepts(t *testing.T) {
	s := NewSanitizer(200)

	for _, path := range []string{
		"src/components/Button.tsx",
		"app/page.tsx",
		"./src/utils/format.ts",
		"index.ts",
		"src/styles/main.scss",
	} {
		if report := s.ValidatePath(path); !report.OK {
			t.Errorf("ValidatePath(%q) rejected: %v", path, report.Violations)
		}
	}
}

func TestSanitizePathStripsArtifacts(t *testing.T) {
	s := NewSanitizer(200)

	tests := []struct {
		raw  string
		want string
	}{
		{"`src/components/Button.tsx`", "src/components/Button.tsx"},
		{"**src/utils/format.ts**", "src/utils/format.ts"},
		{"src/hooks/useAuth.ts...", "src/hooks/useAuth.ts"},
		{"/path/to/Button.tsx", "src/Button.tsx"},
		{"{PROJECT_ROOT}/lib/api.ts", "src/lib/api.ts"},
		{"src/my_file.tsx", "src/my_file.tsx"},
	}

	for _, tt := range tests {
		got, err := s.SanitizePath(tt.raw)
		if err != nil {
			t.Errorf("SanitizePath(%q) failed: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("SanitizePath(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestSanitizePathIsIdempotent(t *testing.T) {
	s := NewSanitizer(200)

	inputs := []string{
		"`src/components/Button.tsx`",
		"**src/utils/format.ts**",
		"/path/to/Button.tsx",
		"src/plain.ts",
	}
	for _, raw := range inputs {
		once, err := s.SanitizePath(raw)
		if err != nil {
			t.Fatalf("SanitizePath(%q) failed: %v", raw, err)
		}
		twice, err := s.SanitizePath(once)
		if err != nil {
			t.Fatalf("second SanitizePath(%q) failed: %v", once, err)
		}
		if once != twice {
			t.Errorf("sanitization not idempotent: %q -> %q -> %q", raw, once, twice)
		}
	}
}

func TestSanitizePathFailsHard(t *testing.T) {
	s := NewSanitizer(40)

	tests := []struct {
		name string
		raw  string
	}{
		{"only artifacts", "``…"},
		{"too long", "src/" + strings.Repeat("a", 60) + ".ts"},
		{"still descriptive", "contains the date helper used by the dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.SanitizePath(tt.raw); err == nil {
				t.Errorf("SanitizePath(%q) succeeded, want hard failure", tt.raw)
			}
		})
	}
}
