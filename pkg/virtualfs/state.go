package virtualfs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/odanree/llm-local-assistant-sub008/pkg/diffgen"
)

// ApplyOutcome is the fail-closed result of applying an edit to the
// mirror. A missing file or missing required fields produce a structured
// outcome, never a panic.
type ApplyOutcome struct {
	Success bool
	Error   string
}

// SyntaxReport is the result of the cheap structural syntax check.
type SyntaxReport struct {
	Valid  bool
	Errors []string
}

// stepRecord remembers which edits a plan step applied.
type stepRecord struct {
	Number int
	Edits  []diffgen.EditOperation
}

// State is the in-memory mirror of every file a plan execution touches.
// It is owned exclusively by one executing plan; the accumulated content
// is the input to the next step's prompt, which is what keeps a multi-step
// plan from forgetting its own scaffolding.
type State struct {
	files map[string]string
	steps []stepRecord
}

// NewState creates an empty virtual file state.
func NewState() *State {
	return &State{files: make(map[string]string)}
}

// normalize keys the arena by a cleaned path so "./src/a.tsx" and
// "src/a.tsx" land on the same entry.
func normalize(path string) string {
	return filepath.Clean(strings.TrimSpace(path))
}

// LoadFile places content into the mirror. Loading is the only way a file
// comes into existence; edits never create files.
func (s *State) LoadFile(path, content string) {
	s.files[normalize(path)] = content
}

// GetFile returns the current content of a mirrored file.
func (s *State) GetFile(path string) (string, bool) {
	content, ok := s.files[normalize(path)]
	return content, ok
}

// ApplyEdit applies a single edit to a mirrored file. It fails closed:
// the target must already be loaded, the edit must carry its required
// fields, and a search-replace whose original text is absent fails with a
// structured outcome. There is no fuzzy fallback at this layer.
func (s *State) ApplyEdit(path string, edit diffgen.EditOperation) ApplyOutcome {
	key := normalize(path)
	content, ok := s.files[key]
	if !ok {
		return ApplyOutcome{Error: fmt.Sprintf("file %q is not loaded; edits never create files", path)}
	}

	switch edit.Type {
	case diffgen.EditSearchReplace:
		if edit.Original == "" {
			return ApplyOutcome{Error: "search-replace edit is missing its original text"}
		}
		if !strings.Contains(content, edit.Original) {
			return ApplyOutcome{Error: "original text not found"}
		}
		s.files[key] = strings.Replace(content, edit.Original, edit.Replacement, 1)
	case diffgen.EditAppend:
		if edit.Content == "" {
			return ApplyOutcome{Error: "append edit is missing its content"}
		}
		s.files[key] = content + "\n" + edit.Content
	case diffgen.EditPrepend:
		if edit.Content == "" {
			return ApplyOutcome{Error: "prepend edit is missing its content"}
		}
		s.files[key] = edit.Content + "\n" + content
	case diffgen.EditReplaceFile:
		if edit.Content == "" {
			return ApplyOutcome{Error: "replace-file edit is missing its content"}
		}
		s.files[key] = edit.Content
	case diffgen.EditStructuredPatch:
		if edit.Patch == "" {
			return ApplyOutcome{Error: "structured-patch edit is missing its patch document"}
		}
		return ApplyOutcome{Error: "structured patches must be resolved to concrete edits before reaching the mirror"}
	default:
		return ApplyOutcome{Error: fmt.Sprintf("unknown edit type %q", edit.Type)}
	}

	return ApplyOutcome{Success: true}
}

// RecordStep remembers the edits a completed plan step applied.
func (s *State) RecordStep(number int, edits []diffgen.EditOperation) {
	s.steps = append(s.steps, stepRecord{Number: number, Edits: edits})
}

// StepCount returns how many steps have been recorded.
func (s *State) StepCount() int {
	return len(s.steps)
}

// CreateStepContext renders the current accumulated content of a file
// plus instructions for the next step. Each step must see the cumulative
// effect of all prior steps, not the last step's diff.
func (s *State) CreateStepContext(path string, stepNumber int) string {
	content, ok := s.GetFile(path)
	var b strings.Builder
	fmt.Fprintf(&b, "You are working on step %d of a multi-step plan.\n", stepNumber)
	fmt.Fprintf(&b, "Target file: %s\n\n", path)
	if ok {
		b.WriteString("Current accumulated content of the file (includes all prior steps):\n")
		b.WriteString("```\n")
		b.WriteString(content)
		b.WriteString("\n```\n\n")
		b.WriteString("Build on this content. Do not regenerate parts that already exist,\n")
		b.WriteString("and do not use placeholder comments for existing code.\n")
	} else {
		b.WriteString("The file does not exist yet. Generate its complete initial content.\n")
	}
	return b.String()
}
