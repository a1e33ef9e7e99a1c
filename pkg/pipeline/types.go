package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/odanree/llm-local-assistant-sub008/pkg/validation"
	"github.com/odanree/llm-local-assistant-sub008/pkg/workspace"
)

// StepDescriptor describes one unit of work: generate or edit one file to
// satisfy one intent. Steps are executed sequentially against a shared
// virtual file state.
type StepDescriptor struct {
	Number      int
	TargetPath  string
	Intent      string
	PriorContext string
}

// GenerateFunc produces raw model text for a prompt. The pipeline treats
// the generator as opaque: it only sees the returned text.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// FileWriter is the single escape hatch from the virtual mirror to the
// real filesystem. The executor calls it at most once per step, and only
// after validation has accepted the candidate.
type FileWriter interface {
	WriteFile(path, content string) error
}

// ManualTask is the structured handoff produced when the retry budget is
// exhausted without an acceptable candidate. Nothing is written to disk;
// the task carries everything a human needs to finish the step.
type ManualTask struct {
	ID              string
	Title           string
	Description     string
	Type            string
	Priority        string
	SuggestedAction string
}

// Step outcome statuses.
const (
	StatusCommitted = "committed"
	StatusManual    = "manual-handoff"
	StatusAborted   = "aborted"
)

// StepResult reports how a step ended. Exactly one of the terminal shapes
// holds: a committed write, a manual task, or an abort.
type StepResult struct {
	Status       string
	Path         string
	Code         string
	Attempts     int
	FixesApplied []string
	Report       *validation.Report
	Task         *ManualTask
}

func newManualTask(title, description, taskType, priority, action string) *ManualTask {
	return &ManualTask{
		ID:              uuid.NewString(),
		Title:           title,
		Description:     description,
		Type:            taskType,
		Priority:        priority,
		SuggestedAction: action,
	}
}

// DiskWriter writes committed candidates under a project root, creating
// parent directories as needed.
type DiskWriter struct {
	Root string
}

// WriteFile writes the content to Root/path.
func (w *DiskWriter) WriteFile(path, content string) error {
	full := filepath.Join(w.Root, path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return workspace.NewFileSystemError("mkdir", filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		return workspace.NewFileSystemError("write", full, err)
	}
	return nil
}

// MemoryWriter records writes without touching disk. Used by dry runs and
// tests to assert the one-write-per-step contract.
type MemoryWriter struct {
	mu    sync.Mutex
	Files map[string]string
	Count int
}

// NewMemoryWriter creates an empty in-memory writer.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{Files: make(map[string]string)}
}

// WriteFile records the write.
func (w *MemoryWriter) WriteFile(path, content string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Files[path] = content
	w.Count++
	return nil
}
