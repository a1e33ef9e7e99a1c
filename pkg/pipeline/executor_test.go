package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odanree/llm-local-assistant-sub008/pkg/config"
	"github.com/odanree/llm-local-assistant-sub008/pkg/projectcontext"
	"github.com/odanree/llm-local-assistant-sub008/pkg/workspace"
)

func newTestExecutor(t *testing.T, cfg *config.Config) (*Executor, *MemoryWriter) {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	// Backoff serves interactive runs; tests want immediacy.
	cfg.BackoffMultiplier = 0

	writer := NewMemoryWriter()
	project := &projectcontext.Context{
		Quality:        projectcontext.QualityInsufficient,
		GenerationMode: projectcontext.ModeScaffold,
	}
	exec, err := NewExecutor(cfg, t.TempDir(), writer, project)
	require.NoError(t, err)
	return exec, writer
}

// feed serves one canned model output per attempt.
func feed(outputs ...string) GenerateFunc {
	i := 0
	return func(ctx context.Context, prompt string) (string, error) {
		if i >= len(outputs) {
			return "", errors.New("feed exhausted")
		}
		out := outputs[i]
		i++
		return out, nil
	}
}

const cleanComponent = "```tsx\nimport { useState } from 'react';\n\nexport function Counter() {\n  const [count, setCount] = useState(0);\n  return count;\n}\n```\n"

func TestExecuteStepCommitsCleanOutput(t *testing.T) {
	exec, writer := newTestExecutor(t, nil)

	result, err := exec.ExecuteStep(context.Background(), StepDescriptor{
		Number:     1,
		TargetPath: "src/Counter.tsx",
		Intent:     "create a counter component",
	}, feed(cleanComponent))

	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, result.Status)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, writer.Count, "exactly one write per committed step")
	assert.Contains(t, writer.Files["src/Counter.tsx"], "useState")
}

func TestExecuteStepAbortsOnPathViolation(t *testing.T) {
	exec, writer := newTestExecutor(t, nil)

	result, err := exec.ExecuteStep(context.Background(), StepDescriptor{
		Number:     1,
		TargetPath: "contains the counter component used by the dashboard page",
		Intent:     "create a counter",
	}, feed(cleanComponent))

	require.Error(t, err)
	assert.Equal(t, StatusAborted, result.Status)
	assert.Equal(t, 0, writer.Count, "no write may happen on a path violation")
}

func TestExecuteStepRejectsPathsFailingValidation(t *testing.T) {
	// These survive sanitization but must still be caught by the full
	// validation gate before any write.
	paths := []string{
		"src/a.ts,src/b.ts",    // multi-path string
		"components/X.tsx",     // unrecognized root
		"src/a b.tsx",          // embedded space in filename
		"src/notes.txt.backup", // no recognized code extension
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			exec, writer := newTestExecutor(t, nil)

			result, err := exec.ExecuteStep(context.Background(), StepDescriptor{
				Number:     1,
				TargetPath: path,
				Intent:     "create a component",
			}, feed(cleanComponent))

			require.Error(t, err)
			assert.True(t, workspace.IsCategory(err, workspace.CategoryPath))
			assert.Equal(t, StatusAborted, result.Status)
			assert.Equal(t, 0, writer.Count, "no write may happen for an unsafe path")
		})
	}
}

func TestExecuteStepRetriesAfterParseFailure(t *testing.T) {
	exec, writer := newTestExecutor(t, nil)

	result, err := exec.ExecuteStep(context.Background(), StepDescriptor{
		Number:     1,
		TargetPath: "src/Counter.tsx",
		Intent:     "create a counter component",
	}, feed(
		"I would suggest refactoring the component first.",
		cleanComponent,
	))

	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, result.Status)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, 1, writer.Count)
}

func TestExecuteStepExhaustionProducesManualTask(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxAttempts = 2
	exec, writer := newTestExecutor(t, cfg)

	// Both attempts call an undeclared function; validation blocks them.
	broken := "```tsx\nexport function run() {\n  return computeMagic(42);\n}\n```\n"

	result, err := exec.ExecuteStep(context.Background(), StepDescriptor{
		Number:     1,
		TargetPath: "src/run.ts",
		Intent:     "call the magic helper",
	}, feed(broken, broken))

	require.Error(t, err)
	assert.True(t, workspace.IsCategory(err, workspace.CategoryRetryExhausted))
	assert.Equal(t, StatusManual, result.Status)
	assert.Equal(t, 0, writer.Count, "no write may happen on manual handoff")
	require.NotNil(t, result.Task)
	assert.NotEmpty(t, result.Task.ID)
	assert.Contains(t, result.Task.Title, "src/run.ts")
	assert.NotEmpty(t, result.Task.SuggestedAction)
}

func TestExecuteStepFixerRescuesBrokenOutput(t *testing.T) {
	exec, writer := newTestExecutor(t, nil)

	// Missing closing brace; the deterministic fixer appends it and the
	// candidate passes on the same attempt.
	almostClean := "```tsx\nimport { useState } from 'react';\n\nexport function Counter() {\n  const [count, setCount] = useState(0);\n  return count;\n```\n"

	result, err := exec.ExecuteStep(context.Background(), StepDescriptor{
		Number:     1,
		TargetPath: "src/Counter.tsx",
		Intent:     "create a counter component",
	}, feed(almostClean))

	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, result.Status)
	assert.Equal(t, 1, result.Attempts)
	assert.NotEmpty(t, result.FixesApplied)
	assert.Equal(t, 1, writer.Count)
}

func TestExecuteStepHonorsCancellation(t *testing.T) {
	exec, writer := newTestExecutor(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := exec.ExecuteStep(ctx, StepDescriptor{
		Number:     1,
		TargetPath: "src/Counter.tsx",
		Intent:     "create a counter component",
	}, feed(cleanComponent))

	require.Error(t, err)
	assert.Equal(t, StatusAborted, result.Status)
	assert.Equal(t, 0, writer.Count)
}

func TestExecuteStepGeneratorFailureAborts(t *testing.T) {
	exec, writer := newTestExecutor(t, nil)

	result, err := exec.ExecuteStep(context.Background(), StepDescriptor{
		Number:     1,
		TargetPath: "src/Counter.tsx",
		Intent:     "create a counter component",
	}, feed()) // empty feed errors on the first call

	require.Error(t, err)
	assert.Equal(t, StatusAborted, result.Status)
	assert.Equal(t, 0, writer.Count)
}

func TestExecuteStepAccumulatesAcrossSteps(t *testing.T) {
	exec, writer := newTestExecutor(t, nil)

	first := "```tsx\nexport function first() {\n  return 1;\n}\n```\n"
	result, err := exec.ExecuteStep(context.Background(), StepDescriptor{
		Number:     1,
		TargetPath: "src/lib.ts",
		Intent:     "add the first helper",
	}, feed(first))
	require.NoError(t, err)
	require.Equal(t, StatusCommitted, result.Status)

	// The second step edits the accumulated content via search/replace.
	patch := "Search: return 1;\nReplace: return 2;\n"
	result, err = exec.ExecuteStep(context.Background(), StepDescriptor{
		Number:     2,
		TargetPath: "src/lib.ts",
		Intent:     "bump the return value",
	}, feed(patch))
	require.NoError(t, err)
	require.Equal(t, StatusCommitted, result.Status)

	assert.Contains(t, writer.Files["src/lib.ts"], "return 2;")
	assert.Equal(t, 2, exec.State().StepCount())
	assert.Equal(t, 2, writer.Count)
}
