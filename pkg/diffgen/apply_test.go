package diffgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySearchReplaceExact(t *testing.T) {
	g := newTestGenerator()
	code := "const a = 1;\nconst b = 2;\n"
	edits := []EditOperation{{
		Type:        EditSearchReplace,
		Original:    "const b = 2;",
		Replacement: "const b = 3;",
		Confidence:  0.9,
	}}

	result := g.Apply(code, edits)
	require.Equal(t, 1, result.Applied)
	assert.Contains(t, result.Code, "const b = 3;")
	assert.NotContains(t, result.Code, "const b = 2;")
}

func TestApplyIsIdempotent(t *testing.T) {
	g := newTestGenerator()
	code := "const a = 1;\n"
	edits := []EditOperation{{
		Type:        EditSearchReplace,
		Original:    "const a = 1;",
		Replacement: "const a = 2;",
		Confidence:  0.9,
	}}

	first := g.Apply(code, edits)
	require.Equal(t, 1, first.Applied)

	// Re-applying the same edit finds the replacement already present and
	// succeeds without changing anything.
	second := g.Apply(first.Code, edits)
	assert.Equal(t, 1, second.Applied)
	assert.Equal(t, first.Code, second.Code)
}

func TestApplySkipsBelowConfidenceFloor(t *testing.T) {
	g := newTestGenerator()
	code := "const a = 1;\n"
	edits := []EditOperation{{
		Type:        EditSearchReplace,
		Original:    "const a = 1;",
		Replacement: "const a = 2;",
		Confidence:  0.2,
	}}

	result := g.Apply(code, edits)
	assert.Equal(t, 0, result.Applied)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, code, result.Code)
}

func TestApplyFuzzyToleratesWhitespaceDrift(t *testing.T) {
	g := newTestGenerator()
	code := "function greet()   {\n  return 'hi';\n}\n"
	edits := []EditOperation{{
		Type:        EditSearchReplace,
		Original:    "function greet() {\n  return 'hi';\n}",
		Replacement: "function greet() {\n  return 'hello';\n}",
		Confidence:  0.9,
	}}

	result := g.Apply(code, edits)
	require.Equal(t, 1, result.Applied)
	assert.Contains(t, result.Code, "hello")
}

func TestApplyCountsUnmatchedAsFailure(t *testing.T) {
	g := newTestGenerator()
	code := "const a = 1;\n"
	edits := []EditOperation{{
		Type:        EditSearchReplace,
		Original:    "class Widget extends Component",
		Replacement: "class Widget extends PureComponent",
		Confidence:  0.9,
	}}

	result := g.Apply(code, edits)
	assert.Equal(t, 0, result.Applied)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, code, result.Code)
}

func TestApplyStructuredPatch(t *testing.T) {
	g := newTestGenerator()
	code := "const a = 1;\nconst b = 2;\nconst c = 3;\n"
	patch := "@@ -1,3 +1,3 @@\n const a = 1;\n-const b = 2;\n+const b = 20;\n const c = 3;"

	result := g.Apply(code, []EditOperation{{
		Type:       EditStructuredPatch,
		Patch:      patch,
		Confidence: 0.85,
	}})
	require.Equal(t, 1, result.Applied)
	assert.Contains(t, result.Code, "const b = 20;")
}

func TestApplyStructuredPatchRejectsAdditionOnlyHunk(t *testing.T) {
	g := newTestGenerator()
	code := "const a = 1;\nconst b = 2;\n"
	patch := "@@ -0,0 +1,2 @@\n+import React from 'react';\n+"

	result := g.Apply(code, []EditOperation{{
		Type:       EditStructuredPatch,
		Patch:      patch,
		Confidence: 0.85,
	}})
	require.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Applied)
	assert.Equal(t, code, result.Code)
}

func TestApplyReplaceFile(t *testing.T) {
	g := newTestGenerator()
	result := g.Apply("old content", []EditOperation{{
		Type:       EditReplaceFile,
		Content:    "new content",
		Confidence: 0.7,
	}})
	require.Equal(t, 1, result.Applied)
	assert.Equal(t, "new content", result.Code)
}

func TestApplyAppendPrepend(t *testing.T) {
	g := newTestGenerator()
	result := g.Apply("middle", []EditOperation{
		{Type: EditPrepend, Content: "top", Confidence: 0.9},
		{Type: EditAppend, Content: "bottom", Confidence: 0.9},
	})
	require.Equal(t, 2, result.Applied)
	lines := strings.Split(result.Code, "\n")
	assert.Equal(t, "top", lines[0])
	assert.Equal(t, "bottom", lines[len(lines)-1])
}
