package diffgen

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Apply executes the edits above the confidence floor against a code
// snapshot. Search-replace candidates try an exact substring match first
// and a fuzzy patch application second; unmatched edits are counted as
// failures, not exceptions. The caller decides how many failures are
// tolerable.
func (g *Generator) Apply(code string, edits []EditOperation) ApplyResult {
	result := ApplyResult{Code: code}

	for _, edit := range edits {
		if edit.Confidence < g.scores.ApplyFloor {
			result.Skipped++
			continue
		}

		updated, ok := applyOne(result.Code, edit)
		if ok {
			result.Code = updated
			result.Applied++
		} else {
			result.Failed++
		}
	}
	return result
}

// ApplyOne executes a single edit with the same exact-then-fuzzy
// strategy, ignoring the confidence floor. Callers that manage their own
// thresholds use this as the fallback when a strict application fails.
func (g *Generator) ApplyOne(code string, edit EditOperation) (string, bool) {
	return applyOne(code, edit)
}

func applyOne(code string, edit EditOperation) (string, bool) {
	switch edit.Type {
	case EditSearchReplace:
		return applySearchReplace(code, edit.Original, edit.Replacement)
	case EditAppend:
		return code + "\n" + edit.Content, true
	case EditPrepend:
		return edit.Content + "\n" + code, true
	case EditReplaceFile:
		return edit.Content, true
	case EditStructuredPatch:
		return applyStructuredPatch(code, edit.Patch)
	}
	return code, false
}

// applySearchReplace replaces the first occurrence of original with
// replacement. If the original is already gone but the replacement is
// present, the edit is treated as an idempotent no-op success.
func applySearchReplace(code, original, replacement string) (string, bool) {
	if strings.Contains(code, original) {
		return strings.Replace(code, original, replacement, 1), true
	}
	if replacement != "" && strings.Contains(code, replacement) {
		// Already applied.
		return code, true
	}
	return fuzzyReplace(code, original, replacement)
}

// fuzzyReplace falls back to a whitespace-tolerant patch application via
// diff-match-patch. The patch between original and replacement is applied
// to the full snapshot, letting the library's context matching absorb
// whitespace drift.
func fuzzyReplace(code, original, replacement string) (string, bool) {
	if strings.TrimSpace(original) == "" {
		return code, false
	}
	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(original, replacement)
	patched, results := dmp.PatchApply(patches, code)
	for _, ok := range results {
		if !ok {
			return code, false
		}
	}
	if patched == code {
		return code, false
	}
	return patched, true
}

// applyStructuredPatch converts a unified-diff hunk into a search/replace
// pair (context + removed lines vs context + added lines) and applies it
// with the same exact-then-fuzzy strategy.
func applyStructuredPatch(code, patch string) (string, bool) {
	var oldLines, newLines []string
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			continue
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			continue
		case strings.HasPrefix(line, "-"):
			oldLines = append(oldLines, line[1:])
		case strings.HasPrefix(line, "+"):
			newLines = append(newLines, line[1:])
		case strings.HasPrefix(line, " "):
			oldLines = append(oldLines, line[1:])
			newLines = append(newLines, line[1:])
		default:
			// Tolerate context lines without the leading space.
			if line != "" {
				oldLines = append(oldLines, line)
				newLines = append(newLines, line)
			}
		}
	}
	if len(oldLines) == 0 {
		// An addition-only hunk has no anchor line to locate it; fail the
		// edit rather than inserting at offset zero.
		return code, false
	}
	return applySearchReplace(code, strings.Join(oldLines, "\n"), strings.Join(newLines, "\n"))
}
