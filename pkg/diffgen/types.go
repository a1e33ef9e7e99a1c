package diffgen

// EditType tags the variant of an EditOperation.
type EditType string

const (
	EditSearchReplace   EditType = "search-replace"
	EditAppend          EditType = "append"
	EditPrepend         EditType = "prepend"
	EditStructuredPatch EditType = "structured-patch"
	// EditReplaceFile is the realization of a bare fenced code block: a
	// whole-content replacement candidate.
	EditReplaceFile EditType = "replace-file"
)

// EditOperation is a single candidate edit extracted from model output.
// Each variant carries only the fields it needs: search-replace uses
// Original/Replacement, append/prepend/replace-file use Content, and
// structured-patch uses Patch.
type EditOperation struct {
	Type        EditType
	Original    string
	Replacement string
	Content     string
	Patch       string
	Confidence  float64
	Source      string // which extraction stage produced this candidate
}

// ParseResult is the outcome of parsing raw model text.
type ParseResult struct {
	Edits       []EditOperation
	IsValid     bool
	Explanation string
}

// ApplyResult reports how many edits were executed against a code
// snapshot. Unmatched edits are failures the caller judges, not errors.
type ApplyResult struct {
	Code    string
	Applied int
	Failed  int
	Skipped int // below the confidence floor
}
