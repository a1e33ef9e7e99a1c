package pathsafety

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/odanree/llm-local-assistant-sub008/pkg/workspace"
)

// Report is the advisory result of validating a candidate path. The caller
// decides how to act on a failed report; validation itself performs no I/O.
type Report struct {
	OK         bool
	Summary    string
	Violations []string
}

// Recognized code file extensions. Paths without one of these are treated
// as descriptions, not files.
var codeExtensions = []string{
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs",
	".css", ".scss", ".less",
	".json", ".html", ".vue", ".svelte",
	".md", ".yml", ".yaml",
}

// Recognized project root prefixes. A path must start with one of these or
// be a bare filename.
var recognizedRoots = []string{
	"src/", "app/", "./", "../",
}

var (
	// descriptivePrefixRegex matches strings that read as natural-language
	// descriptions rather than paths, e.g. "contains the helper for..."
	descriptivePrefixRegex = regexp.MustCompile(`(?i)^\s*(contains|for the|this |the file|a file|file that|which |where |handles |implements )`)

	// markdownArtifactRegex matches backticks and trailing ellipses the
	// model wraps paths in. Emphasis markers are only stripped from the
	// ends so underscores inside filenames survive.
	markdownArtifactRegex = regexp.MustCompile("[`]|\\.{3,}$|…|^[*_]+|[*_]+$")

	controlCharRegex = regexp.MustCompile(`[\x00-\x1f\x7f]`)

	// placeholderRoots maps known placeholder tokens to the concrete
	// project root they should resolve to.
	placeholderRoots = map[string]string{
		"/path/to/":       "src/",
		"{PROJECT_ROOT}/": "src/",
		"<project>/":      "src/",
	}
)

const descriptiveLengthCeiling = 200

// Sanitizer is the path circuit breaker. It gates every candidate path
// before any filesystem call is made with it.
type Sanitizer struct {
	maxPathLength int
}

// NewSanitizer creates a sanitizer. A non-positive maxPathLength falls
// back to the built-in ceiling.
func NewSanitizer(maxPathLength int) *Sanitizer {
	if maxPathLength <= 0 {
		maxPathLength = descriptiveLengthCeiling
	}
	return &Sanitizer{maxPathLength: maxPathLength}
}

// ValidatePath checks a raw candidate path and returns an advisory report.
// It rejects empty input, sentence-like strings, embedded spaces in
// filenames, unrecognized extensions, descriptive prefixes, multi-path
// strings and unrecognized root directories.
func (s *Sanitizer) ValidatePath(raw string) Report {
	var violations []string

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Report{OK: false, Summary: "empty path", Violations: []string{"path is missing or empty"}}
	}

	if strings.Count(trimmed, " ") > 1 {
		violations = append(violations, "path contains multiple spaces; looks like a sentence, not a path")
	}

	if base := baseName(trimmed); strings.Contains(base, " ") {
		violations = append(violations, fmt.Sprintf("filename %q contains embedded spaces", base))
	}

	if !hasCodeExtension(trimmed) {
		violations = append(violations, "path lacks a recognized code file extension")
	}

	if descriptivePrefixRegex.MatchString(trimmed) {
		violations = append(violations, "path reads as a natural-language description")
	}

	if strings.Contains(trimmed, ",") {
		violations = append(violations, "path contains a comma; multiple paths must be gated one at a time")
	}

	if !hasRecognizedRoot(trimmed) {
		violations = append(violations, "path is not rooted at a recognized project directory")
	}

	if len(violations) > 0 {
		return Report{
			OK:         false,
			Summary:    fmt.Sprintf("rejected path %q: %s", trimmed, violations[0]),
			Violations: violations,
		}
	}
	return Report{OK: true, Summary: fmt.Sprintf("path %q accepted", trimmed)}
}

// SanitizePath aggressively cleans a raw path: it strips markdown
// artifacts and control characters, rewrites known placeholder roots to
// concrete ones, and fails hard when the result still looks descriptive or
// exceeds the length ceiling. Sanitization is corrective but must fail
// loudly rather than silently produce a garbage path.
func (s *Sanitizer) SanitizePath(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = controlCharRegex.ReplaceAllString(cleaned, "")
	cleaned = markdownArtifactRegex.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	for token, root := range placeholderRoots {
		if strings.HasPrefix(cleaned, token) {
			cleaned = root + strings.TrimPrefix(cleaned, token)
			break
		}
	}

	if cleaned == "" {
		return "", workspace.NewPathViolationError(raw, "nothing left after stripping artifacts")
	}
	if len(cleaned) > s.maxPathLength {
		return "", workspace.NewPathViolationError(raw, fmt.Sprintf("exceeds length ceiling of %d characters", s.maxPathLength))
	}
	if descriptivePrefixRegex.MatchString(cleaned) || strings.Count(cleaned, " ") > 1 {
		return "", workspace.NewPathViolationError(raw, "still reads as a description after sanitization")
	}

	return cleaned, nil
}

func baseName(path string) string {
	if idx := strings.LastIndex(path, "/"); idx != -1 {
		return path[idx+1:]
	}
	return path
}

func hasCodeExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range codeExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func hasRecognizedRoot(path string) bool {
	for _, root := range recognizedRoots {
		if strings.HasPrefix(path, root) {
			return true
		}
	}
	// A bare filename with no directory component is acceptable.
	return !strings.Contains(path, "/")
}
