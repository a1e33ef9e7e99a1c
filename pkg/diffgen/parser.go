package diffgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/odanree/llm-local-assistant-sub008/pkg/config"
)

// Generator parses raw model output into confidence-scored edit
// candidates. The strategy is a cascade of increasingly permissive
// heuristics because the model output format is never guaranteed.
type Generator struct {
	scores config.ConfidenceScores
}

// NewGenerator creates a generator using the config's tunable confidence
// constants.
func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{scores: cfg.Confidence}
}

var (
	// fillerPrefixes are conversational openers the model prepends before
	// the actual content.
	fillerPrefixes = []string{
		"sure!", "sure,", "sure.", "certainly", "of course", "here's", "here is",
		"i'll", "i will", "let me", "okay", "ok,", "great", "absolutely",
	}

	fencedBlockRegex = regexp.MustCompile("(?s)```[a-zA-Z]*\\n(.*?)\\n?```")

	// inlineChangeRegexes match "change X to Y" phrasing with backtick- or
	// quote-delimited operands.
	inlineChangeRegexes = []*regexp.Regexp{
		regexp.MustCompile("(?i)(?:change|replace)\\s+`([^`]+)`\\s+(?:to|with)\\s+`([^`]+)`"),
		regexp.MustCompile(`(?i)(?:change|replace)\s+"([^"]+)"\s+(?:to|with)\s+"([^"]+)"`),
		regexp.MustCompile(`(?i)(?:change|replace)\s+'([^']+)'\s+(?:to|with)\s+'([^']+)'`),
	}

	searchMarkerRegex  = regexp.MustCompile(`(?i)^\s*(?:search|from)\s*:\s*(.*)$`)
	replaceMarkerRegex = regexp.MustCompile(`(?i)^\s*(?:replace|to)\s*:\s*(.*)$`)

	hunkHeaderRegex = regexp.MustCompile(`^@@\s*-\d+(?:,\d+)?\s+\+\d+(?:,\d+)?\s*@@`)
)

// Parse extracts edit candidates from raw model text. Every extraction
// stage contributes candidates with its own base confidence; the combined
// list is then re-scored.
func (g *Generator) Parse(modelText string) ParseResult {
	text := stripConversationalFiller(modelText)

	var edits []EditOperation
	edits = append(edits, g.extractSearchReplaceBlocks(text)...)
	edits = append(edits, g.extractUnifiedDiffBlocks(text)...)
	edits = append(edits, g.extractInlineChanges(text)...)
	// Fenced blocks come last so explicit forms take precedence for
	// otherwise-identical content.
	edits = append(edits, g.extractFencedBlocks(text)...)

	for i := range edits {
		edits[i].Confidence = rescore(edits[i])
	}

	if len(edits) == 0 {
		return ParseResult{
			IsValid:     false,
			Explanation: "no edit candidates could be extracted from the model output",
		}
	}
	return ParseResult{
		Edits:       edits,
		IsValid:     true,
		Explanation: fmt.Sprintf("extracted %d edit candidates", len(edits)),
	}
}

// stripConversationalFiller drops leading lines that are conversational
// openers rather than content.
func stripConversationalFiller(text string) string {
	lines := strings.Split(text, "\n")
	start := 0
	for start < len(lines) {
		lower := strings.ToLower(strings.TrimSpace(lines[start]))
		if lower == "" {
			start++
			continue
		}
		matched := false
		for _, prefix := range fillerPrefixes {
			if strings.HasPrefix(lower, prefix) {
				matched = true
				break
			}
		}
		// Never strip a line that opens a code block or looks like code.
		if !matched || strings.HasPrefix(lower, "```") {
			break
		}
		start++
	}
	return strings.Join(lines[start:], "\n")
}

// extractFencedBlocks returns each fenced code block as a whole-content
// replacement candidate with low-but-usable confidence.
func (g *Generator) extractFencedBlocks(text string) []EditOperation {
	var edits []EditOperation
	for _, match := range fencedBlockRegex.FindAllStringSubmatch(text, -1) {
		content := match[1]
		// Skip blocks already consumed by the explicit extractors.
		if looksLikeSearchReplaceBlock(content) || looksLikeUnifiedDiff(content) {
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		edits = append(edits, EditOperation{
			Type:       EditReplaceFile,
			Content:    cleanPlaceholderComments(content),
			Confidence: g.scores.FencedBlock,
			Source:     "fenced-block",
		})
	}
	return edits
}

// extractSearchReplaceBlocks parses explicit "Search:/Replace:" and
// "FROM:/TO:" block pairs with high confidence. The block body runs until
// the opposing marker, a blank line, or a fence.
func (g *Generator) extractSearchReplaceBlocks(text string) []EditOperation {
	var edits []EditOperation
	lines := strings.Split(text, "\n")

	for i := 0; i < len(lines); i++ {
		m := searchMarkerRegex.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		var original []string
		if strings.TrimSpace(m[1]) != "" {
			original = append(original, m[1])
		}
		j := i + 1
		for ; j < len(lines); j++ {
			if replaceMarkerRegex.MatchString(lines[j]) {
				break
			}
			if isBlockTerminator(lines[j]) {
				break
			}
			original = append(original, lines[j])
		}
		if j >= len(lines) {
			break
		}
		rm := replaceMarkerRegex.FindStringSubmatch(lines[j])
		if rm == nil {
			i = j
			continue
		}
		var replacement []string
		if strings.TrimSpace(rm[1]) != "" {
			replacement = append(replacement, rm[1])
		}
		k := j + 1
		for ; k < len(lines); k++ {
			if searchMarkerRegex.MatchString(lines[k]) || isBlockTerminator(lines[k]) {
				break
			}
			replacement = append(replacement, lines[k])
		}

		orig := strings.TrimRight(strings.Join(original, "\n"), "\n")
		repl := strings.TrimRight(strings.Join(replacement, "\n"), "\n")
		if strings.TrimSpace(orig) != "" {
			edits = append(edits, EditOperation{
				Type:        EditSearchReplace,
				Original:    orig,
				Replacement: repl,
				Confidence:  g.scores.SearchReplace,
				Source:      "search-replace-block",
			})
		}
		i = k - 1
	}
	return edits
}

// extractInlineChanges parses "change X to Y" phrasing with medium
// confidence.
func (g *Generator) extractInlineChanges(text string) []EditOperation {
	var edits []EditOperation
	for _, re := range inlineChangeRegexes {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			edits = append(edits, EditOperation{
				Type:        EditSearchReplace,
				Original:    match[1],
				Replacement: match[2],
				Confidence:  g.scores.InlineChange,
				Source:      "inline-change",
			})
		}
	}
	return edits
}

// extractUnifiedDiffBlocks parses unified-diff-style hunks into
// structured-patch candidates with high confidence.
func (g *Generator) extractUnifiedDiffBlocks(text string) []EditOperation {
	var edits []EditOperation
	lines := strings.Split(text, "\n")

	for i := 0; i < len(lines); i++ {
		if !hunkHeaderRegex.MatchString(strings.TrimSpace(lines[i])) {
			continue
		}
		var hunk []string
		hunk = append(hunk, lines[i])
		j := i + 1
		for ; j < len(lines); j++ {
			trimmed := lines[j]
			if trimmed == "" || strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "+") || strings.HasPrefix(trimmed, " ") {
				hunk = append(hunk, trimmed)
				continue
			}
			break
		}
		edits = append(edits, EditOperation{
			Type:       EditStructuredPatch,
			Patch:      strings.Join(hunk, "\n"),
			Confidence: g.scores.UnifiedDiff,
			Source:     "unified-diff",
		})
		i = j - 1
	}
	return edits
}

// rescore adjusts a candidate's base confidence: both sides at a
// reasonable size earn a boost, while no-op or placeholder-ridden
// replacements drop to near zero.
func rescore(edit EditOperation) float64 {
	confidence := edit.Confidence

	switch edit.Type {
	case EditSearchReplace:
		if edit.Original == edit.Replacement {
			return 0.05
		}
		if containsEllipsisPlaceholder(edit.Replacement) {
			return 0.05
		}
		if reasonableSize(edit.Original) && reasonableSize(edit.Replacement) {
			confidence += 0.05
		}
	case EditReplaceFile, EditAppend, EditPrepend:
		if containsEllipsisPlaceholder(edit.Content) {
			return 0.05
		}
		if reasonableSize(edit.Content) {
			confidence += 0.05
		}
	case EditStructuredPatch:
		if containsEllipsisPlaceholder(edit.Patch) {
			return 0.05
		}
	}

	if confidence > 0.99 {
		confidence = 0.99
	}
	return confidence
}

func reasonableSize(s string) bool {
	n := len(strings.TrimSpace(s))
	return n >= 3 && n <= 4000
}

// containsEllipsisPlaceholder detects truncation markers like
// "... rest unchanged" that make a replacement unusable.
func containsEllipsisPlaceholder(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		if lower == "..." || lower == "…" {
			return true
		}
		if idx := strings.Index(lower, "..."); idx != -1 {
			rest := lower[idx:]
			if strings.Contains(rest, "unchanged") || strings.Contains(rest, "rest of") ||
				strings.Contains(rest, "existing") || strings.Contains(rest, "truncated") {
				return true
			}
		}
	}
	return false
}

// cleanPlaceholderComments removes placeholder comments that would
// corrupt a whole-content replacement.
func cleanPlaceholderComments(code string) string {
	problematic := []string{
		"// existing code",
		"// unchanged",
		"// rest of",
		"// other functions",
		"// previous code",
		"// ... (truncated)",
		"/* existing",
		"/* unchanged",
	}
	lines := strings.Split(code, "\n")
	var cleaned []string
	for _, line := range lines {
		lower := strings.ToLower(strings.TrimSpace(line))
		skip := false
		for _, p := range problematic {
			if strings.Contains(lower, p) {
				skip = true
				break
			}
		}
		if !skip {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

func looksLikeSearchReplaceBlock(content string) bool {
	sawSearch := false
	for _, line := range strings.Split(content, "\n") {
		if searchMarkerRegex.MatchString(line) {
			sawSearch = true
		}
		if sawSearch && replaceMarkerRegex.MatchString(line) {
			return true
		}
	}
	return false
}

func looksLikeUnifiedDiff(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if hunkHeaderRegex.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

func isBlockTerminator(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "```")
}
