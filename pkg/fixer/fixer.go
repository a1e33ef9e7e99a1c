package fixer

import (
	"fmt"
	"regexp"
	"strings"
)

// Result reports what the deterministic fixer did to a snapshot. Warnings
// carry the issues the fixer detects but refuses to resolve on its own.
type Result struct {
	Code     string
	Fixed    bool
	Fixes    []string
	Warnings []string
}

// Fixer applies only transformations whose correctness does not depend on
// program intent. It runs before any further model call because it is
// strictly cheaper and deterministic.
type Fixer struct{}

// New creates a fixer.
func New() *Fixer {
	return &Fixer{}
}

// reactHooks are the hook identifiers the fixer knows how to import.
var reactHooks = []string{
	"useState", "useEffect", "useCallback", "useMemo", "useRef",
	"useContext", "useReducer",
}

var (
	reactImportRegex = regexp.MustCompile(`(?m)^(\s*import\s*\{)([^}]*)(\}\s*from\s*['"]react['"].*)$`)
	importLineRegex  = regexp.MustCompile(`(?m)^\s*import\b.*$`)
	funcDeclRegex    = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:async\s+)?function\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
	localConstRegex  = regexp.MustCompile(`(?m)^(\s*)const\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=`)
	bareReturnRegex  = regexp.MustCompile(`(?m)^\s*return\s*;?\s*$`)
	valueReturnRegex = regexp.MustCompile(`(?m)^\s*return\s+\S`)
)

// Fix runs every deterministic repair over the snapshot.
func (f *Fixer) Fix(code string) Result {
	result := Result{Code: code}

	result.Code, result.Fixes = fixMissingHookImports(result.Code, result.Fixes)
	result.Code, result.Fixes = fixUnbalancedBrackets(result.Code, result.Fixes)
	result.Code, result.Fixes = commentOutUnusedLocals(result.Code, result.Fixes)
	result.Warnings = append(result.Warnings, flagDuplicateFunctions(result.Code)...)
	result.Warnings = append(result.Warnings, flagInconsistentReturns(result.Code)...)

	result.Fixed = len(result.Fixes) > 0
	return result
}

// fixMissingHookImports inserts or extends the react import for hooks the
// body uses but never imports.
func fixMissingHookImports(code string, fixes []string) (string, []string) {
	imports := strings.Join(importLineRegex.FindAllString(code, -1), "\n")
	body := importLineRegex.ReplaceAllString(code, "")

	var missing []string
	for _, hook := range reactHooks {
		if strings.Contains(body, hook+"(") && !strings.Contains(imports, hook) {
			missing = append(missing, hook)
		}
	}
	if len(missing) == 0 {
		return code, fixes
	}

	if m := reactImportRegex.FindStringSubmatch(code); m != nil {
		existing := strings.TrimSpace(m[2])
		joined := existing
		if joined != "" {
			joined += ", "
		}
		joined += strings.Join(missing, ", ")
		code = reactImportRegex.ReplaceAllString(code, "${1} "+joined+" ${3}")
	} else {
		line := fmt.Sprintf("import { %s } from 'react';", strings.Join(missing, ", "))
		code = line + "\n" + code
	}
	fixes = append(fixes, fmt.Sprintf("added missing react import for %s", strings.Join(missing, ", ")))
	return code, fixes
}

// fixUnbalancedBrackets appends the minimum number of missing closing
// braces, brackets and parens. Extra closers are left alone; removing
// characters is never intent-free.
func fixUnbalancedBrackets(code string, fixes []string) (string, []string) {
	stripped := stripStringsAndComments(code)
	suffix := ""
	for _, p := range []struct {
		open, close string
		name        string
	}{
		{"(", ")", "parenthesis"},
		{"[", "]", "bracket"},
		{"{", "}", "brace"},
	} {
		missing := strings.Count(stripped, p.open) - strings.Count(stripped, p.close)
		if missing > 0 {
			suffix += strings.Repeat(p.close, missing)
			fixes = append(fixes, fmt.Sprintf("appended %d missing closing %s", missing, p.name))
		}
	}
	if suffix == "" {
		return code, fixes
	}
	return strings.TrimRight(code, "\n") + suffix + "\n", fixes
}

// commentOutUnusedLocals comments out a const declared and then never
// referenced again.
func commentOutUnusedLocals(code string, fixes []string) (string, []string) {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		m := localConstRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[2]
		// Count references outside the declaring line.
		rest := strings.Join(append(append([]string{}, lines[:i]...), lines[i+1:]...), "\n")
		wordRegex := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
		if wordRegex.MatchString(rest) {
			continue
		}
		// Only single-line declarations are safe to comment out.
		if !strings.HasSuffix(strings.TrimSpace(line), ";") && !balancedLine(line) {
			continue
		}
		lines[i] = m[1] + "// " + strings.TrimLeft(line, " \t")
		fixes = append(fixes, fmt.Sprintf("commented out unused local %q", name))
	}
	return strings.Join(lines, "\n"), fixes
}

// flagDuplicateFunctions reports function names declared more than once.
// Deleting one of them would require knowing which the author meant, so
// this is flagged, not fixed.
func flagDuplicateFunctions(code string) []string {
	counts := map[string]int{}
	for _, m := range funcDeclRegex.FindAllStringSubmatch(code, -1) {
		counts[m[1]]++
	}
	var warnings []string
	for name, count := range counts {
		if count > 1 {
			warnings = append(warnings, fmt.Sprintf("function %q is declared %d times", name, count))
		}
	}
	return warnings
}

// flagInconsistentReturns reports a mix of bare and valued returns in the
// same snapshot.
func flagInconsistentReturns(code string) []string {
	if bareReturnRegex.MatchString(code) && valueReturnRegex.MatchString(code) {
		return []string{"snapshot mixes bare and valued return statements"}
	}
	return nil
}

func balancedLine(line string) bool {
	stripped := stripStringsAndComments(line)
	return strings.Count(stripped, "(") == strings.Count(stripped, ")") &&
		strings.Count(stripped, "{") == strings.Count(stripped, "}") &&
		strings.Count(stripped, "[") == strings.Count(stripped, "]")
}

// stripStringsAndComments blanks string literals and comments so bracket
// counting ignores their contents.
func stripStringsAndComments(content string) string {
	var b strings.Builder
	runes := []rune(content)
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch {
		case c == '/' && i+1 < len(runes) && runes[i+1] == '/':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(runes) && runes[i+1] == '*':
			i += 2
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			i += 2
		case c == '"' || c == '\'' || c == '`':
			quote := c
			i++
			for i < len(runes) && runes[i] != quote {
				if runes[i] == '\\' {
					i++
				}
				i++
			}
			i++
		default:
			b.WriteRune(c)
			i++
		}
	}
	return b.String()
}
