package virtualfs

import (
	"fmt"
	"regexp"
	"strings"
)

// hookIdentifiers is the fixed set of hook-like identifiers whose use
// without a matching import the structural check flags.
var hookIdentifiers = []string{
	"useState", "useEffect", "useCallback", "useMemo", "useRef",
	"useContext", "useReducer",
}

var importLineRegex = regexp.MustCompile(`(?m)^\s*import\b.*$`)

// ValidateSyntax runs the cheap structural check on a mirrored file:
// bracket balance counts plus presence-of-use-without-import detection for
// the fixed hook set. It is not a parser and makes no semantic claims.
func (s *State) ValidateSyntax(path string) SyntaxReport {
	content, ok := s.GetFile(path)
	if !ok {
		return SyntaxReport{Errors: []string{fmt.Sprintf("file %q is not loaded", path)}}
	}

	var errs []string
	errs = append(errs, checkBracketBalance(content)...)
	errs = append(errs, checkHookImports(content)...)

	return SyntaxReport{Valid: len(errs) == 0, Errors: errs}
}

// checkBracketBalance counts braces, brackets and parens outside string
// literals and comments, reporting each unbalanced kind.
func checkBracketBalance(content string) []string {
	stripped := stripStringsAndComments(content)
	var errs []string
	pairs := []struct {
		open, close rune
		name        string
	}{
		{'{', '}', "brace"},
		{'[', ']', "bracket"},
		{'(', ')', "parenthesis"},
	}
	for _, p := range pairs {
		opens := strings.Count(stripped, string(p.open))
		closes := strings.Count(stripped, string(p.close))
		if opens > closes {
			errs = append(errs, fmt.Sprintf("unbalanced %s: %d unclosed", p.name, opens-closes))
		} else if closes > opens {
			errs = append(errs, fmt.Sprintf("unbalanced %s: %d extra closing", p.name, closes-opens))
		}
	}
	return errs
}

// checkHookImports flags hooks used in the body that no import line
// mentions.
func checkHookImports(content string) []string {
	imports := strings.Join(importLineRegex.FindAllString(content, -1), "\n")
	body := importLineRegex.ReplaceAllString(content, "")

	var errs []string
	for _, hook := range hookIdentifiers {
		if strings.Contains(body, hook+"(") && !strings.Contains(imports, hook) {
			errs = append(errs, fmt.Sprintf("%s is used but never imported", hook))
		}
	}
	return errs
}

// stripStringsAndComments blanks out string literals, template literals
// and comments so bracket counting ignores their contents.
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
