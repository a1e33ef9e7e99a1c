package validation

import (
	"fmt"
	"regexp"
	"sort"
)

// SemanticValidator is the deep heuristic pass: structural conflicts that
// the fast identifier sweep cannot see. Still regex-driven and O(n), not
// a type checker.
type SemanticValidator struct{}

// NewSemanticValidator creates the deep pass.
func NewSemanticValidator() *SemanticValidator {
	return &SemanticValidator{}
}

var (
	localDeclRegex  = regexp.MustCompile(`\b(?:const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
	strongDeclRegex = regexp.MustCompile(`\b(?:function|class|interface|enum)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
)

// Validate runs the deep pass over a code snapshot.
func (v *SemanticValidator) Validate(content string) []Finding {
	scan := scanCode(content)
	var findings []Finding

	findings = append(findings, v.checkImportCollisions(scan)...)
	findings = append(findings, v.checkUndeclaredCalls(scan)...)
	findings = append(findings, v.checkImportShadowing(scan)...)
	findings = append(findings, v.checkTemplateReferences(scan)...)

	return findings
}

// checkImportCollisions flags identifiers that are both imported and
// re-declared as function/class/interface; the later declaration silently
// wins over the import.
func (v *SemanticValidator) checkImportCollisions(scan *codeScan) []Finding {
	var findings []Finding
	body := importLinePrefix.ReplaceAllString(scan.content, "")
	strongDecls := map[string]bool{}
	for _, m := range strongDeclRegex.FindAllStringSubmatch(body, -1) {
		strongDecls[m[1]] = true
	}
	for _, name := range sortedKeys(scan.imports) {
		if strongDecls[name] {
			findings = append(findings, Finding{
				RuleID:   RuleImportCollision,
				Message:  fmt.Sprintf("%q is imported and re-declared in the same file", name),
				Severity: SeverityError,
				Pass:     "deep",
			})
		}
	}
	return findings
}

// checkUndeclaredCalls flags calls to names that are neither imported,
// declared, a parameter, nor a builtin: likely hallucinated functions.
func (v *SemanticValidator) checkUndeclaredCalls(scan *codeScan) []Finding {
	var findings []Finding
	var names []string
	for name := range scan.calledTokens {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if scan.isDefined(name) {
			continue
		}
		findings = append(findings, Finding{
			RuleID:   RuleUndeclaredCall,
			Message:  fmt.Sprintf("call to %q, which is neither imported nor declared; possibly a hallucinated function", name),
			Severity: SeverityError,
			Pass:     "deep",
		})
	}
	return findings
}

// checkImportShadowing flags local variables that shadow an import.
func (v *SemanticValidator) checkImportShadowing(scan *codeScan) []Finding {
	var findings []Finding
	localNames := map[string]bool{}
	body := importLinePrefix.ReplaceAllString(scan.content, "")
	for _, m := range localDeclRegex.FindAllStringSubmatch(body, -1) {
		localNames[m[1]] = true
	}

	for _, name := range sortedKeys(scan.imports) {
		if localNames[name] {
			findings = append(findings, Finding{
				RuleID:   RuleImportShadowing,
				Message:  fmt.Sprintf("local variable %q shadows an import of the same name", name),
				Severity: SeverityWarning,
				Pass:     "deep",
			})
		}
	}
	return findings
}

// checkTemplateReferences flags identifiers referenced from JSX attribute
// expressions that nothing declares: the template mentions a handler the
// code never defined.
func (v *SemanticValidator) checkTemplateReferences(scan *codeScan) []Finding {
	var findings []Finding
	var names []string
	for name := range scan.jsxReferences {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if scan.isDefined(name) {
			continue
		}
		findings = append(findings, Finding{
			RuleID:   RuleTemplateReference,
			Message:  fmt.Sprintf("template references %q but it is never declared", name),
			Severity: SeverityError,
			Pass:     "deep",
		})
	}
	return findings
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
