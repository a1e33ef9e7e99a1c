package validation

import (
	"fmt"
	"sort"
	"strings"
)

// SmartValidator is the fast heuristic pass: identifier and import sanity
// in a single tokenizer sweep. It trades completeness for speed and leans
// on the domain profile's suppression list to discard findings that are
// idiomatic for the snapshot's domain.
type SmartValidator struct{}

// NewSmartValidator creates the fast pass.
func NewSmartValidator() *SmartValidator {
	return &SmartValidator{}
}

// libraryConfusions lists import pairings that indicate the model mixed
// up libraries: the named binding imported from the wrong module.
var libraryConfusions = []struct {
	identifier  string
	wrongSource string
	rightSource string
}{
	{"clsx", "classnames", "clsx"},
	{"cn", "clsx", "a local cn utility module"},
	{"useState", "react-dom", "react"},
	{"useEffect", "react-dom", "react"},
	{"z", "yup", "zod"},
	{"render", "react", "react-dom/client"},
}

// typeImportSources maps well-known type identifiers to the module they
// must be imported from when used in annotations.
var typeImportSources = map[string]string{
	"FC": "react", "ReactNode": "react", "ReactElement": "react",
	"CSSProperties": "react", "FormEvent": "react", "ChangeEvent": "react",
	"MouseEvent": "react", "KeyboardEvent": "react", "RefObject": "react",
	"Dispatch": "react", "SetStateAction": "react", "PropsWithChildren": "react",
}

// Validate runs the fast pass over a code snapshot.
func (v *SmartValidator) Validate(content string) []Finding {
	scan := scanCode(content)
	var findings []Finding

	findings = append(findings, v.checkUndefinedIdentifiers(scan)...)
	findings = append(findings, v.checkLibraryConfusions(scan)...)
	findings = append(findings, v.checkMissingTypeImports(scan)...)
	findings = append(findings, v.checkUnusedImports(scan)...)

	return findings
}

// checkUndefinedIdentifiers reports identifiers used but never defined.
// Called or JSX-referenced names are errors; bare occurrences are only
// warnings because the tokenizer cannot see every binding form.
func (v *SmartValidator) checkUndefinedIdentifiers(scan *codeScan) []Finding {
	var findings []Finding
	var names []string
	for name := range scan.usedTokens {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if scan.isDefined(name) {
			continue
		}
		severity := SeverityWarning
		if scan.calledTokens[name] || scan.jsxReferences[name] {
			severity = SeverityError
		}
		findings = append(findings, Finding{
			RuleID:   RuleUndefinedIdentifier,
			Message:  fmt.Sprintf("%q is used but never imported or declared", name),
			Severity: severity,
			Pass:     "fast",
		})
	}
	return findings
}

func (v *SmartValidator) checkLibraryConfusions(scan *codeScan) []Finding {
	var findings []Finding
	for _, confusion := range libraryConfusions {
		if source, ok := scan.imports[confusion.identifier]; ok && source == confusion.wrongSource {
			findings = append(findings, Finding{
				RuleID:   RuleLibraryConfusion,
				Message:  fmt.Sprintf("%q is imported from %q but belongs to %s", confusion.identifier, confusion.wrongSource, confusion.rightSource),
				Severity: SeverityError,
				Pass:     "fast",
			})
		}
	}
	return findings
}

// checkMissingTypeImports flags well-known type identifiers used in
// annotations without a matching import.
func (v *SmartValidator) checkMissingTypeImports(scan *codeScan) []Finding {
	var findings []Finding
	var names []string
	for name := range typeImportSources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if scan.usedTokens[name] == 0 {
			continue
		}
		if _, imported := scan.imports[name]; imported || scan.declarations[name] {
			continue
		}
		// Only flag annotation-style use: ": FC" or "FC<".
		if !strings.Contains(scan.content, ": "+name) && !strings.Contains(scan.content, name+"<") {
			continue
		}
		findings = append(findings, Finding{
			RuleID:   RuleMissingTypeImport,
			Message:  fmt.Sprintf("type %q is used but not imported from %q", name, typeImportSources[name]),
			Severity: SeverityError,
			Pass:     "fast",
		})
	}
	return findings
}

func (v *SmartValidator) checkUnusedImports(scan *codeScan) []Finding {
	var findings []Finding
	var names []string
	for name := range scan.imports {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if scan.usedTokens[name] == 0 {
			findings = append(findings, Finding{
				RuleID:   RuleUnusedImport,
				Message:  fmt.Sprintf("%q is imported but never used", name),
				Severity: SeverityWarning,
				Pass:     "fast",
			})
		}
	}
	return findings
}
