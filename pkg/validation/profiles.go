package validation

import "regexp"

// Rule identifiers shared between the heuristic passes and the profiles'
// suppression lists.
const (
	RuleUndefinedIdentifier = "undefined-identifier"
	RuleUnusedImport        = "unused-import"
	RuleLibraryConfusion    = "library-confusion"
	RuleMissingTypeImport   = "missing-type-import"
	RuleImportCollision     = "import-collision"
	RuleUndeclaredCall      = "undeclared-call"
	RuleImportShadowing     = "import-shadowing"
	RuleTemplateReference   = "template-reference-undefined"
)

// builtinProfiles returns the built-in domain profiles. Priority order is
// an invariant: infrastructure > form > component > logic > generic, so a
// form component full of schema calls is judged by form rules, not
// component rules.
func builtinProfiles() []*RuleProfile {
	return []*RuleProfile{
		{
			ID:       "infrastructure",
			Domain:   DomainInfrastructure,
			Priority: 10,
			Selectors: []*regexp.Regexp{
				regexp.MustCompile(`\bclsx\s*\(`),
				regexp.MustCompile(`\btwMerge\s*\(`),
				regexp.MustCompile(`\bcva\s*\(`),
				regexp.MustCompile(`['"]tailwind-merge['"]`),
			},
			MustHave: []Pattern{
				{
					ID:        "clsx-named-import",
					Regex:     regexp.MustCompile(`import\s*\{[^}]*\bclsx\b[^}]*\}\s*from\s*['"]clsx['"]`),
					AppliesIf: regexp.MustCompile(`\bclsx\s*\(`),
					Message:   "named import required: clsx exports a named binding, not a default",
					Severity:  SeverityError,
				},
			},
			Forbidden: []Pattern{
				{
					ID:       "clsx-default-import",
					Regex:    regexp.MustCompile(`import\s+clsx\s+from\s*['"]clsx['"]`),
					Message:  "named import required: replace the default clsx import with a named one",
					Severity: SeverityError,
				},
			},
			// Styling helpers intentionally keep type imports around for
			// consumers; dead-code rules do not apply here.
			SuppressedRules: []string{RuleUnusedImport, RuleMissingTypeImport},
		},
		{
			ID:       "form",
			Domain:   DomainForm,
			Priority: 20,
			Selectors: []*regexp.Regexp{
				regexp.MustCompile(`\bz\.object\s*\(`),
				regexp.MustCompile(`\byup\.object\s*\(`),
				regexp.MustCompile(`\buseForm\s*\(`),
				regexp.MustCompile(`\bzodResolver\b`),
			},
			MustHave: []Pattern{
				{
					ID:        "form-resolver-wired",
					Regex:     regexp.MustCompile(`resolver\s*:`),
					AppliesIf: regexp.MustCompile(`\buseForm\s*\(`),
					Message:   "a validation schema is declared but never wired into the form resolver",
					Severity:  SeverityWarning,
				},
			},
			Forbidden: []Pattern{
				{
					ID:       "form-manual-validation",
					Regex:    regexp.MustCompile(`\.test\s*\(\s*[^)]*\)\s*===?\s*(?:true|false)`),
					Message:  "manual regex validation alongside a schema; move the rule into the schema",
					Severity: SeverityWarning,
				},
			},
			// Schema builders chain method calls that the deep pass would
			// otherwise report as hallucinated.
			SuppressedRules: []string{RuleUndeclaredCall},
		},
		{
			ID:       "component",
			Domain:   DomainComponent,
			Priority: 30,
			Selectors: []*regexp.Regexp{
				regexp.MustCompile(`interface\s+\w+Props\b`),
				regexp.MustCompile(`return\s*\(\s*\n?\s*<`),
			},
			MustHave: []Pattern{
				{
					ID:       "component-exported",
					Regex:    regexp.MustCompile(`\bexport\b`),
					Message:  "component is never exported",
					Severity: SeverityError,
				},
			},
			Forbidden: []Pattern{
				{
					ID:       "component-direct-dom",
					Regex:    regexp.MustCompile(`document\.(getElementById|querySelector)`),
					Message:  "direct DOM access inside a component; use a ref instead",
					Severity: SeverityError,
				},
			},
			SuppressedRules: []string{RuleImportShadowing},
		},
		{
			ID:       "logic",
			Domain:   DomainLogic,
			Priority: 40,
			Selectors: []*regexp.Regexp{
				regexp.MustCompile(`export\s+(?:async\s+)?function\s+\w+`),
				regexp.MustCompile(`export\s+class\s+\w+`),
				regexp.MustCompile(`export\s+const\s+\w+\s*=\s*(?:async\s*)?\(`),
			},
			Forbidden: []Pattern{
				{
					ID:       "logic-jsx-leak",
					Regex:    regexp.MustCompile(`return\s*\(\s*\n?\s*<[A-Za-z]`),
					Message:  "logic module returns JSX; move rendering into a component",
					Severity: SeverityWarning,
				},
			},
			SuppressedRules: []string{RuleTemplateReference},
		},
		{
			ID:        "generic",
			Domain:    DomainGeneric,
			Priority:  100,
			Selectors: []*regexp.Regexp{regexp.MustCompile(`(?s).`)},
		},
	}
}
