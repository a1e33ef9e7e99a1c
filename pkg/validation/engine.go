package validation

import (
	"fmt"
)

// Engine runs the three independent heuristic passes over one code
// snapshot and applies the selected domain profile's suppression list to
// the combined findings. The passes stay separate pure functions because
// the suppression step needs to see each pass's raw output.
type Engine struct {
	fast     *SmartValidator
	deep     *SemanticValidator
	registry *Registry
}

// NewEngine creates a validation engine backed by an explicitly
// constructed rule registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{
		fast:     NewSmartValidator(),
		deep:     NewSemanticValidator(),
		registry: registry,
	}
}

// Validate classifies the snapshot's domain, runs all passes, applies the
// profile's rules and suppressions, and reports acceptance. A snapshot is
// acceptable only with zero post-suppression error-severity findings.
func (e *Engine) Validate(content string) *Report {
	profile := e.registry.FindProfile(content)

	var raw []Finding
	raw = append(raw, e.fast.Validate(content)...)
	raw = append(raw, e.deep.Validate(content)...)
	raw = append(raw, detectSecrets(content)...)
	raw = append(raw, e.runDomainPass(content, profile)...)

	report := &Report{Domain: profile.Domain}
	suppressed := map[string]bool{}
	for _, ruleID := range profile.SuppressedRules {
		suppressed[ruleID] = true
	}
	for _, finding := range raw {
		if suppressed[finding.RuleID] {
			report.Suppressed = append(report.Suppressed, finding)
			continue
		}
		report.Findings = append(report.Findings, finding)
	}

	errs := report.Errors()
	report.Success = len(errs) == 0
	if report.Success {
		report.Summary = fmt.Sprintf("domain %s: %d findings, none blocking", profile.Domain, len(report.Findings))
	} else {
		report.Summary = fmt.Sprintf("domain %s: %d blocking findings (first: %s)", profile.Domain, len(errs), errs[0].Message)
	}
	return report
}

// runDomainPass applies the selected profile's mustHave and forbidden
// patterns only.
func (e *Engine) runDomainPass(content string, profile *RuleProfile) []Finding {
	var findings []Finding

	for _, pattern := range profile.MustHave {
		if pattern.AppliesIf != nil && !pattern.AppliesIf.MatchString(content) {
			continue
		}
		if !pattern.Regex.MatchString(content) {
			findings = append(findings, Finding{
				RuleID:   pattern.ID,
				Message:  pattern.Message,
				Severity: pattern.Severity,
				Pass:     "domain",
			})
		}
	}
	for _, pattern := range profile.Forbidden {
		if pattern.AppliesIf != nil && !pattern.AppliesIf.MatchString(content) {
			continue
		}
		if pattern.Regex.MatchString(content) {
			findings = append(findings, Finding{
				RuleID:   pattern.ID,
				Message:  pattern.Message,
				Severity: pattern.Severity,
				Pass:     "domain",
			})
		}
	}
	return findings
}

// FindDomain classifies a snapshot without running the full pass set.
func (e *Engine) FindDomain(content string) Domain {
	return e.registry.FindProfile(content).Domain
}
