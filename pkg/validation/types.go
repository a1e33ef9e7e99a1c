package validation

// Severity of a finding. Errors block the write; warnings are logged and
// ignored.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single issue reported by one of the heuristic passes.
type Finding struct {
	RuleID   string
	Message  string
	Severity Severity
	Pass     string // which pass produced it: fast, deep, domain
}

// Report is the combined result of running the validation layer over one
// code snapshot. Findings from the three passes are concatenated, never
// merged; Suppressed holds the findings discarded by the selected domain
// profile so callers can still inspect them.
type Report struct {
	Success    bool
	Summary    string
	Domain     Domain
	Findings   []Finding
	Suppressed []Finding
}

// Errors returns the error-severity findings.
func (r *Report) Errors() []Finding {
	var errs []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			errs = append(errs, f)
		}
	}
	return errs
}

// Domain classifies a code snippet so that one domain's idiomatic code is
// not penalized by another domain's rules.
type Domain string

const (
	DomainInfrastructure Domain = "infrastructure"
	DomainForm           Domain = "form"
	DomainComponent      Domain = "component"
	DomainLogic          Domain = "logic"
	DomainGeneric        Domain = "generic"
)
