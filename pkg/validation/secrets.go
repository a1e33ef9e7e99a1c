package validation

import (
	"fmt"
	"regexp"
)

// Advisory secret detection: generated code embedding credential-shaped
// strings earns a warning. These never block a write but do feed the
// avoidance context of the next attempt.
var secretPatterns = []struct {
	name  string
	regex *regexp.Regexp
}{
	{"API key assignment", regexp.MustCompile(`(?i)(api_key|apikey|api-key|secret_key|auth_token|client_secret|private_key)\s*(=|:)\s*['"][a-zA-Z0-9_.\-=/+]{16,128}['"]`)},
	{"password assignment", regexp.MustCompile(`(?i)(password|passwd|passphrase)\s*(=|:)\s*['"][a-zA-Z0-9_.\-=/+]{8,64}['"]`)},
	{"AWS access key", regexp.MustCompile(`(AKIA|AROA|AIDA|ASIA)[0-9A-Z]{16}`)},
	{"bearer token", regexp.MustCompile(`(?i)Bearer\s+[a-zA-Z0-9\-_=.]{30,}`)},
	{"JWT", regexp.MustCompile(`eyJ[A-Za-z0-9-_=]+\.[A-Za-z0-9-_=]+\.[A-Za-z0-9-_.+/=]*`)},
	{"GitHub token", regexp.MustCompile(`(ghp_[a-zA-Z0-9]{36}|github_pat_[a-zA-Z0-9_]{80})`)},
	{"Stripe key", regexp.MustCompile(`(sk|pk)_(test|live)_[a-zA-Z0-9]{24,}`)},
	{"connection string", regexp.MustCompile(`(?i)(mongodb|mysql|postgresql|redis|amqp)://[^\s'"]+:[^\s'"]+@`)},
}

const RuleEmbeddedSecret = "embedded-secret"

// detectSecrets scans a snapshot for credential-shaped strings.
func detectSecrets(content string) []Finding {
	var findings []Finding
	for _, p := range secretPatterns {
		if p.regex.MatchString(content) {
			findings = append(findings, Finding{
				RuleID:   RuleEmbeddedSecret,
				Message:  fmt.Sprintf("generated code appears to embed a credential (%s); move it to configuration", p.name),
				Severity: SeverityWarning,
				Pass:     "fast",
			})
		}
	}
	return findings
}
