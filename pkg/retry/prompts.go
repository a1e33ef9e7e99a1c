package retry

import (
	"fmt"
	"strings"
)

// GenerateAttemptSummary renders the full attempt history for logging or
// prompt injection.
func (s *Session) GenerateAttemptSummary() string {
	if len(s.attempts) == 0 {
		return "No attempts recorded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Attempt history (%d of %d):\n", len(s.attempts), s.policy.MaxAttempts)
	for _, a := range s.attempts {
		fmt.Fprintf(&b, "- attempt %d", a.Number)
		if a.ErrorMessage != "" {
			fmt.Fprintf(&b, " failed [%s]: %s", a.ErrorKind, a.ErrorMessage)
		} else {
			b.WriteString(" succeeded")
		}
		if len(a.FixesApplied) > 0 {
			fmt.Fprintf(&b, " (auto-fixes: %s)", strings.Join(a.FixesApplied, "; "))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Retry confidence: %.2f\n", s.Confidence())
	return b.String()
}

// GenerateAvoidancePrompt compresses the failure history into corrective
// guidance for the next model call: the raw history plus one "do not
// repeat" bullet per distinct error kind seen so far.
func (s *Session) GenerateAvoidancePrompt() string {
	if len(s.attempts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Previous attempts at this step failed. ")
	b.WriteString(s.GenerateAttemptSummary())
	b.WriteString("\nDo not repeat these mistakes:\n")

	seen := map[ErrorKind]bool{}
	for _, a := range s.attempts {
		if a.ErrorMessage == "" || seen[a.ErrorKind] {
			continue
		}
		seen[a.ErrorKind] = true
		advice := avoidanceAdvice[a.ErrorKind]
		if advice == "" {
			advice = avoidanceAdvice[KindUnknown]
		}
		fmt.Fprintf(&b, "- %s\n", advice)
	}

	if s.IsInfiniteLoop() {
		b.WriteString("- The last two attempts failed the same way. Take a materially different approach this time.\n")
	}
	return b.String()
}
