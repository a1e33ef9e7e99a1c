package retry

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Policy is the retry configuration. It is never mutated at runtime.
type Policy struct {
	MaxAttempts         int
	MaxSimpleFixRetries int
	BackoffMultiplier   float64
}

// DefaultPolicy returns sane defaults for interactive use.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, MaxSimpleFixRetries: 2, BackoffMultiplier: 1.5}
}

// AttemptRecord is one generation attempt. Records are immutable once
// created and only ever appended.
type AttemptRecord struct {
	Number       int
	Timestamp    time.Time
	Code         string
	ErrorMessage string
	ErrorKind    ErrorKind
	FixesApplied []string
	Context      string
}

// Session owns the ordered attempt history for one command instance. It
// is created fresh per command, lives in memory only, and is discarded
// when the command completes.
type Session struct {
	ID       string
	policy   Policy
	attempts []AttemptRecord
}

// NewSession creates a session under the given policy.
func NewSession(policy Policy) *Session {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Session{ID: uuid.NewString(), policy: policy}
}

// Policy returns the session's policy.
func (s *Session) Policy() Policy {
	return s.policy
}

// RecordAttempt appends an attempt. It is the only state transition the
// session has. Recording past MaxAttempts is refused so the attempt count
// invariant holds.
func (s *Session) RecordAttempt(code, errorMessage string, kind ErrorKind, fixes []string) error {
	if s.IsExhausted() {
		return fmt.Errorf("session %s already exhausted after %d attempts", s.ID, len(s.attempts))
	}
	if errorMessage != "" && kind == "" {
		kind = ClassifyError(errorMessage)
	}
	s.attempts = append(s.attempts, AttemptRecord{
		Number:       len(s.attempts) + 1,
		Timestamp:    time.Now(),
		Code:         code,
		ErrorMessage: errorMessage,
		ErrorKind:    kind,
		FixesApplied: fixes,
	})
	return nil
}

// GetAttemptCount returns the number of recorded attempts.
func (s *Session) GetAttemptCount() int {
	return len(s.attempts)
}

// Attempts returns the recorded history. The caller must not mutate it.
func (s *Session) Attempts() []AttemptRecord {
	return s.attempts
}

// LastAttempt returns the most recent attempt, if any.
func (s *Session) LastAttempt() (AttemptRecord, bool) {
	if len(s.attempts) == 0 {
		return AttemptRecord{}, false
	}
	return s.attempts[len(s.attempts)-1], true
}

// IsExhausted reports whether the attempt budget is spent.
func (s *Session) IsExhausted() bool {
	return len(s.attempts) >= s.policy.MaxAttempts
}

// IsInfiniteLoop reports whether the last two attempts failed with the
// same error kind, the signal that more attempts of the same shape will
// not converge.
func (s *Session) IsInfiniteLoop() bool {
	n := len(s.attempts)
	if n < 2 {
		return false
	}
	last, prev := s.attempts[n-1], s.attempts[n-2]
	return last.ErrorKind != "" && last.ErrorKind == prev.ErrorKind
}

// Confidence derives the retry confidence in [0,1]. It is computed, never
// stored: 1.0 fresh, 0.0 exhausted, clamped low under loop detection, and
// otherwise the fix-to-error ratio decayed linearly with attempt count.
func (s *Session) Confidence() float64 {
	n := len(s.attempts)
	if n == 0 {
		return 1.0
	}
	if s.IsExhausted() {
		return 0.0
	}

	errorAttempts, fixedAttempts := 0, 0
	for _, a := range s.attempts {
		if a.ErrorMessage != "" {
			errorAttempts++
		}
		if len(a.FixesApplied) > 0 {
			fixedAttempts++
		}
	}
	ratio := 1.0
	if errorAttempts > 0 {
		ratio = float64(fixedAttempts) / float64(errorAttempts)
		if ratio > 1 {
			ratio = 1
		}
	}
	decay := 1.0 - float64(n)/float64(s.policy.MaxAttempts)
	confidence := (0.3 + 0.7*ratio) * decay

	if s.IsInfiniteLoop() {
		// Loop detection forces confidence low regardless of count.
		if confidence > 0.4 {
			confidence = 0.4
		}
		if confidence < 0.1 {
			confidence = 0.1
		}
	}
	return confidence
}

// ShouldRetry reports whether another attempt is worthwhile.
func (s *Session) ShouldRetry() bool {
	return !s.IsExhausted() && s.Confidence() > 0.1
}
