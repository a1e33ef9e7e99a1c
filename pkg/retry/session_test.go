package retry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidenceFreshSession(t *testing.T) {
	s := NewSession(DefaultPolicy())
	assert.Equal(t, 1.0, s.Confidence())
	assert.True(t, s.ShouldRetry())
}

func TestConfidenceDecreasesMonotonically(t *testing.T) {
	s := NewSession(Policy{MaxAttempts: 4, MaxSimpleFixRetries: 2, BackoffMultiplier: 1.5})

	prev := s.Confidence()
	kinds := []ErrorKind{KindSyntax, KindUndefinedReference, KindMissingModule}
	for i, kind := range kinds {
		require.NoError(t, s.RecordAttempt("code", "some failure", kind, nil))
		current := s.Confidence()
		if current > prev {
			t.Fatalf("confidence rose after attempt %d: %.3f -> %.3f", i+1, prev, current)
		}
		prev = current
	}
}

func TestConfidenceZeroWhenExhausted(t *testing.T) {
	s := NewSession(Policy{MaxAttempts: 2})
	require.NoError(t, s.RecordAttempt("a", "err one", KindSyntax, nil))
	require.NoError(t, s.RecordAttempt("b", "err two", KindUndefinedReference, nil))

	assert.True(t, s.IsExhausted())
	assert.Equal(t, 0.0, s.Confidence())
	assert.False(t, s.ShouldRetry())
}

func TestRecordAttemptRefusedWhenExhausted(t *testing.T) {
	s := NewSession(Policy{MaxAttempts: 1})
	require.NoError(t, s.RecordAttempt("a", "err", KindSyntax, nil))

	err := s.RecordAttempt("b", "err", KindSyntax, nil)
	require.Error(t, err)
	assert.Equal(t, 1, s.GetAttemptCount())
}

func TestInfiniteLoopDetection(t *testing.T) {
	s := NewSession(Policy{MaxAttempts: 5})
	require.NoError(t, s.RecordAttempt("a", "x is not defined", KindUndefinedReference, nil))
	assert.False(t, s.IsInfiniteLoop())

	require.NoError(t, s.RecordAttempt("b", "y is not defined", KindUndefinedReference, nil))
	assert.True(t, s.IsInfiniteLoop())

	conf := s.Confidence()
	assert.LessOrEqual(t, conf, 0.4)
	assert.GreaterOrEqual(t, conf, 0.1)
}

func TestLoopDetectionResetsOnDifferentKind(t *testing.T) {
	s := NewSession(Policy{MaxAttempts: 5})
	require.NoError(t, s.RecordAttempt("a", "unexpected token", KindSyntax, nil))
	require.NoError(t, s.RecordAttempt("b", "x is not defined", KindUndefinedReference, nil))
	assert.False(t, s.IsInfiniteLoop())
}

func TestRecordAttemptClassifiesWhenKindMissing(t *testing.T) {
	s := NewSession(DefaultPolicy())
	require.NoError(t, s.RecordAttempt("code", "helper is not a function", "", nil))

	last, ok := s.LastAttempt()
	require.True(t, ok)
	assert.Equal(t, KindNotAFunction, last.ErrorKind)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		message string
		want    ErrorKind
	}{
		{"foo is not defined", KindUndefinedReference},
		{"Unexpected token '}'", KindSyntax},
		{"helper.run is not a function", KindNotAFunction},
		{"Cannot read properties of null", KindNullDereference},
		{"Cannot find module 'zodd'", KindMissingModule},
		{"something else entirely", KindUnknown},
	}
	for _, tt := range tests {
		if got := ClassifyError(tt.message); got != tt.want {
			t.Errorf("ClassifyError(%q) = %s, want %s", tt.message, got, tt.want)
		}
	}
}

func TestAvoidancePromptNamesDistinctKinds(t *testing.T) {
	s := NewSession(Policy{MaxAttempts: 5})
	require.NoError(t, s.RecordAttempt("a", "foo is not defined", KindUndefinedReference, nil))
	require.NoError(t, s.RecordAttempt("b", "unexpected token", KindSyntax, nil))

	prompt := s.GenerateAvoidancePrompt()
	assert.Contains(t, prompt, "foo is not defined")
	assert.Contains(t, prompt, "unexpected token")
	// One corrective bullet per distinct kind, not per attempt.
	assert.Equal(t, 1, strings.Count(prompt, "Declare or import every identifier"))
	assert.Equal(t, 1, strings.Count(prompt, "Balance every brace"))
}

func TestAvoidancePromptFlagsLoops(t *testing.T) {
	s := NewSession(Policy{MaxAttempts: 5})
	require.NoError(t, s.RecordAttempt("a", "x is not defined", KindUndefinedReference, nil))
	require.NoError(t, s.RecordAttempt("b", "y is not defined", KindUndefinedReference, nil))

	prompt := s.GenerateAvoidancePrompt()
	assert.Contains(t, prompt, "materially different approach")
}

func TestFixRatioLiftsConfidence(t *testing.T) {
	struggling := NewSession(Policy{MaxAttempts: 4})
	require.NoError(t, struggling.RecordAttempt("a", "err", KindSyntax, nil))

	recovering := NewSession(Policy{MaxAttempts: 4})
	require.NoError(t, recovering.RecordAttempt("a", "err", KindSyntax, []string{"appended 1 missing closing brace"}))

	assert.Greater(t, recovering.Confidence(), struggling.Confidence())
}
