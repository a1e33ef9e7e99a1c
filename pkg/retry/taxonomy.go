package retry

import "strings"

// ErrorKind is the coarse failure taxonomy used for loop detection and
// for the "do not repeat" guidance injected into the next model call.
type ErrorKind string

const (
	KindUndefinedReference ErrorKind = "undefined-reference"
	KindSyntax             ErrorKind = "syntax"
	KindNotAFunction       ErrorKind = "not-a-function"
	KindNullDereference    ErrorKind = "null-dereference"
	KindMissingModule      ErrorKind = "missing-module"
	KindUnknown            ErrorKind = "unknown"
)

// classification rules in match order; the first hit wins.
var kindSignatures = []struct {
	kind       ErrorKind
	substrings []string
}{
	{KindNotAFunction, []string{"is not a function", "not callable", "hallucinated function"}},
	{KindMissingModule, []string{"cannot find module", "module not found", "failed to resolve import", "not imported from"}},
	{KindUndefinedReference, []string{"is not defined", "never imported or declared", "never declared", "undefined identifier"}},
	{KindNullDereference, []string{"cannot read properties of null", "cannot read properties of undefined", "null pointer", "of undefined"}},
	{KindSyntax, []string{"unexpected token", "unbalanced", "unexpected end of input", "syntax error", "missing closing"}},
}

// ClassifyError maps an error message onto the fixed taxonomy by
// substring matching.
func ClassifyError(message string) ErrorKind {
	lower := strings.ToLower(message)
	for _, sig := range kindSignatures {
		for _, sub := range sig.substrings {
			if strings.Contains(lower, sub) {
				return sig.kind
			}
		}
	}
	return KindUnknown
}

// avoidanceAdvice maps each error kind to the corrective bullet injected
// into the next prompt.
var avoidanceAdvice = map[ErrorKind]string{
	KindUndefinedReference: "Declare or import every identifier before using it; do not reference names that are not in scope.",
	KindSyntax:             "Balance every brace, bracket and parenthesis; do not truncate the output mid-block.",
	KindNotAFunction:       "Only call functions that are imported or declared in this file; do not invent helper functions.",
	KindNullDereference:    "Guard against null and undefined before accessing properties on a value that may be absent.",
	KindMissingModule:      "Import only from modules the project actually depends on; check the dependency list in the context.",
	KindUnknown:            "Re-read the error message from the previous attempt and address it directly.",
}
