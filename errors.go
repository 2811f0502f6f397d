package treematcher

import (
	"errors"
	"fmt"
)

// ErrStepLimit aborts a search whose backtracking exceeded the step budget.
var ErrStepLimit = errors.New("treematcher: step limit exceeded")

// SyntaxError reports a pattern that cannot be compiled: a malformed
// quantifier, an unbalanced bracket construct or an unparsable predicate.
type SyntaxError struct {
	// Label is the raw node label being compiled.
	Label string
	// Pos is the byte offset inside the predicate text, or -1.
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("treematcher: syntax error in %q at %d: %s", e.Label, e.Pos, e.Msg)
	}
	return fmt.Sprintf("treematcher: syntax error in %q: %s", e.Label, e.Msg)
}

// PredicateErrorKind categorizes evaluation failures.
type PredicateErrorKind string

const (
	// ErrKindUndefined: the predicate names a helper or variable that is
	// not in scope.
	ErrKindUndefined PredicateErrorKind = "UNDEFINED"

	// ErrKindNotBoolean: a predicate or logical operand is not a boolean.
	ErrKindNotBoolean PredicateErrorKind = "NOT_BOOLEAN"

	// ErrKindRuntime: attribute lookup, indexing or a helper failed for a
	// particular node.
	ErrKindRuntime PredicateErrorKind = "RUNTIME"
)

// PredicateError reports a predicate that could not be evaluated against a
// target node.
type PredicateError struct {
	Kind PredicateErrorKind
	// Source is the predicate text.
	Source string
	// Node is the name of the target node, if known.
	Node string
	Msg  string
}

func (e *PredicateError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s: %s (predicate=%q, node=%q)", e.Kind, e.Msg, e.Source, e.Node)
	}
	return fmt.Sprintf("%s: %s (predicate=%q)", e.Kind, e.Msg, e.Source)
}

// IsSyntaxError returns true if err is or wraps a *SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// IsPredicateError returns true if err is or wraps a *PredicateError.
func IsPredicateError(err error) bool {
	var pe *PredicateError
	return errors.As(err, &pe)
}

// isFatal reports whether a predicate error must abort the whole search
// regardless of where it occurred.
func isFatal(err error) bool {
	var pe *PredicateError
	if errors.As(err, &pe) {
		return pe.Kind == ErrKindUndefined
	}
	return true
}

func runtimeErrorf(format string, args ...any) *PredicateError {
	return &PredicateError{Kind: ErrKindRuntime, Msg: fmt.Sprintf(format, args...)}
}
