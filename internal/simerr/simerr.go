// Package simerr defines the closed error taxonomy the engine surfaces,
// per spec.md §7: ValidationError, NotFound, InvariantViolation, Cancelled,
// and Internal. Collaborators wrap lower-level failures with fmt.Errorf's
// %w the way the corpus's storage/event-store layers do; these types are
// the terminal shape the runner returns to its caller.
package simerr

import "fmt"

// ValidationError reports malformed input: out-of-range year, unknown VAT
// rate, missing required fields, or a pattern-count limit violation. It is
// a user error, reported verbatim, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

// NotFound reports that a referenced pattern or company disappeared
// mid-run.
type NotFound struct {
	Kind string
	ID   string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// InvariantViolation reports that the aggregator failed one of the I1-I4
// checks in spec.md §4.6. It always implies an engine bug, never a user
// error.
type InvariantViolation struct {
	Check   string
	Account string
	Left    string
	Right   string
	Delta   string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant %s violated for account %s: %s != %s (delta %s)",
		e.Check, e.Account, e.Left, e.Right, e.Delta)
}

// Cancelled reports that the caller's cancellation signal fired before the
// run completed.
type Cancelled struct{}

func (e *Cancelled) Error() string { return "simulation cancelled" }

// Internal wraps an unexpected failure from a collaborator (e.g. a sink
// rejected a write). Internal errors never abort the computation unless
// they prevent progress. The api package returns it for PatternStore
// failures; runner.Run does not produce it.
type Internal struct {
	Cause error
}

func (e *Internal) Error() string { return fmt.Sprintf("internal error: %v", e.Cause) }
func (e *Internal) Unwrap() error { return e.Cause }
