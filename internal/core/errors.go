package core

import "fmt"

// ValidationError reports the first malformed field of a goal or an income
// update. The caller corrects the input and resubmits.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientIncomeError rejects a proposed goal whose required monthly
// rate does not fit the income left after every other goal's suggested
// savings are funded.
type InsufficientIncomeError struct {
	Needed   float64
	Leftover float64
}

// Shortfall is the monthly amount the income is short by, for display.
func (e *InsufficientIncomeError) Shortfall() float64 {
	return e.Needed - e.Leftover
}

func (e *InsufficientIncomeError) Error() string {
	return fmt.Sprintf("insufficient income: goal needs %.2f per month, only %.2f left", e.Needed, e.Leftover)
}

// NotFoundError reports an edit or delete referencing an unknown goal id,
// usually a sign the caller holds a stale snapshot.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("goal %q not found", e.ID)
}

// InvalidGoalError marks a goal with a non-positive target or time frame
// reaching the engine. Store-level validation keeps these out, so seeing one
// means a bug upstream, not bad user input.
type InvalidGoalError struct {
	Reason string
}

func (e *InvalidGoalError) Error() string {
	return "invalid goal: " + e.Reason
}

// PersistenceError wraps a failed durability write. The in-memory mutation
// stays applied: local state is authoritative, persistence is best effort.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
