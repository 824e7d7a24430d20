// Package core holds the savings domain model and the allocation engine.
//
// The engine is a set of pure functions over a snapshot of (income, goals):
// it derives a suggested monthly contribution per goal and answers
// affordability queries. It never mutates state and never does I/O.
package core

import "math"

// AllocationFraction is the share of monthly income earmarked for goal
// savings. Policy constant: the remainder stays free for other obligations.
const AllocationFraction = 0.2

// RequiredMonthlyRate is the amount a goal needs saved per month to hit its
// target on time.
func RequiredMonthlyRate(g Goal) (float64, error) {
	if g.TimeFrame <= 0 {
		return 0, &InvalidGoalError{Reason: "time frame must be positive"}
	}
	if !isFinite(g.TargetAmount) || g.TargetAmount <= 0 {
		return 0, &InvalidGoalError{Reason: "target amount must be positive"}
	}
	return g.TargetAmount / float64(g.TimeFrame), nil
}

// TotalRequiredMonthlyRate sums the required monthly rate over the set.
// Order-independent.
func TotalRequiredMonthlyRate(goals []Goal) (float64, error) {
	var total float64
	for _, g := range goals {
		rate, err := RequiredMonthlyRate(g)
		if err != nil {
			return 0, err
		}
		total += rate
	}
	return total, nil
}

// SuggestedSavings is the recommended monthly contribution for one goal
// given the whole set and the monthly income: a proportional share of the
// allocatable income fraction, capped at the goal's own required rate. A
// non-positive or non-finite income means no income is configured yet and
// every suggestion is zero.
func SuggestedSavings(g Goal, goals []Goal, income float64) (float64, error) {
	rate, err := RequiredMonthlyRate(g)
	if err != nil {
		return 0, err
	}
	if !isFinite(income) || income <= 0 {
		return 0, nil
	}
	total, err := TotalRequiredMonthlyRate(goals)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	available := income * AllocationFraction
	proportion := rate / total
	return math.Min(rate, available*proportion), nil
}

// Allocate recomputes SuggestedSavings for every goal. Each goal's
// proportion depends on the full set, so this always runs over the whole
// snapshot; updating a single goal in isolation leaves its siblings stale.
func Allocate(goals []Goal, income float64) ([]Goal, error) {
	out := make([]Goal, len(goals))
	copy(out, goals)
	for i := range out {
		s, err := SuggestedSavings(out[i], goals, income)
		if err != nil {
			return nil, err
		}
		out[i].SuggestedSavings = s
	}
	return out, nil
}

// CanAfford decides whether a proposed goal fits the income once every other
// goal's suggested savings are funded. excludeID removes the goal being
// edited from the comparison so it does not count against itself. A
// non-positive or non-finite income rejects everything.
func CanAfford(goals []Goal, proposed Goal, income float64, excludeID string) error {
	needed, err := RequiredMonthlyRate(proposed)
	if err != nil {
		return err
	}
	if !isFinite(income) || income <= 0 {
		return &InsufficientIncomeError{Needed: needed, Leftover: 0}
	}
	others := make([]Goal, 0, len(goals))
	for _, g := range goals {
		if excludeID != "" && g.ID == excludeID {
			continue
		}
		others = append(others, g)
	}
	var sumOfOthers float64
	for _, g := range others {
		s, err := SuggestedSavings(g, others, income)
		if err != nil {
			return err
		}
		sumOfOthers += s
	}
	leftover := income - sumOfOthers
	if needed > leftover {
		return &InsufficientIncomeError{Needed: needed, Leftover: leftover}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
