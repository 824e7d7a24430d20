package core

import (
	"errors"
	"math"
	"testing"
)

func goal(id string, target float64, months int) Goal {
	return Goal{ID: id, Name: "goal " + id, TargetAmount: target, TimeFrame: months}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRequiredMonthlyRate(t *testing.T) {
	tests := []struct {
		name    string
		g       Goal
		want    float64
		wantErr bool
	}{
		{name: "simple division", g: goal("1", 1200, 12), want: 100},
		{name: "fractional rate", g: goal("2", 100, 3), want: 100.0 / 3.0},
		{name: "zero time frame", g: goal("3", 1200, 0), wantErr: true},
		{name: "negative time frame", g: goal("4", 1200, -1), wantErr: true},
		{name: "zero target", g: goal("5", 0, 12), wantErr: true},
		{name: "negative target", g: goal("6", -50, 12), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequiredMonthlyRate(tt.g)
			if tt.wantErr {
				var ige *InvalidGoalError
				if !errors.As(err, &ige) {
					t.Fatalf("expected InvalidGoalError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !almostEqual(got, tt.want) {
				t.Errorf("RequiredMonthlyRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTotalRequiredMonthlyRateAdditivity(t *testing.T) {
	goals := []Goal{goal("1", 1200, 12), goal("2", 800, 8), goal("3", 300, 6)}

	var sum float64
	for _, g := range goals {
		r, err := RequiredMonthlyRate(g)
		if err != nil {
			t.Fatalf("rate: %v", err)
		}
		sum += r
	}

	total, err := TotalRequiredMonthlyRate(goals)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if !almostEqual(total, sum) {
		t.Errorf("total %v does not equal sum of rates %v", total, sum)
	}

	// Order independence: same set, reversed.
	reversed := []Goal{goals[2], goals[1], goals[0]}
	totalRev, err := TotalRequiredMonthlyRate(reversed)
	if err != nil {
		t.Fatalf("total reversed: %v", err)
	}
	if !almostEqual(total, totalRev) {
		t.Errorf("total depends on order: %v vs %v", total, totalRev)
	}
}

func TestSuggestedSavingsScenarios(t *testing.T) {
	t.Run("full funding when capacity covers total need", func(t *testing.T) {
		// income 1000 -> available 200; rates 100 + 100 = 200.
		goals := []Goal{goal("1", 1200, 12), goal("2", 800, 8)}
		for _, g := range goals {
			s, err := SuggestedSavings(g, goals, 1000)
			if err != nil {
				t.Fatalf("suggested: %v", err)
			}
			if !almostEqual(s, 100) {
				t.Errorf("goal %s: suggested = %v, want 100", g.ID, s)
			}
		}
	})

	t.Run("single goal capped by available fraction", func(t *testing.T) {
		// income 100 -> available 20; rate 100, proportion 1.
		goals := []Goal{goal("1", 1200, 12)}
		s, err := SuggestedSavings(goals[0], goals, 100)
		if err != nil {
			t.Fatalf("suggested: %v", err)
		}
		if !almostEqual(s, 20) {
			t.Errorf("suggested = %v, want 20", s)
		}
	})

	t.Run("no income configured means zero for all", func(t *testing.T) {
		goals := []Goal{goal("1", 1200, 12), goal("2", 800, 8)}
		for _, income := range []float64{0, -5, math.NaN(), math.Inf(1)} {
			for _, g := range goals {
				s, err := SuggestedSavings(g, goals, income)
				if err != nil {
					t.Fatalf("suggested: %v", err)
				}
				if s != 0 {
					t.Errorf("income %v: suggested = %v, want 0", income, s)
				}
			}
		}
	})
}

func TestSuggestedSavingsNeverExceedsRate(t *testing.T) {
	goals := []Goal{
		goal("1", 1200, 12),
		goal("2", 900, 4),
		goal("3", 50, 10),
		goal("4", 10000, 36),
	}
	for _, income := range []float64{50, 500, 1000, 2500, 100000} {
		for _, g := range goals {
			rate, err := RequiredMonthlyRate(g)
			if err != nil {
				t.Fatalf("rate: %v", err)
			}
			s, err := SuggestedSavings(g, goals, income)
			if err != nil {
				t.Fatalf("suggested: %v", err)
			}
			if s > rate+1e-9 {
				t.Errorf("income %v goal %s: suggested %v exceeds rate %v", income, g.ID, s, rate)
			}
		}
	}
}

func TestAllocate(t *testing.T) {
	t.Run("idempotent recompute", func(t *testing.T) {
		goals := []Goal{goal("1", 1200, 12), goal("2", 800, 8), goal("3", 450, 9)}
		once, err := Allocate(goals, 700)
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		twice, err := Allocate(once, 700)
		if err != nil {
			t.Fatalf("allocate again: %v", err)
		}
		for i := range once {
			if !almostEqual(once[i].SuggestedSavings, twice[i].SuggestedSavings) {
				t.Errorf("goal %s: %v != %v after second recompute",
					once[i].ID, once[i].SuggestedSavings, twice[i].SuggestedSavings)
			}
		}
	})

	t.Run("does not mutate input", func(t *testing.T) {
		goals := []Goal{goal("1", 1200, 12)}
		if _, err := Allocate(goals, 1000); err != nil {
			t.Fatalf("allocate: %v", err)
		}
		if goals[0].SuggestedSavings != 0 {
			t.Errorf("input slice was mutated: %v", goals[0].SuggestedSavings)
		}
	})

	t.Run("removing a goal shifts remaining proportions", func(t *testing.T) {
		// income 500 -> available 100, under-funded so proportions matter.
		goals := []Goal{goal("1", 1200, 12), goal("2", 800, 8), goal("3", 600, 3)}
		before, err := Allocate(goals, 500)
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		after, err := Allocate(goals[:2], 500)
		if err != nil {
			t.Fatalf("allocate remaining: %v", err)
		}
		for i := range after {
			if almostEqual(after[i].SuggestedSavings, before[i].SuggestedSavings) {
				t.Errorf("goal %s: suggestion unchanged (%v) although total demand changed",
					after[i].ID, after[i].SuggestedSavings)
			}
			if after[i].SuggestedSavings < before[i].SuggestedSavings {
				t.Errorf("goal %s: share shrank after demand dropped: %v -> %v",
					after[i].ID, before[i].SuggestedSavings, after[i].SuggestedSavings)
			}
		}
	})

	t.Run("empty set", func(t *testing.T) {
		out, err := Allocate(nil, 1000)
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		if len(out) != 0 {
			t.Errorf("expected empty result, got %d goals", len(out))
		}
	})
}

func TestCanAfford(t *testing.T) {
	t.Run("rejects when required rate exceeds leftover", func(t *testing.T) {
		// Existing goal needs 100/month; income 125 earmarks 25, so its
		// suggestion is 25 and the leftover is exactly 100. A goal needing
		// 150/month must be rejected with a 50 shortfall.
		existing := []Goal{goal("1", 1200, 12)}
		err := CanAfford(existing, goal("2", 1800, 12), 125, "")
		var iie *InsufficientIncomeError
		if !errors.As(err, &iie) {
			t.Fatalf("expected InsufficientIncomeError, got %v", err)
		}
		if !almostEqual(iie.Needed, 150) || !almostEqual(iie.Leftover, 100) {
			t.Errorf("needed/leftover = %v/%v, want 150/100", iie.Needed, iie.Leftover)
		}
		if !almostEqual(iie.Shortfall(), 50) {
			t.Errorf("Shortfall() = %v, want 50", iie.Shortfall())
		}
	})

	t.Run("accepts when leftover covers the rate", func(t *testing.T) {
		existing := []Goal{goal("1", 1200, 12)}
		if err := CanAfford(existing, goal("2", 800, 8), 1000, ""); err != nil {
			t.Fatalf("expected accept, got %v", err)
		}
	})

	t.Run("rejects everything without valid income", func(t *testing.T) {
		for _, income := range []float64{0, -10, math.NaN(), math.Inf(1)} {
			err := CanAfford(nil, goal("1", 10, 10), income, "")
			var iie *InsufficientIncomeError
			if !errors.As(err, &iie) {
				t.Errorf("income %v: expected InsufficientIncomeError, got %v", income, err)
			}
		}
	})

	t.Run("edit excludes the goal's own id", func(t *testing.T) {
		// A single goal needing 100/month on an income of 120. Re-saving it
		// unchanged must pass: excluded from the other-goals sum, the whole
		// income is leftover. Counting its old suggestion against itself
		// (no exclusion) leaves only 96 and wrongly rejects.
		goals := []Goal{goal("1", 1200, 12)}
		edited := goal("1", 1200, 12)
		if err := CanAfford(goals, edited, 120, "1"); err != nil {
			t.Fatalf("self-exclusion failed: %v", err)
		}
		if err := CanAfford(goals, edited, 120, ""); err == nil {
			t.Fatal("expected rejection when the old goal still counts")
		}
	})

	t.Run("invalid proposed goal fails closed", func(t *testing.T) {
		err := CanAfford(nil, goal("1", 100, 0), 1000, "")
		var ige *InvalidGoalError
		if !errors.As(err, &ige) {
			t.Fatalf("expected InvalidGoalError, got %v", err)
		}
	})
}

func TestInsufficientIncomeErrorShortfall(t *testing.T) {
	err := &InsufficientIncomeError{Needed: 150, Leftover: 100}
	if !almostEqual(err.Shortfall(), 50) {
		t.Errorf("Shortfall() = %v, want 50", err.Shortfall())
	}
}
