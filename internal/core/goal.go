package core

import (
	"strings"
)

// Goal is a named savings target: a total amount to reach within a time
// frame expressed in months. Progress is the amount already put aside and is
// never touched by the allocation engine. SuggestedSavings is derived from
// the full goal set and the monthly income; it is recomputed on every load
// and mutation and never treated as authoritative stored data.
type Goal struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	TargetAmount     float64 `json:"targetAmount"`
	TimeFrame        int     `json:"timeFrame"`
	Progress         float64 `json:"progress"`
	SuggestedSavings float64 `json:"suggestedSavings"`
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if len(g.Name) > 120 {
		return &ValidationError{Field: "name", Reason: "too long (max 120 characters)"}
	}
	if !isFinite(g.TargetAmount) || g.TargetAmount <= 0 {
		return &ValidationError{Field: "targetAmount", Reason: "must be a positive amount"}
	}
	if g.TimeFrame <= 0 {
		return &ValidationError{Field: "timeFrame", Reason: "must be a positive number of months"}
	}
	if !isFinite(g.Progress) || g.Progress < 0 {
		return &ValidationError{Field: "progress", Reason: "must not be negative"}
	}
	return nil
}
