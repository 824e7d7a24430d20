// Package kv is the opaque string key-value store the planner persists
// through. It mirrors the mobile app's async storage: the same keys, string
// values only, no schema.
package kv

import "context"

// Storage keys shared with the mobile app.
const (
	KeyMonthlyIncome = "monthlyIncome"
	KeySavingsGoals  = "savingsGoals"
	KeyUserTheme     = "userTheme"
)

// Store is an opaque get/set string store. Get reports whether the key was
// present; an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
