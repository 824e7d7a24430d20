// Package store owns the canonical goal list and monthly income for the
// process and keeps them consistent across mutations and restarts. All
// validation and affordability gating happens here, before any write to the
// in-memory set or the key-value store; no mutation is ever partially
// applied.
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"nestegg/internal/core"
	"nestegg/internal/kv"
)

// Publisher receives accepted goal mutations for best-effort mirroring to
// the backend. Failures are logged, never surfaced to the caller.
type Publisher interface {
	PublishGoalUpsert(ctx context.Context, g core.Goal) error
	PublishGoalDelete(ctx context.Context, id string) error
}

// Snapshot is a value copy of the store's state. Goals carry freshly
// computed suggestions; callers never alias internal slices.
type Snapshot struct {
	Income float64     `json:"income"`
	Goals  []core.Goal `json:"goals"`
}

// GoalStore is the single owner of the goal set and income. Mutations are
// serialized; the in-memory update is applied and returned before the
// persistence write is confirmed, so a failed write surfaces as a
// *core.PersistenceError alongside the already-updated snapshot.
type GoalStore struct {
	mu     sync.Mutex
	kv     kv.Store
	pub    Publisher
	income float64
	goals  []core.Goal
}

// New creates a store persisting through kvStore. pub may be nil when no
// backend mirror is configured.
func New(kvStore kv.Store, pub Publisher) *GoalStore {
	return &GoalStore{kv: kvStore, pub: pub}
}

// storedGoal is the persisted wire form. The name field is "goal" for
// compatibility with the mobile app's stored data, and the derived
// suggestion is omitted entirely: it is recomputed on every load.
type storedGoal struct {
	ID           string  `json:"id"`
	Goal         string  `json:"goal"`
	Progress     float64 `json:"progress"`
	TargetAmount float64 `json:"targetAmount"`
	TimeFrame    int     `json:"timeFrame"`
}

// Load replaces in-memory state with whatever the key-value store holds.
// Absent or unparseable income falls back to zero, an absent or malformed
// goal list to empty, and individual records violating the goal invariants
// are dropped: a broken store file degrades, it does not brick the app.
func (s *GoalStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	income := 0.0
	if raw, ok, err := s.kv.Get(ctx, kv.KeyMonthlyIncome); err != nil {
		return Snapshot{}, &core.PersistenceError{Op: "load income", Err: err}
	} else if ok {
		v, perr := core.ParseAmount(raw)
		if perr != nil {
			slog.WarnContext(ctx, "Stored income is unparseable, falling back to zero",
				"value", raw, "error", perr)
		} else {
			income = v
		}
	}

	var goals []core.Goal
	if raw, ok, err := s.kv.Get(ctx, kv.KeySavingsGoals); err != nil {
		return Snapshot{}, &core.PersistenceError{Op: "load goals", Err: err}
	} else if ok {
		var stored []storedGoal
		if uerr := json.Unmarshal([]byte(raw), &stored); uerr != nil {
			slog.WarnContext(ctx, "Stored goal list is malformed, starting empty", "error", uerr)
		} else {
			for _, sg := range stored {
				g := core.Goal{
					ID:           sg.ID,
					Name:         sg.Goal,
					TargetAmount: sg.TargetAmount,
					TimeFrame:    sg.TimeFrame,
					Progress:     sg.Progress,
				}
				if verr := g.Validate(); verr != nil {
					slog.WarnContext(ctx, "Dropping stored goal violating invariants",
						"goal_id", sg.ID, "error", verr)
					continue
				}
				goals = append(goals, g)
			}
		}
	}

	allocated, err := core.Allocate(goals, income)
	if err != nil {
		return Snapshot{}, err
	}

	s.income = income
	s.goals = allocated
	return s.snapshotLocked(), nil
}

// Snapshot returns the current state without touching persistence.
func (s *GoalStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SetIncome updates the monthly income and re-derives every suggestion. An
// income decrease never retroactively rejects existing goals: underfunding
// is a user-correctable warning state, not grounds to destroy data.
func (s *GoalStore) SetIncome(ctx context.Context, income float64) (Snapshot, error) {
	if err := validIncome(income); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	allocated, err := core.Allocate(s.goals, income)
	if err != nil {
		return Snapshot{}, err
	}
	s.income = income
	s.goals = allocated

	if err := s.kv.Set(ctx, kv.KeyMonthlyIncome, core.FormatAmount(income)); err != nil {
		return s.snapshotLocked(), &core.PersistenceError{Op: "income", Err: err}
	}
	return s.snapshotLocked(), nil
}

// AddGoal validates the candidate, gates it on affordability against the
// current income and goal set, then appends it with a fresh unique id.
// Nothing is mutated or persisted on rejection.
func (s *GoalStore) AddGoal(ctx context.Context, name string, targetAmount float64, timeFrame int) (Snapshot, error) {
	candidate := core.Goal{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		TargetAmount: targetAmount,
		TimeFrame:    timeFrame,
	}
	if err := candidate.Validate(); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := core.CanAfford(s.goals, candidate, s.income, ""); err != nil {
		return Snapshot{}, err
	}

	return s.commitLocked(ctx, append(s.goals, candidate), &candidate, "")
}

// EditGoal replaces the goal with the given id in place, preserving its id
// and progress. The goal being edited is excluded from the affordability sum
// so it does not count against itself.
func (s *GoalStore) EditGoal(ctx context.Context, id, name string, targetAmount float64, timeFrame int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Snapshot{}, &core.NotFoundError{ID: id}
	}

	candidate := core.Goal{
		ID:           id,
		Name:         strings.TrimSpace(name),
		TargetAmount: targetAmount,
		TimeFrame:    timeFrame,
		Progress:     s.goals[idx].Progress,
	}
	if err := candidate.Validate(); err != nil {
		return Snapshot{}, err
	}
	if err := core.CanAfford(s.goals, candidate, s.income, id); err != nil {
		return Snapshot{}, err
	}

	next := make([]core.Goal, len(s.goals))
	copy(next, s.goals)
	next[idx] = candidate

	return s.commitLocked(ctx, next, &candidate, "")
}

// DeleteGoal removes the goal with the given id. Deleting an unknown id is a
// no-op, not an error: the delete is idempotent.
func (s *GoalStore) DeleteGoal(ctx context.Context, id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return s.snapshotLocked(), nil
	}

	next := make([]core.Goal, 0, len(s.goals)-1)
	next = append(next, s.goals[:idx]...)
	next = append(next, s.goals[idx+1:]...)

	return s.commitLocked(ctx, next, nil, id)
}

// commitLocked applies an accepted goal-set change: recompute suggestions
// over the full set, swap the in-memory state, persist, then publish the
// mirror event. Persistence failure is reported but not rolled back.
func (s *GoalStore) commitLocked(ctx context.Context, next []core.Goal, upserted *core.Goal, deletedID string) (Snapshot, error) {
	allocated, err := core.Allocate(next, s.income)
	if err != nil {
		return Snapshot{}, err
	}
	s.goals = allocated

	perr := s.persistGoalsLocked(ctx)
	// The mirror follows the in-memory state, so publish even when the
	// local write failed.
	s.publishLocked(ctx, upserted, deletedID)
	if perr != nil {
		return s.snapshotLocked(), perr
	}
	return s.snapshotLocked(), nil
}

func (s *GoalStore) persistGoalsLocked(ctx context.Context) error {
	stored := make([]storedGoal, len(s.goals))
	for i, g := range s.goals {
		stored[i] = storedGoal{
			ID:           g.ID,
			Goal:         g.Name,
			Progress:     g.Progress,
			TargetAmount: g.TargetAmount,
			TimeFrame:    g.TimeFrame,
		}
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return &core.PersistenceError{Op: "goals", Err: err}
	}
	if err := s.kv.Set(ctx, kv.KeySavingsGoals, string(data)); err != nil {
		return &core.PersistenceError{Op: "goals", Err: err}
	}
	return nil
}

func (s *GoalStore) publishLocked(ctx context.Context, upserted *core.Goal, deletedID string) {
	if s.pub == nil {
		return
	}
	var err error
	switch {
	case upserted != nil:
		err = s.pub.PublishGoalUpsert(ctx, *upserted)
	case deletedID != "":
		err = s.pub.PublishGoalDelete(ctx, deletedID)
	}
	if err != nil {
		slog.WarnContext(ctx, "Failed to publish goal mirror event", "error", err)
	}
}

func (s *GoalStore) indexLocked(id string) int {
	for i, g := range s.goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func (s *GoalStore) snapshotLocked() Snapshot {
	goals := make([]core.Goal, len(s.goals))
	copy(goals, s.goals)
	return Snapshot{Income: s.income, Goals: goals}
}

func validIncome(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return &core.ValidationError{Field: "income", Reason: "must be a positive finite number"}
	}
	return nil
}
