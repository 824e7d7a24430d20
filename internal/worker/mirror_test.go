package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"nestegg/internal/amqp"
	"nestegg/internal/storage"
)

func setup(t *testing.T) (*Mirror, *storage.Repository, int64) {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	u, err := repo.CreateUser(context.Background(), "alice", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewMirror(repo), repo, u.ID
}

func TestMirrorUpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	mirror, repo, userID := setup(t)

	upsert := &amqp.GoalEvent{
		Type:         amqp.EventGoalUpsert,
		UserID:       userID,
		GoalID:       "client-1",
		Name:         "Laptop",
		TargetAmount: 1200,
		TimeFrame:    12,
		Timestamp:    time.Now(),
	}
	if err := mirror.HandleEvent(ctx, upsert); err != nil {
		t.Fatalf("upsert event: %v", err)
	}

	// Redelivery of the same event must not duplicate the row.
	if err := mirror.HandleEvent(ctx, upsert); err != nil {
		t.Fatalf("redelivered upsert: %v", err)
	}

	goals, err := repo.ListGoalsByUser(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(goals) != 1 || goals[0].ClientID != "client-1" || goals[0].Name != "Laptop" {
		t.Fatalf("mirrored goals = %+v", goals)
	}

	del := &amqp.GoalEvent{
		Type:      amqp.EventGoalDelete,
		UserID:    userID,
		GoalID:    "client-1",
		Timestamp: time.Now(),
	}
	if err := mirror.HandleEvent(ctx, del); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	// Idempotent, like the planner's delete.
	if err := mirror.HandleEvent(ctx, del); err != nil {
		t.Fatalf("redelivered delete: %v", err)
	}

	goals, err = repo.ListGoalsByUser(ctx, userID)
	if err != nil || len(goals) != 0 {
		t.Errorf("goals after delete = %+v, err %v", goals, err)
	}
}

func TestMirrorDropsUnknownEventTypes(t *testing.T) {
	mirror, _, userID := setup(t)
	err := mirror.HandleEvent(context.Background(), &amqp.GoalEvent{
		Type:   "goal.exploded",
		UserID: userID,
		GoalID: "client-9",
	})
	if err != nil {
		t.Fatalf("unknown event type must not requeue: %v", err)
	}
}
