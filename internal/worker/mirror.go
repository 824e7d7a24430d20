// Package worker applies planner goal events to the backend's relational
// mirror. One-way and best-effort: the planner's local state stays the
// source of truth.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"nestegg/internal/amqp"
	"nestegg/internal/storage"
)

type Mirror struct {
	repo *storage.Repository
}

func NewMirror(repo *storage.Repository) *Mirror {
	return &Mirror{repo: repo}
}

// HandleEvent applies a single goal event. Unknown event types are dropped
// with a warning rather than requeued forever.
func (m *Mirror) HandleEvent(ctx context.Context, event *amqp.GoalEvent) error {
	switch event.Type {
	case amqp.EventGoalUpsert:
		_, err := m.repo.UpsertGoal(ctx, storage.Goal{
			UserID:       event.UserID,
			ClientID:     event.GoalID,
			Name:         event.Name,
			TargetAmount: event.TargetAmount,
			TimeFrame:    int64(event.TimeFrame),
			Progress:     event.Progress,
		})
		if err != nil {
			return fmt.Errorf("mirror upsert: %w", err)
		}
		return nil

	case amqp.EventGoalDelete:
		if err := m.repo.DeleteGoalByClientID(ctx, event.UserID, event.GoalID); err != nil {
			return fmt.Errorf("mirror delete: %w", err)
		}
		return nil

	default:
		slog.WarnContext(ctx, "Dropping goal event of unknown type",
			"type", event.Type, "goal_id", event.GoalID)
		return nil
	}
}
