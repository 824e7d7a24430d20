package amqp

import (
	"encoding/json"
	"time"

	"nestegg/internal/core"
)

// Event types carried on the mirror queue.
const (
	EventGoalUpsert = "goal.upsert"
	EventGoalDelete = "goal.delete"
)

// GoalEvent is the message the planner publishes after an accepted goal
// mutation and the worker applies to the backend store. Upserts carry the
// full goal payload so the worker never has to call back into the planner;
// deletes only need the goal id.
type GoalEvent struct {
	Type         string    `json:"type"`
	UserID       int64     `json:"userId"`
	GoalID       string    `json:"goalId"`
	Name         string    `json:"name,omitempty"`
	TargetAmount float64   `json:"targetAmount,omitempty"`
	TimeFrame    int       `json:"timeFrame,omitempty"`
	Progress     float64   `json:"progress,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func newUpsertEvent(userID int64, g core.Goal) *GoalEvent {
	return &GoalEvent{
		Type:         EventGoalUpsert,
		UserID:       userID,
		GoalID:       g.ID,
		Name:         g.Name,
		TargetAmount: g.TargetAmount,
		TimeFrame:    g.TimeFrame,
		Progress:     g.Progress,
		Timestamp:    time.Now(),
	}
}

func newDeleteEvent(userID int64, goalID string) *GoalEvent {
	return &GoalEvent{
		Type:      EventGoalDelete,
		UserID:    userID,
		GoalID:    goalID,
		Timestamp: time.Now(),
	}
}

func (e *GoalEvent) toJSON() ([]byte, error) {
	return json.Marshal(e)
}

func eventFromJSON(data []byte) (*GoalEvent, error) {
	var e GoalEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
