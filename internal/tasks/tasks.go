package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Map recalculation (full CP replay from the battle log)
	TypeRecalculateMap = "map:recalculate"
)

// RecalculatePayload describes a map recalculation request
type RecalculatePayload struct {
	Reason string `json:"reason,omitempty"` // e.g. "battle_deleted", "scheduled"
}

// NewRecalculateMapTask creates a task to replay the battle log and rebuild
// territory control points
func NewRecalculateMapTask(reason string) (*asynq.Task, error) {
	payload, err := json.Marshal(RecalculatePayload{Reason: reason})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeRecalculateMap, payload), nil
}

// ParseRecalculatePayload parses the payload from an Asynq task
func ParseRecalculatePayload(task *asynq.Task) (RecalculatePayload, error) {
	var payload RecalculatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
