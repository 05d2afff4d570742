package tasks

import (
	"testing"

	"github.com/hibiken/asynq"
)

func TestRecalculateMapTask(t *testing.T) {
	task, err := NewRecalculateMapTask("battle_deleted")
	if err != nil {
		t.Fatalf("NewRecalculateMapTask: %v", err)
	}
	if task.Type() != TypeRecalculateMap {
		t.Errorf("task type = %q, want %q", task.Type(), TypeRecalculateMap)
	}

	payload, err := ParseRecalculatePayload(task)
	if err != nil {
		t.Fatalf("ParseRecalculatePayload: %v", err)
	}
	if payload.Reason != "battle_deleted" {
		t.Errorf("reason = %q", payload.Reason)
	}
}

func TestParseRecalculatePayloadRejectsGarbage(t *testing.T) {
	task := asynq.NewTask(TypeRecalculateMap, []byte("not json"))
	if _, err := ParseRecalculatePayload(task); err == nil {
		t.Error("expected error for malformed payload")
	}
}
