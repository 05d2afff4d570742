package workers

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/crusade-dev/crusaded/internal/campaign"
	"github.com/crusade-dev/crusaded/internal/tasks"
)

// HandleRecalculateMap replays the battle log and rebuilds territory CP.
// The replay runs in a single transaction, so a failure mid-replay leaves
// the map untouched and the task is retried by asynq.
func HandleRecalculateMap(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseRecalculatePayload(t)
	if err != nil {
		return err
	}

	logger.Info().Str("reason", payload.Reason).Msg("Starting map recalculation")

	svc := campaign.NewService(db, logger)
	if err := svc.Recalculate(); err != nil {
		logger.Error().Err(err).Msg("Map recalculation failed")
		return err
	}

	score, err := svc.CurrentScore()
	if err != nil {
		// Recalculation succeeded; the score read is informational only
		logger.Warn().Err(err).Msg("Failed to read score after recalculation")
		return nil
	}

	logger.Info().
		Str("reason", payload.Reason).
		Int("loyalist", score.Loyalist).
		Int("traitor", score.Traitor).
		Int("lead", score.Lead).
		Msg("Map recalculation complete")
	return nil
}
