package workers

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/crusade-dev/crusaded/internal/tasks"
)

// StartRecalcScheduler enqueues a full map recalculation on the given cron
// schedule. Blocks; run it in a goroutine. A missing or unparsable schedule
// disables scheduled recalculation.
func StartRecalcScheduler(client *asynq.Client, schedule string, logger zerolog.Logger) {
	sched := parseSchedule(schedule)
	if sched == nil {
		if schedule != "" {
			logger.Warn().Str("schedule", schedule).Msg("Invalid recalc schedule - scheduled recalculation disabled")
		}
		return
	}

	logger.Info().Str("schedule", schedule).Msg("Scheduled map recalculation enabled")

	for {
		next := sched.Next(time.Now())
		time.Sleep(time.Until(next))

		task, err := tasks.NewRecalculateMapTask("scheduled")
		if err != nil {
			logger.Error().Err(err).Msg("Failed to create recalc task")
			continue
		}

		if _, err := client.Enqueue(task, asynq.Queue("low"), asynq.Timeout(10*time.Minute)); err != nil {
			logger.Error().Err(err).Msg("Failed to enqueue scheduled recalc task")
			continue
		}

		logger.Info().Time("fired_at", next).Msg("Scheduled recalc task enqueued")
	}
}

// parseSchedule parses a standard 5-field cron expression
// (minute hour day-of-month month day-of-week)
func parseSchedule(expr string) cron.Schedule {
	if expr == "" {
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil
	}
	return schedule
}
