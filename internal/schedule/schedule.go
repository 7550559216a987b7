// Package schedule is a minimal recurring-task runner. The task stays
// stateless and schedule-agnostic; only the runner knows when it fires.
package schedule

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Task is one scheduled unit of work. A returned error is logged, never
// fatal; the next occurrence still fires.
type Task func(ctx context.Context) error

// NextWeekly returns the first instant strictly after now that falls on the
// given weekday at hour:min, in now's location.
func NextWeekly(now time.Time, day time.Weekday, hour, min int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
	days := (int(day) - int(now.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// RunWeekly fires the task every week on the given weekday and time until
// the context is cancelled.
func RunWeekly(ctx context.Context, log zerolog.Logger, day time.Weekday, hour, min int, task Task) {
	for {
		next := NextWeekly(time.Now(), day, hour, min)
		log.Info().Time("next_run", next).Msg("Scheduled next report run")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := task(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled task failed")
		}
	}
}
