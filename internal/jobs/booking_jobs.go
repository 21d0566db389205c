package jobs

import (
	"context"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/utils"
)

// SyncCarAvailability recomputes available_now for every active car from the
// bookings covering today.
func (jr *JobRunner) SyncCarAvailability() {
	jr.runWithRecovery(JobSyncCarAvailability, func() error {
		today := domain.DateOf(jr.now())
		changed, err := jr.bookings.SyncCarAvailability(context.Background(), today)
		if err != nil {
			return err
		}
		logger.Info("Synced car availability", "date", utils.FormatDate(today), "changed", changed)
		return nil
	})
}

// FlagLateReturns reports active bookings whose end date has passed.
func (jr *JobRunner) FlagLateReturns() {
	jr.runWithRecovery(JobFlagLateReturns, func() error {
		today := domain.DateOf(jr.now())
		late, err := jr.bookings.FlagLateReturns(context.Background(), today)
		if err != nil {
			return err
		}
		logger.Info("Flagged late returns", "date", utils.FormatDate(today), "count", len(late))
		return nil
	})
}
