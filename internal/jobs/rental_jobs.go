package jobs

import (
	"context"

	"rentmarket-backend/internal/logger"
)

// ExpireStalePendingRequests cancels pending requests whose start date
// passed the configured grace period without an answer from the owner.
func (jr *JobRunner) ExpireStalePendingRequests() bool {
	return jr.runWithRecovery("ExpireStalePendingRequests", func(ctx context.Context) error {
		grace := jr.config.PendingGrace()
		n, err := jr.maintenance.ExpireStalePendingRequests(ctx, grace)
		if err != nil {
			return err
		}
		logger.Info("Expired stale pending rental requests", "count", n, "grace", grace)
		return nil
	})
}

// SendRentalStartReminders notifies both parties of approved rentals that
// start within the reminder window.
func (jr *JobRunner) SendRentalStartReminders() bool {
	return jr.runWithRecovery("SendRentalStartReminders", func(ctx context.Context) error {
		window := jr.config.ReminderWindow()
		n, err := jr.maintenance.SendRentalStartReminders(ctx, window)
		if err != nil {
			return err
		}
		logger.Info("Sent rental start reminders", "count", n, "window", window)
		return nil
	})
}
