package jobs

import (
	"context"

	"rentmarket-backend/internal/logger"
)

// PurgeDeletedNotifications removes soft-deleted notifications older than
// the retention period.
func (jr *JobRunner) PurgeDeletedNotifications() bool {
	return jr.runWithRecovery("PurgeDeletedNotifications", func(ctx context.Context) error {
		retention := jr.config.NotificationRetention()
		n, err := jr.maintenance.PurgeDeletedNotifications(ctx, retention)
		if err != nil {
			return err
		}
		logger.Info("Purged deleted notifications", "count", n, "retention", retention)
		return nil
	})
}
