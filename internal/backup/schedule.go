package backup

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Schedule runs BackupInto(dir) on a standard five-field cron spec (or a
// descriptor such as @daily) until ctx is cancelled. Failed runs are logged
// and the schedule keeps going.
func (m *Manager) Schedule(ctx context.Context, spec, dir string) error {
	c := cron.New(cron.WithLogger(cron.PrintfLogger(m.log)))
	_, err := c.AddFunc(spec, func() {
		if _, _, err := m.BackupInto(ctx, dir); err != nil {
			m.log.WithError(err).Error("Scheduled backup failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	m.log.Infof("Backups scheduled with %q into %s", spec, dir)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	m.log.Info("Backup scheduler stopped")
	return nil
}
