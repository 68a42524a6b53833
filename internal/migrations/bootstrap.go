package migrations

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Dan9191/blog-service/internal/models"
)

// Bootstrap brings the schema up to date at process start. When migrating
// fails and createOnFailure is set, the schema is created from the models
// instead; otherwise the migration error is returned.
func Bootstrap(ctx context.Context, db *gorm.DB, log *logrus.Logger, createOnFailure bool) error {
	applied, err := NewMigrator(db, log).Up(ctx)
	if err == nil {
		log.Infof("Database schema up to date (%d migrations applied)", len(applied))
		return nil
	}
	if !createOnFailure {
		return err
	}

	log.WithError(err).Warn("Migration failed, creating schema from models")
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	log.Info("Database tables created from models")
	return nil
}
