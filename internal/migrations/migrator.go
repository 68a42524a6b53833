package migrations

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrNoMigrations is returned when there is nothing to revert
var ErrNoMigrations = errors.New("no migrations have been applied")

// Migrator applies and reverts migrations against one database
type Migrator struct {
	db         *gorm.DB
	migrations []*Migration
	log        *logrus.Logger
}

// NewMigrator creates a migrator loaded with the registered migrations
func NewMigrator(db *gorm.DB, log *logrus.Logger) *Migrator {
	return &Migrator{
		db:         db,
		migrations: Registered(),
		log:        log,
	}
}

// add registers a migration with this migrator only
func (m *Migrator) add(mg *Migration) {
	m.migrations = append(m.migrations, mg)
	sortByVersion(m.migrations)
}

// Migrations returns the known migrations in version order
func (m *Migrator) Migrations() []*Migration {
	return m.migrations
}

// Init creates the tracking table. It is safe to call repeatedly.
func (m *Migrator) Init(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// Applied returns the applied migrations, oldest first
func (m *Migrator) Applied(ctx context.Context) ([]Record, error) {
	if err := m.Init(ctx); err != nil {
		return nil, err
	}
	var records []Record
	if err := m.db.WithContext(ctx).Order("version ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return records, nil
}

// Pending returns the migrations not yet applied, in order
func (m *Migrator) Pending(ctx context.Context) ([]*Migration, error) {
	records, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	applied := make(map[string]bool, len(records))
	for _, r := range records {
		applied[r.Version] = true
	}
	var pending []*Migration
	for _, mg := range m.migrations {
		if !applied[mg.Version] {
			pending = append(pending, mg)
		}
	}
	return pending, nil
}

// Current returns the newest applied version, or "" for an empty database
func (m *Migrator) Current(ctx context.Context) (string, error) {
	records, err := m.Applied(ctx)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}
	return records[len(records)-1].Version, nil
}

// Latest returns the newest known version
func (m *Migrator) Latest() string {
	if len(m.migrations) == 0 {
		return ""
	}
	return m.migrations[len(m.migrations)-1].Version
}

// Up applies all pending migrations, each in its own transaction
func (m *Migrator) Up(ctx context.Context) ([]*Migration, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}

	var done []*Migration
	for _, mg := range pending {
		m.log.Infof("Applying migration: %s (%s)", mg.Name, mg.Version)
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := mg.Up(tx); err != nil {
				return err
			}
			return tx.Create(&Record{
				Version:   mg.Version,
				Name:      mg.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return done, fmt.Errorf("failed to apply migration %s: %w", mg.Name, err)
		}
		done = append(done, mg)
	}
	return done, nil
}

// ResolveTarget turns a downgrade target into the version that should be
// current afterwards ("" means no migrations). Accepted forms: "base",
// "prev", "-N", a full version, or a unique version prefix.
func (m *Migrator) ResolveTarget(ctx context.Context, target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("target revision is required")
	}
	if strings.EqualFold(target, "base") {
		return "", nil
	}
	if strings.EqualFold(target, "prev") {
		target = "-1"
	}

	records, err := m.Applied(ctx)
	if err != nil {
		return "", err
	}

	if strings.HasPrefix(target, "-") {
		steps, err := strconv.Atoi(target[1:])
		if err != nil || steps < 1 {
			return "", fmt.Errorf("invalid relative revision %q", target)
		}
		if len(records) == 0 {
			return "", ErrNoMigrations
		}
		if steps > len(records) {
			return "", fmt.Errorf("cannot step back %d revisions, only %d applied", steps, len(records))
		}
		if steps == len(records) {
			return "", nil
		}
		return records[len(records)-steps-1].Version, nil
	}

	var match string
	for _, r := range records {
		if strings.HasPrefix(r.Version, target) {
			if match != "" {
				return "", fmt.Errorf("revision %q is ambiguous", target)
			}
			match = r.Version
		}
	}
	if match == "" {
		return "", fmt.Errorf("revision %q is not applied", target)
	}
	return match, nil
}

// DownTo reverts every applied migration newer than target, newest first
func (m *Migrator) DownTo(ctx context.Context, target string) ([]*Migration, error) {
	version, err := m.ResolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	records, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}

	byVersion := make(map[string]*Migration, len(m.migrations))
	for _, mg := range m.migrations {
		byVersion[mg.Version] = mg
	}

	var reverted []*Migration
	for i := len(records) - 1; i >= 0; i-- {
		record := records[i]
		if record.Version <= version {
			break
		}
		mg, ok := byVersion[record.Version]
		if !ok {
			return reverted, fmt.Errorf("migration file for version %s not found", record.Version)
		}

		m.log.Infof("Reverting migration: %s (%s)", mg.Name, mg.Version)
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := mg.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&Record{}, "version = ?", record.Version).Error
		})
		if err != nil {
			return reverted, fmt.Errorf("failed to revert migration %s: %w", mg.Name, err)
		}
		reverted = append(reverted, mg)
	}
	return reverted, nil
}
