package migrations_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Dan9191/blog-service/internal/database/dbtest"
	"github.com/Dan9191/blog-service/internal/migrations"
	"github.com/Dan9191/blog-service/internal/models"
)

func TestUpAppliesEverything(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenEmpty(t)
	m := migrations.NewMigrator(db, dbtest.Logger())

	applied, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, len(m.Migrations()))

	current, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, m.Latest(), current)

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	again, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestMigratedSchemaMatchesModels(t *testing.T) {
	db := dbtest.Open(t)

	changes, err := migrations.Diff(db, models.All()...)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestDownToBase(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	m := migrations.NewMigrator(db, dbtest.Logger())

	reverted, err := m.DownTo(ctx, "base")
	require.NoError(t, err)
	assert.Len(t, reverted, len(m.Migrations()))
	assert.False(t, db.Migrator().HasTable("users"))
	assert.False(t, db.Migrator().HasTable("posts"))

	current, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", current)

	_, err = m.ResolveTarget(ctx, "prev")
	assert.ErrorIs(t, err, migrations.ErrNoMigrations)
}

func TestDownToPrevKeepsData(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	m := migrations.NewMigrator(db, dbtest.Logger())

	require.NoError(t, db.Exec(`INSERT INTO users (username, email, password_hash, created_at) VALUES ('alice', 'alice@x.com', 'h', CURRENT_TIMESTAMP)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO posts (title, content, user_id, created_at, updated_at) VALUES ('t', 'c', 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`).Error)

	reverted, err := m.DownTo(ctx, "prev")
	require.NoError(t, err)
	require.Len(t, reverted, 1)
	assert.Equal(t, "add_active_and_published_flags", reverted[0].Name)
	assert.False(t, db.Migrator().HasColumn("users", "is_active"))

	var posts int64
	require.NoError(t, db.Table("posts").Count(&posts).Error)
	assert.Equal(t, int64(1), posts)

	applied, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, 1)
}

func TestResolveTarget(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	m := migrations.NewMigrator(db, dbtest.Logger())

	tests := []struct {
		target  string
		want    string
		wantErr bool
	}{
		{target: "base", want: ""},
		{target: "prev", want: "20240101000000"},
		{target: "-1", want: "20240101000000"},
		{target: "-2", want: ""},
		{target: "-3", wantErr: true},
		{target: "-x", wantErr: true},
		{target: "20240101000000", want: "20240101000000"},
		{target: "202402", want: "20240215000000"},
		{target: "2024", wantErr: true},
		{target: "1999", wantErr: true},
		{target: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := m.ResolveTarget(ctx, tt.target)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpStopsAtFailingMigration(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	m := migrations.NewMigrator(db, dbtest.Logger())
	m.Register(&migrations.Migration{
		Version: "29990101000000",
		Name:    "broken",
		Up: func(tx *gorm.DB) error {
			return errors.New("boom")
		},
		Down: func(tx *gorm.DB) error { return nil },
	})

	_, err := m.Up(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	current, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "20240215000000", current)
}

func TestDownToMissingMigrationFile(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	require.NoError(t, db.Create(&migrations.Record{Version: "29990101000000", Name: "gone"}).Error)

	_, err := migrations.NewMigrator(db, dbtest.Logger()).DownTo(ctx, "prev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration file for version 29990101000000 not found")
}

func TestBootstrapFallsBackToModels(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenEmpty(t)
	// users already exists, so the first migration's CREATE TABLE fails
	require.NoError(t, db.AutoMigrate(&models.User{}))

	err := migrations.Bootstrap(ctx, db, dbtest.Logger(), false)
	require.Error(t, err)

	require.NoError(t, migrations.Bootstrap(ctx, db, dbtest.Logger(), true))
	assert.True(t, db.Migrator().HasTable("posts"))
	assert.True(t, db.Migrator().HasColumn("posts", "is_published"))
}
