// Package backup dumps and restores the blog database with the PostgreSQL
// client tools and can run dumps on a cron schedule.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Runner executes an external command with extra environment variables and
// returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args, env []string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args, env []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Manager creates and restores backups of one database
type Manager struct {
	params ConnParams
	runner Runner
	log    *logrus.Logger
	now    func() time.Time
}

// NewManager parses dsn and returns a manager that runs tools through runner
func NewManager(dsn string, runner Runner, log *logrus.Logger) (*Manager, error) {
	params, err := ParseConnString(dsn)
	if err != nil {
		return nil, err
	}
	return &Manager{params: params, runner: runner, log: log, now: time.Now}, nil
}

// Params returns the parsed connection parameters
func (m *Manager) Params() ConnParams {
	return m.params
}

// DefaultFileName is backup_<db>_<timestamp>.sql
func (m *Manager) DefaultFileName() string {
	return fmt.Sprintf("backup_%s_%s.sql", m.params.Database, m.now().Format("20060102_150405"))
}

// DumpArgs builds the pg_dump arguments writing to file
func (m *Manager) DumpArgs(file string) []string {
	return []string{
		"-h", m.params.Host,
		"-p", m.params.Port,
		"-U", m.params.User,
		"-d", m.params.Database,
		"--no-password",
		"--clean",
		"--if-exists",
		"--create",
		"-f", file,
	}
}

// RestoreArgs builds the psql arguments. It connects to the maintenance
// database because the dump recreates the target.
func (m *Manager) RestoreArgs(file string) []string {
	return []string{
		"-h", m.params.Host,
		"-p", m.params.Port,
		"-U", m.params.User,
		"-d", "postgres",
		"--no-password",
		"-f", file,
	}
}

// Backup dumps the database to file and returns the file size in bytes
func (m *Manager) Backup(ctx context.Context, file string) (int64, error) {
	m.log.Infof("Creating database backup of %s into %s", m.params.Database, file)
	if out, err := m.runner.Run(ctx, "pg_dump", m.DumpArgs(file), m.params.Env()); err != nil {
		return 0, fmt.Errorf("backup failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	info, err := os.Stat(file)
	if err != nil {
		return 0, fmt.Errorf("backup file missing after dump: %w", err)
	}
	m.log.Infof("Backup created: %s (%d bytes)", file, info.Size())
	return info.Size(), nil
}

// BackupInto dumps into dir using the default file name
func (m *Manager) BackupInto(ctx context.Context, dir string) (string, int64, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create backup directory: %w", err)
	}
	file := filepath.Join(dir, m.DefaultFileName())
	size, err := m.Backup(ctx, file)
	return file, size, err
}

// Restore replays a dump produced by Backup. The current database is
// overwritten.
func (m *Manager) Restore(ctx context.Context, file string) error {
	if _, err := os.Stat(file); err != nil {
		return fmt.Errorf("backup file not found: %s", file)
	}
	m.log.Infof("Restoring database %s from %s", m.params.Database, file)
	if out, err := m.runner.Run(ctx, "psql", m.RestoreArgs(file), m.params.Env()); err != nil {
		return fmt.Errorf("restore failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	m.log.Info("Database restored successfully")
	return nil
}
