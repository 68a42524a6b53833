// Package commands implements the blogctl command line: schema migrations,
// backups, seeding and small operational helpers.
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Dan9191/blog-service/internal/backup"
	"github.com/Dan9191/blog-service/internal/config"
	"github.com/Dan9191/blog-service/internal/database"
)

// Deps are the collaborators every command may need
type Deps struct {
	Config *config.Config
	Log    *logrus.Logger
	OpenDB func(ctx context.Context) (*gorm.DB, error)
	Runner backup.Runner
	Now    func() time.Time
}

// NewRootCmd assembles blogctl
func NewRootCmd(d *Deps) *cobra.Command {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Runner == nil {
		d.Runner = backup.ExecRunner{}
	}

	rootCmd := &cobra.Command{
		Use:           "blogctl",
		Short:         "Blog service management tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		InitCmd(d),
		CreateCmd(d),
		UpgradeCmd(d),
		DowngradeCmd(d),
		StatusCmd(d),
		HistoryCmd(d),
		BackupCmd(d),
		RestoreCmd(d),
		SeedCmd(d),
		SecretCmd(),
		DBInfoCmd(d),
	)
	return rootCmd
}

// prompter asks yes/no questions on the command's streams. One reader is
// shared so consecutive questions see consecutive lines.
func prompter(cmd *cobra.Command) func(question string) bool {
	in := bufio.NewReader(cmd.InOrStdin())
	return func(question string) bool {
		fmt.Fprint(cmd.OutOrStdout(), question+" (y/N): ")
		line, err := in.ReadString('\n')
		if err != nil && err != io.EOF {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

// openDB connects and returns a func that releases the pool
func (d *Deps) openDB(cmd *cobra.Command) (*gorm.DB, func(), error) {
	db, err := d.OpenDB(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := database.Close(db); err != nil {
			d.Log.WithError(err).Warn("Failed to close database connection")
		}
	}, nil
}

func (d *Deps) backupManager() (*backup.Manager, error) {
	return backup.NewManager(d.Config.DBConn, d.Runner, d.Log)
}
