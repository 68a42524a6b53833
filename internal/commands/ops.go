package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dan9191/blog-service/internal/backup"
	"github.com/Dan9191/blog-service/internal/repository"
	"github.com/Dan9191/blog-service/internal/seed"
	"github.com/Dan9191/blog-service/internal/service"
	"github.com/Dan9191/blog-service/internal/utils"
)

func BackupCmd(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup [file]",
		Short: "Dump the database with pg_dump",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			m, err := d.backupManager()
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "Creating database backup...")
			fmt.Fprintf(out, "Database: %s\n", m.Params().Database)
			var file string
			var size int64
			if len(args) == 1 {
				file = args[0]
				size, err = m.Backup(cmd.Context(), file)
			} else {
				file, size, err = m.BackupInto(cmd.Context(), d.Config.BackupDir)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "Backup created successfully!")
			fmt.Fprintf(out, "File: %s\n", file)
			fmt.Fprintf(out, "Size: %.2f MB\n", float64(size)/(1024*1024))
			return nil
		},
	}
	cmd.AddCommand(backupScheduleCmd(d))
	return cmd
}

func backupScheduleCmd(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run backups on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, _ := cmd.Flags().GetString("cron")
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = d.Config.BackupDir
			}
			m, err := d.backupManager()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return m.Schedule(ctx, spec, dir)
		},
	}
	cmd.Flags().String("cron", "0 3 * * *", "Cron spec (five fields or a descriptor such as @daily)")
	cmd.Flags().String("dir", "", "Directory for backup files (defaults to BACKUP_DIR)")
	return cmd
}

func RestoreCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the database from a pg_dump file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			file := args[0]
			if _, err := os.Stat(file); err != nil {
				return fmt.Errorf("backup file not found: %s", file)
			}
			m, err := d.backupManager()
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Backup file: %s\n", file)
			fmt.Fprintf(out, "Target database: %s\n", m.Params().Database)
			fmt.Fprintln(out, "WARNING: This will overwrite the current database!")
			if !prompter(cmd)("Continue?") {
				fmt.Fprintln(out, "Restore cancelled")
				return nil
			}

			if err := m.Restore(cmd.Context(), file); err != nil {
				return err
			}
			fmt.Fprintln(out, "Database restored successfully!")
			return nil
		},
	}
}

func SeedCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace all users and posts with sample data",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "WARNING: This deletes every user and post in the database!")
			if !prompter(cmd)("Continue?") {
				fmt.Fprintln(out, "Seeding cancelled")
				return nil
			}

			db, release, err := d.openDB(cmd)
			if err != nil {
				return err
			}
			defer release()
			repo := repository.NewRepository(db)
			svc := service.NewService(repo, d.Log, d.Config, nil)

			summary, err := seed.Run(cmd.Context(), repo, svc)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %d users and %d posts\n", summary.Users, summary.Posts)
			fmt.Fprintf(out, "Every sample user's password is %q\n", seed.Password)
			return nil
		},
	}
}

func SecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "secret",
		Short: "Generate a random session secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := utils.GenerateSecret(32)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "SECRET_KEY=%s\n", secret)
			return nil
		},
	}
}

func DBInfoCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "dbinfo",
		Short: "Show the parsed database connection settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p, err := backup.ParseConnString(d.Config.DBConn)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "=== Parsed Database Connection Details ===")
			fmt.Fprintf(out, "DB_USER: %s\n", p.User)
			fmt.Fprintf(out, "DB_HOST: %s\n", p.Host)
			fmt.Fprintf(out, "DB_PORT: %s\n", p.Port)
			fmt.Fprintf(out, "DB_NAME: %s\n", p.Database)
			fmt.Fprintf(out, "DB_PASSWORD: %s\n", p.MaskedPassword())
			fmt.Fprintln(out, "\n=== Manual Export Commands ===")
			for _, line := range p.ExportLines() {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
