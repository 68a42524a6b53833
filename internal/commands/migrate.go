package commands

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dan9191/blog-service/internal/migrations"
	"github.com/Dan9191/blog-service/internal/models"
)

func InitCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize migration tracking table in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, release, err := d.openDB(cmd)
			if err != nil {
				return err
			}
			defer release()
			if err := os.MkdirAll(d.Config.MigrationsPath, 0755); err != nil {
				return fmt.Errorf("failed to create migrations directory: %w", err)
			}
			if err := migrations.NewMigrator(db, d.Log).Init(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migration system initialized successfully in %s\n", d.Config.MigrationsPath)
			return nil
		},
	}
}

func CreateCmd(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new migration file from model changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			empty, _ := cmd.Flags().GetBool("empty")
			out := cmd.OutOrStdout()

			db, release, err := d.openDB(cmd)
			if err != nil {
				return err
			}
			defer release()
			changes, err := migrations.Diff(db.WithContext(cmd.Context()), models.All()...)
			if err != nil {
				return err
			}
			if len(changes) == 0 && !empty {
				fmt.Fprintln(out, "No schema changes detected")
				return nil
			}

			path, err := migrations.WriteFile(d.Config.MigrationsPath, args[0], changes, d.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created migration %s\n", path)
			for _, c := range changes {
				fmt.Fprintf(out, "  - %s\n", c)
			}
			fmt.Fprintln(out, "Rebuild blogctl to include it, then run: blogctl upgrade")
			return nil
		},
	}
	cmd.Flags().Bool("empty", false, "Write a migration even when no changes are detected")
	return cmd
}

func UpgradeCmd(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "upgrade",
		Aliases: []string{"up"},
		Short:   "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			out := cmd.OutOrStdout()

			db, release, err := d.openDB(cmd)
			if err != nil {
				return err
			}
			defer release()
			m := migrations.NewMigrator(db, d.Log)

			pending, err := m.Pending(cmd.Context())
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(out, "Database is already up to date")
				return nil
			}
			if dryRun {
				fmt.Fprintln(out, "Pending migrations:")
				for _, mg := range pending {
					fmt.Fprintf(out, "  %s  %s\n", mg.Version, mg.Name)
				}
				return nil
			}

			yes, _ := cmd.Flags().GetBool("yes")
			if !yes && !prompter(cmd)(fmt.Sprintf("Apply %d pending migration(s)?", len(pending))) {
				fmt.Fprintln(out, "Upgrade cancelled")
				return nil
			}

			applied, err := m.Up(cmd.Context())
			for _, mg := range applied {
				fmt.Fprintf(out, "Applied %s  %s\n", mg.Version, mg.Name)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Upgrade complete: %d migration(s) applied\n", len(applied))
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, "List pending migrations without applying them")
	cmd.Flags().BoolP("yes", "y", false, "Apply without asking for confirmation")
	return cmd
}

func DowngradeCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "downgrade <target>",
		Short: "Revert migrations down to a target revision",
		Long: `Reverts applied migrations, newest first, until the target is the current revision.
The target may be a version or unique version prefix, "prev" or "-N" for relative
steps, or "base" to revert everything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			db, release, err := d.openDB(cmd)
			if err != nil {
				return err
			}
			defer release()
			m := migrations.NewMigrator(db, d.Log)

			target, err := m.ResolveTarget(cmd.Context(), args[0])
			if errors.Is(err, migrations.ErrNoMigrations) {
				fmt.Fprintln(out, "No migrations have been applied")
				return nil
			}
			if err != nil {
				return err
			}
			current, err := m.Current(cmd.Context())
			if err != nil {
				return err
			}
			if current == target {
				fmt.Fprintf(out, "Already at revision %s\n", displayRevision(target))
				return nil
			}

			fmt.Fprintf(out, "Current revision: %s\n", displayRevision(current))
			fmt.Fprintf(out, "Target revision:  %s\n", displayRevision(target))
			ask := prompter(cmd)
			if !ask("Are you sure?") || !ask("This may cause DATA LOSS. Continue?") {
				fmt.Fprintln(out, "Downgrade cancelled")
				return nil
			}

			reverted, err := m.DownTo(cmd.Context(), args[0])
			for _, mg := range reverted {
				fmt.Fprintf(out, "Reverted %s  %s\n", mg.Version, mg.Name)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Downgrade complete, now at %s\n", displayRevision(target))
			return nil
		},
	}
}

func StatusCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show status of all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			db, release, err := d.openDB(cmd)
			if err != nil {
				return err
			}
			defer release()
			m := migrations.NewMigrator(db, d.Log)

			records, err := m.Applied(cmd.Context())
			if err != nil {
				return err
			}
			applied := make(map[string]bool, len(records))
			current := ""
			for _, r := range records {
				applied[r.Version] = true
				current = r.Version
			}

			fmt.Fprintf(out, "Current revision: %s\n", displayRevision(current))
			fmt.Fprintf(out, "Latest revision:  %s\n", displayRevision(m.Latest()))
			if current == m.Latest() {
				fmt.Fprintln(out, "Database is up to date")
			} else {
				fmt.Fprintln(out, "Database needs upgrade")
			}

			fmt.Fprintf(out, "\n%-16s  %-40s  %-8s\n", "Version", "Name", "Status")
			for _, mg := range m.Migrations() {
				status := "Pending"
				if applied[mg.Version] {
					status = "Applied"
				}
				fmt.Fprintf(out, "%-16s  %-40s  %-8s\n", mg.Version, mg.Name, status)
			}

			tables, err := db.WithContext(cmd.Context()).Migrator().GetTables()
			if err != nil {
				return fmt.Errorf("failed to list tables: %w", err)
			}
			tables = userTables(tables)
			sort.Strings(tables)
			fmt.Fprintf(out, "\nTables (%d):\n", len(tables))
			for _, table := range tables {
				columns, err := db.WithContext(cmd.Context()).Migrator().ColumnTypes(table)
				if err != nil {
					return fmt.Errorf("failed to inspect table %s: %w", table, err)
				}
				names := make([]string, 0, 3)
				for i, c := range columns {
					if i == 3 {
						break
					}
					names = append(names, c.Name())
				}
				suffix := ""
				if len(columns) > 3 {
					suffix = ", ..."
				}
				fmt.Fprintf(out, "  %s: %d columns (%s%s)\n", table, len(columns), strings.Join(names, ", "), suffix)
			}

			files, err := migrations.Files(d.Config.MigrationsPath)
			if err != nil || len(files) == 0 {
				fmt.Fprintln(out, "\nNo migration files found")
				return nil
			}
			if len(files) > 5 {
				files = files[len(files)-5:]
			}
			fmt.Fprintln(out, "\nRecent migration files:")
			for _, f := range files {
				fmt.Fprintf(out, "  %s\n", f)
			}
			return nil
		},
	}
}

func HistoryCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show migration history",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			db, release, err := d.openDB(cmd)
			if err != nil {
				return err
			}
			defer release()
			records, err := migrations.NewMigrator(db, d.Log).Applied(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No migrations have been applied")
				return nil
			}

			fmt.Fprintf(out, "%-16s  %-40s  %s\n", "Version", "Name", "Applied At")
			for i := len(records) - 1; i >= 0; i-- {
				r := records[i]
				fmt.Fprintf(out, "%-16s  %-40s  %s\n", r.Version, r.Name, r.AppliedAt.UTC().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func displayRevision(v string) string {
	if v == "" {
		return "base"
	}
	return v
}

// userTables drops sqlite's internal bookkeeping tables
func userTables(tables []string) []string {
	out := tables[:0]
	for _, t := range tables {
		if !strings.HasPrefix(t, "sqlite_") {
			out = append(out, t)
		}
	}
	return out
}
