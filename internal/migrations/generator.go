package migrations

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"

	"gorm.io/gorm"
)

// ChangeKind is the kind of schema difference the generator can express
type ChangeKind int

const (
	CreateTable ChangeKind = iota
	AddColumn
)

// Change is one difference between a model and the live schema
type Change struct {
	Kind   ChangeKind
	Table  string
	Model  string // Go type name in the models package
	Field  string // Go field name, AddColumn only
	Column string
}

func (c Change) String() string {
	if c.Kind == CreateTable {
		return "create table " + c.Table
	}
	return fmt.Sprintf("add column %s.%s", c.Table, c.Column)
}

// Diff compares models against the connected database. Only additive
// changes are detected; drops and type changes need a hand-written migration.
func Diff(db *gorm.DB, models ...interface{}) ([]Change, error) {
	migrator := db.Migrator()
	var changes []Change
	for _, model := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		s := stmt.Schema

		if !migrator.HasTable(model) {
			changes = append(changes, Change{Kind: CreateTable, Table: s.Table, Model: s.Name})
			continue
		}
		for _, dbName := range s.DBNames {
			field := s.FieldsByDBName[dbName]
			if field == nil || field.IgnoreMigration {
				continue
			}
			if !migrator.HasColumn(model, dbName) {
				changes = append(changes, Change{
					Kind:   AddColumn,
					Table:  s.Table,
					Model:  s.Name,
					Field:  field.Name,
					Column: dbName,
				})
			}
		}
	}
	return changes, nil
}

var migrationNameRe = regexp.MustCompile(`^[a-z0-9_]+$`)

// NormalizeName turns free text into a snake_case migration name
func NormalizeName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}), "_")
	if name == "" || !migrationNameRe.MatchString(name) {
		return "", fmt.Errorf("migration name must contain letters or digits")
	}
	return name, nil
}

var migrationTemplate = template.Must(template.New("migration").Parse(`package migrations

import (
	"gorm.io/gorm"
{{- if .Changes}}

	"github.com/Dan9191/blog-service/internal/models"
{{- end}}
)

func init() {
	Register(&Migration{
		Version: "{{.Version}}",
		Name:    "{{.Name}}",
		Up: func(tx *gorm.DB) error {
{{- range .Changes}}
{{- if eq .Kind 0}}
			if err := tx.Migrator().CreateTable(&models.{{.Model}}{}); err != nil {
				return err
			}
{{- else}}
			if err := tx.Migrator().AddColumn(&models.{{.Model}}{}, "{{.Field}}"); err != nil {
				return err
			}
{{- end}}
{{- end}}
			return nil
		},
		Down: func(tx *gorm.DB) error {
{{- range .Reversed}}
{{- if eq .Kind 0}}
			if err := tx.Migrator().DropTable("{{.Table}}"); err != nil {
				return err
			}
{{- else}}
			if err := tx.Exec(` + "`" + `ALTER TABLE {{.Table}} DROP COLUMN {{.Column}}` + "`" + `).Error; err != nil {
				return err
			}
{{- end}}
{{- end}}
			return nil
		},
	})
}
`))

// Render produces the Go source of a migration file
func Render(version, name string, changes []Change) ([]byte, error) {
	reversed := make([]Change, len(changes))
	for i, c := range changes {
		reversed[len(changes)-1-i] = c
	}

	var buf bytes.Buffer
	err := migrationTemplate.Execute(&buf, struct {
		Version  string
		Name     string
		Changes  []Change
		Reversed []Change
	}{version, name, changes, reversed})
	if err != nil {
		return nil, fmt.Errorf("failed to render migration: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format migration: %w", err)
	}
	return src, nil
}

// WriteFile renders a migration into dir and returns its path
func WriteFile(dir, name string, changes []Change, now time.Time) (string, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return "", err
	}
	version := now.UTC().Format(VersionFormat)

	src, err := Render(version, name, changes)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create migrations directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.go", version, name))
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("migration file already exists: %s", path)
	}
	if err := os.WriteFile(path, src, 0644); err != nil {
		return "", fmt.Errorf("failed to create migration file: %w", err)
	}
	return path, nil
}

// Files lists migration source files in dir, oldest first
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		if len(name) > len(VersionFormat) && name[len(VersionFormat)] == '_' {
			files = append(files, name)
		}
	}
	return files, nil
}
