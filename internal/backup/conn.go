package backup

import (
	"fmt"
	"net/url"
	"strings"
)

// ConnParams are the discrete connection settings pg_dump and psql need
type ConnParams struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	SSLMode  string
}

// ParseConnString accepts postgres:// URLs and key=value DSNs
func ParseConnString(dsn string) (ConnParams, error) {
	p := ConnParams{Host: "localhost", Port: "5432", User: "postgres"}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return p, fmt.Errorf("database connection string is empty")
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return p, fmt.Errorf("error parsing DATABASE_URL: %w", err)
		}
		if h := u.Hostname(); h != "" {
			p.Host = h
		}
		if port := u.Port(); port != "" {
			p.Port = port
		}
		if u.User != nil {
			if name := u.User.Username(); name != "" {
				p.User = name
			}
			p.Password, _ = u.User.Password()
		}
		p.Database = strings.TrimPrefix(u.Path, "/")
		p.SSLMode = u.Query().Get("sslmode")
	} else {
		for _, field := range strings.Fields(dsn) {
			key, value, ok := strings.Cut(field, "=")
			if !ok {
				return p, fmt.Errorf("invalid connection parameter %q", field)
			}
			value = strings.Trim(value, "'")
			switch key {
			case "host":
				p.Host = value
			case "port":
				p.Port = value
			case "dbname":
				p.Database = value
			case "user":
				p.User = value
			case "password":
				p.Password = value
			case "sslmode":
				p.SSLMode = value
			}
		}
	}

	if p.Database == "" {
		return p, fmt.Errorf("database name missing from connection string")
	}
	return p, nil
}

// Env returns the libpq variables that carry secrets and TLS mode, so
// neither appears on the command line.
func (p ConnParams) Env() []string {
	env := []string{"PGPASSWORD=" + p.Password}
	if p.SSLMode != "" {
		env = append(env, "PGSSLMODE="+p.SSLMode)
	}
	return env
}

// MaskedPassword hides the password but keeps its length visible
func (p ConnParams) MaskedPassword() string {
	return strings.Repeat("*", len(p.Password))
}

// ExportLines renders shell export statements for the DB_* variables
func (p ConnParams) ExportLines() []string {
	return []string{
		fmt.Sprintf("export DB_USER=%q", p.User),
		fmt.Sprintf("export DB_PASSWORD=%q", p.Password),
		fmt.Sprintf("export DB_HOST=%q", p.Host),
		fmt.Sprintf("export DB_PORT=%q", p.Port),
		fmt.Sprintf("export DB_NAME=%q", p.Database),
	}
}
