package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/Dan9191/blog-service/internal/utils"
)

// Config holds application configuration
type Config struct {
	Port     string
	DBConn   string
	LogLevel string

	DBConnectTimeout  time.Duration
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration
	DBMaxOpenConns    int
	DBMaxIdleConns    int

	SessionSecret          string
	SessionSecretGenerated bool
	SessionTTL             time.Duration
	SessionCookieSecure    bool

	DefaultPerPage int
	MaxPerPage     int
	FeedSize       int

	MigrateOnStart                 bool
	CreateSchemaOnMigrationFailure bool
	MigrationsPath                 string
	BackupDir                      string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBConn:         databaseURL(),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		SessionSecret:  getEnv("SECRET_KEY", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "internal/migrations"),
		BackupDir:      getEnv("BACKUP_DIR", "."),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", "noreply@blog.local"),
	}

	var err error
	if cfg.DBConnectTimeout, err = getDuration("DB_CONNECT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.DBConnMaxLifetime, err = getDuration("DB_CONN_MAX_LIFETIME", 300*time.Second); err != nil {
		return nil, err
	}
	if cfg.DBConnMaxIdleTime, err = getDuration("DB_CONN_MAX_IDLE_TIME", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.DBMaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.DBMaxIdleConns, err = getInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionCookieSecure, err = getBool("SESSION_COOKIE_SECURE", false); err != nil {
		return nil, err
	}
	if cfg.DefaultPerPage, err = getInt("DEFAULT_PER_PAGE", 10); err != nil {
		return nil, err
	}
	if cfg.MaxPerPage, err = getInt("MAX_PER_PAGE", 100); err != nil {
		return nil, err
	}
	if cfg.FeedSize, err = getInt("FEED_SIZE", 20); err != nil {
		return nil, err
	}
	if cfg.MigrateOnStart, err = getBool("MIGRATE_ON_START", true); err != nil {
		return nil, err
	}
	if cfg.CreateSchemaOnMigrationFailure, err = getBool("CREATE_SCHEMA_ON_MIGRATION_FAILURE", false); err != nil {
		return nil, err
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.MaxPerPage < 1 {
		return nil, fmt.Errorf("MAX_PER_PAGE must be positive, got %d", cfg.MaxPerPage)
	}
	if cfg.DefaultPerPage < 1 {
		return nil, fmt.Errorf("DEFAULT_PER_PAGE must be positive, got %d", cfg.DefaultPerPage)
	}
	if cfg.DefaultPerPage > cfg.MaxPerPage {
		cfg.DefaultPerPage = cfg.MaxPerPage
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.SessionSecret == "" {
		secret, err := utils.GenerateSecret(32)
		if err != nil {
			return nil, err
		}
		cfg.SessionSecret = secret
		cfg.SessionSecretGenerated = true
	}

	return cfg, nil
}

// databaseURL resolves the connection string. A whole URL wins over the
// discrete DB_* variables.
func databaseURL() string {
	if v := getEnv("DATABASE_URL", ""); v != "" {
		return v
	}
	if v := getEnv("POSTGRES_URL", ""); v != "" {
		return v
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("DB_USER", "postgres"), getEnv("DB_PASSWORD", "password")),
		Host:     getEnv("DB_HOST", "localhost") + ":" + getEnv("DB_PORT", "5432"),
		Path:     "/" + getEnv("DB_NAME", "blog"),
		RawQuery: url.Values{"sslmode": {getEnv("DB_SSLMODE", "disable")}}.Encode(),
	}
	return u.String()
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultVal bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// getDuration accepts Go durations ("90s") or a bare number of seconds
func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
