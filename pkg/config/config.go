package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Env string

	Database  DatabaseConfig
	Log       LogConfig
	Portal    PortalConfig
	Gradebook GradebookConfig
	Exports   ExportsConfig
	Metrics   MetricsConfig
}

type DatabaseConfig struct {
	Driver       string
	Path         string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type LogConfig struct {
	Level  string
	Format string
}

// PortalConfig points at the school portal the roster is scraped from.
type PortalConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Username string
}

// GradebookConfig locates the teacher workbook and its import defaults.
type GradebookConfig struct {
	Path         string
	DefaultScale string
	RetakeSheet  string
}

// ExportsConfig controls where contact exports land.
type ExportsConfig struct {
	Dir  string
	CSV  bool
	Keep int
}

// MetricsConfig enables the Prometheus textfile written after a run.
type MetricsConfig struct {
	Textfile string
}

// Load reads configuration from .env in the working directory and the environment.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile reads configuration from the given env file, if present, and the
// environment. Environment variables win.
func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load(path)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Database = DatabaseConfig{
		Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
		Path:         v.GetString("DB_PATH"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Portal = PortalConfig{
		BaseURL:  strings.TrimRight(v.GetString("PORTAL_BASE_URL"), "/"),
		Timeout:  parseDuration(v.GetString("PORTAL_TIMEOUT"), 30*time.Second),
		Username: v.GetString("PORTAL_USERNAME"),
	}

	cfg.Gradebook = GradebookConfig{
		Path:         v.GetString("GRADEBOOK_PATH"),
		DefaultScale: v.GetString("GRADEBOOK_DEFAULT_SCALE"),
		RetakeSheet:  v.GetString("GRADEBOOK_RETAKE_SHEET"),
	}

	cfg.Exports = ExportsConfig{
		Dir:  v.GetString("EXPORTS_DIR"),
		CSV:  v.GetBool("EXPORTS_CSV"),
		Keep: v.GetInt("EXPORTS_KEEP"),
	}

	cfg.Metrics = MetricsConfig{
		Textfile: v.GetString("METRICS_TEXTFILE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_PATH", "contacteur.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gradesync")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("PORTAL_BASE_URL", "https://french.compassforsuccess.ca")
	v.SetDefault("PORTAL_TIMEOUT", "30s")
	v.SetDefault("PORTAL_USERNAME", "")

	v.SetDefault("GRADEBOOK_PATH", "evaluations.xlsx")
	v.SetDefault("GRADEBOOK_DEFAULT_SCALE", "Level")
	v.SetDefault("GRADEBOOK_RETAKE_SHEET", "Retakes")

	v.SetDefault("EXPORTS_DIR", "./exports")
	v.SetDefault("EXPORTS_CSV", false)
	v.SetDefault("EXPORTS_KEEP", 10)

	v.SetDefault("METRICS_TEXTFILE", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

// viper reports a missing explicit config file as a plain fs error.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
