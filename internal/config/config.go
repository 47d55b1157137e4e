package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"agentload/internal/stats"
)

// Config holds the complete application configuration
type Config struct {
	Scan    ScanConfig    `mapstructure:"scan"`
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
}

// ScanConfig controls discovery and aggregation
type ScanConfig struct {
	ProjectsDir string `mapstructure:"projects_dir"`
	Extension   string `mapstructure:"extension"`
	Workers     int    `mapstructure:"workers"`
	TopProjects int    `mapstructure:"top_projects"`
	Timezone    string `mapstructure:"timezone"` // IANA name, empty = local
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// ServerConfig defines the serve command
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	RescanInterval string `mapstructure:"rescan_interval"`
	RescanSchedule string `mapstructure:"rescan_schedule"` // cron spec, overrides rescan_interval
	Watch          bool   `mapstructure:"watch"`
	Debounce       string `mapstructure:"debounce"`
}

// EnvPrefix is the prefix for environment overrides, e.g. AGENTLOAD_SCAN_WORKERS.
const EnvPrefix = "AGENTLOAD"

// DefaultConfigPath returns ~/.agentload/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".agentload", "config.yaml")
	}
	return filepath.Join(home, ".agentload", "config.yaml")
}

// Load loads configuration from file and environment variables.
// A missing file is not an error; defaults and environment apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Scan.ProjectsDir = expandHome(config.Scan.ProjectsDir)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	projectsDir, err := stats.DefaultProjectsDir()
	if err != nil {
		projectsDir = filepath.Join("~", ".claude", "projects")
	}

	v.SetDefault("scan.projects_dir", projectsDir)
	v.SetDefault("scan.extension", stats.DefaultExtension)
	v.SetDefault("scan.workers", runtime.NumCPU())
	v.SetDefault("scan.top_projects", stats.DefaultTopProjects)
	v.SetDefault("scan.timezone", "")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.addr", "127.0.0.1:7788")
	v.SetDefault("server.rescan_interval", "5m")
	v.SetDefault("server.rescan_schedule", "")
	v.SetDefault("server.watch", true)
	v.SetDefault("server.debounce", "2s")
}

// validate checks the configuration for invalid values
func validate(config *Config) error {
	if config.Scan.ProjectsDir == "" {
		return fmt.Errorf("scan.projects_dir must not be empty")
	}
	if config.Scan.Extension == "" {
		return fmt.Errorf("scan.extension must not be empty")
	}
	if config.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers must be at least 1, got %d", config.Scan.Workers)
	}
	if config.Scan.TopProjects < 1 {
		return fmt.Errorf("scan.top_projects must be at least 1, got %d", config.Scan.TopProjects)
	}
	if _, err := config.Location(); err != nil {
		return err
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(config.Logging.Level)); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch config.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", config.Logging.Format)
	}

	for key, value := range map[string]string{
		"server.rescan_interval": config.Server.RescanInterval,
		"server.debounce":        config.Server.Debounce,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}

	if config.Server.RescanSchedule != "" {
		if _, err := cron.ParseStandard(config.Server.RescanSchedule); err != nil {
			return fmt.Errorf("server.rescan_schedule: %w", err)
		}
	}

	return nil
}

// Location resolves scan.timezone; empty means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Scan.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Scan.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scan.timezone: %w", err)
	}
	return loc, nil
}

// RescanInterval returns the parsed server.rescan_interval.
func (c *Config) RescanInterval() time.Duration {
	return parseDuration(c.Server.RescanInterval, 5*time.Minute)
}

// RescanSchedule returns the cron spec for background rescans.
func (c *Config) RescanSchedule() string {
	if c.Server.RescanSchedule != "" {
		return c.Server.RescanSchedule
	}
	return "@every " + c.RescanInterval().String()
}

// Debounce returns the parsed server.debounce.
func (c *Config) Debounce() time.Duration {
	return parseDuration(c.Server.Debounce, 2*time.Second)
}

// Engine builds a scan engine from the configuration.
func (c *Config) Engine(logger zerolog.Logger) *stats.Engine {
	loc, err := c.Location()
	if err != nil {
		loc = time.Local
	}
	return &stats.Engine{
		Root:      c.Scan.ProjectsDir,
		Extension: c.Scan.Extension,
		Workers:   c.Scan.Workers,
		TopN:      c.Scan.TopProjects,
		Location:  loc,
		Logger:    logger,
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return fallback
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
