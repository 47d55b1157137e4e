package commands

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"agentload/internal/config"
	"agentload/internal/logging"
	"agentload/internal/output"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigPath string
	Format     string
	JSON       bool
	LogLevel   string
}

// Flags holds the parsed persistent flags.
var Flags GlobalFlags

// BindFlags registers the persistent flags on the root command.
func BindFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.StringVar(&Flags.ConfigPath, "config", config.DefaultConfigPath(), "Config file")
	pf.StringVar(&Flags.Format, "format", "text", "Output format: text, json or yaml")
	pf.BoolVar(&Flags.JSON, "json", false, "Output in JSON format (same as --format json)")
	pf.StringVar(&Flags.LogLevel, "log-level", "", "Log level override: trace, debug, info, warn, error")
}

// OutputFormat resolves --json and --format. --json wins.
func (f GlobalFlags) OutputFormat() (output.Format, error) {
	if f.JSON {
		return output.FormatJSON, nil
	}
	return output.ParseFormat(f.Format)
}

// Runtime is what a command needs after flags and config are resolved.
type Runtime struct {
	Config *config.Config
	Logger zerolog.Logger
	Format output.Format
}

// LoadRuntime resolves the parsed Flags into a Runtime.
func LoadRuntime() (*Runtime, error) {
	return newRuntime(Flags)
}

func newRuntime(flags GlobalFlags) (*Runtime, error) {
	format, err := flags.OutputFormat()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	if flags.LogLevel != "" {
		level := strings.ToLower(flags.LogLevel)
		if _, err := zerolog.ParseLevel(level); err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
		cfg.Logging.Level = level
	}

	return &Runtime{
		Config: cfg,
		Logger: logging.Setup(cfg.Logging, nil),
		Format: format,
	}, nil
}
