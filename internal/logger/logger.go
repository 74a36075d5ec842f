// Package logger builds the application's hclog logger.
package logger

import (
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/spectag/spectag/internal/config"
)

// New creates a named hclog.Logger. The level comes from the SPECTAG_LOG_LEVEL
// environment variable when set, otherwise from the configuration; INFO is the
// default. Logs go to stderr so stdout stays clean for command output and the
// MCP stdio transport.
func New(cfg *config.Config, name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		Output:      os.Stderr,
		Level:       determineLevel(cfg),
		DisableTime: true,
	})
}

func determineLevel(cfg *config.Config) hclog.Level {
	if env := os.Getenv("SPECTAG_LOG_LEVEL"); env != "" {
		return parseLevel(env)
	}
	if cfg != nil {
		return parseLevel(cfg.Logger.Level)
	}
	return hclog.Info
}

func parseLevel(s string) hclog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}
