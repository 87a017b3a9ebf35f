package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LogLevelFromString converts a level name to a LogLevel, defaulting to INFO for
// anything unrecognized.
func LogLevelFromString(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// InitializeFromConfig builds a Logger from a LogConfig, e.g. as loaded from a
// filter's YAML configuration file.
func InitializeFromConfig(name string, logConfig LogConfig) (*Logger, error) {
	if logConfig.LogDir != "" {
		if err := os.MkdirAll(logConfig.LogDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %v", err)
		}
	}

	logFile := logConfig.LogFile
	if logFile == "" && logConfig.EnableFile {
		if logConfig.LogDir != "" {
			logFile = filepath.Join(logConfig.LogDir, fmt.Sprintf("%s.log", name))
		} else {
			logFile = fmt.Sprintf("%s.log", name)
		}
	}

	config := Config{
		Level:         LogLevelFromString(logConfig.Level),
		NodeID:        name,
		LogFile:       logFile,
		EnableConsole: logConfig.EnableConsole,
		EnableFile:    logConfig.EnableFile,
	}

	return NewLogger(config), nil
}

// LogConfig mirrors the logging section of a filter's YAML configuration file.
type LogConfig struct {
	Level         string `yaml:"level"`
	EnableConsole bool   `yaml:"enable_console"`
	EnableFile    bool   `yaml:"enable_file"`
	LogFile       string `yaml:"log_file"`
	LogDir        string `yaml:"log_dir"`
}

// Component names used in structured log entries.
const (
	ComponentFilter = "filter"
	ComponentConfig = "config"
	ComponentMain   = "main"
)

// Action names used in structured log entries.
const (
	ActionConstruct = "construct"
	ActionInsert    = "insert"
	ActionEvict     = "evict"
	ActionFull      = "full"
	ActionRemove    = "remove"
)
