// Package logging builds the zap loggers used by the commands.
package logging

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	ioutils "github.com/Ayushsahu75/mental-healthcare-hub/internal/io"
)

// New returns a production logger at level ("debug", "info", "warn",
// "error"). Output goes to path when set, otherwise to stderr. An empty
// level means info.
//
// Example:
//
//	logger, err := logging.New(settings.LogLevel, settings.LogFile)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
func New(level, path string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = lvl > zapcore.DebugLevel
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	if path != "" {
		if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
		config.Encoding = "json"
		config.OutputPaths = []string{path}
		config.ErrorOutputPaths = []string{path}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
