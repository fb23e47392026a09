package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/grammarviz/internal/errdef"
)

// Config selects where logs go. The TUI owns the terminal, so interactive
// runs only log when File is set; headless commands may use Stderr.
type Config struct {
	File   string
	Level  string
	Debug  bool
	Stderr bool
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.File) != "" || c.Stderr
}

// New builds a JSON logger for cfg, or a no-op logger when nothing is
// configured.
func New(cfg Config) (*zap.Logger, error) {
	if !cfg.Enabled() {
		return zap.NewNop(), nil
	}
	level, err := parseLevel(cfg)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Sampling = nil
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = nil
	zc.ErrorOutputPaths = nil
	if path := strings.TrimSpace(cfg.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errdef.Wrap(errdef.CodeFilesystem, err, "create log directory")
		}
		zc.OutputPaths = append(zc.OutputPaths, path)
		zc.ErrorOutputPaths = append(zc.ErrorOutputPaths, path)
	}
	if cfg.Stderr {
		zc.OutputPaths = append(zc.OutputPaths, "stderr")
		zc.ErrorOutputPaths = append(zc.ErrorOutputPaths, "stderr")
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeConfig, err, "build logger")
	}
	return logger, nil
}

func parseLevel(cfg Config) (zapcore.Level, error) {
	if cfg.Debug {
		return zapcore.DebugLevel, nil
	}
	raw := strings.TrimSpace(cfg.Level)
	if raw == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(raw)
	if err != nil {
		return zapcore.InfoLevel, errdef.New(errdef.CodeConfig, "invalid log level %q", raw)
	}
	return level, nil
}

// Sync flushes l, ignoring the errors stderr and pipes return on some
// platforms.
func Sync(l *zap.Logger) {
	if l == nil {
		return
	}
	if err := l.Sync(); err != nil && !isIgnorableSync(err) {
		fmt.Fprintf(os.Stderr, "grammarviz: flush log: %v\n", err)
	}
}

func isIgnorableSync(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") ||
		strings.Contains(msg, "inappropriate ioctl")
}
