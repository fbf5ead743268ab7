package sal

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the pluggable sink for environmental warnings: clipped
// attenuation, coincident source/receiver, missing HRIR files, unsupported
// sampling rates. Processing always continues after a warning; only
// FatalError aborts.
type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards every message; useful in tests and benchmarks where
// a warning is expected and would otherwise be noise.
type NopLogger struct{}

func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// CharmLogger adapts github.com/charmbracelet/log to the Logger interface,
// giving callers a leveled, colorized default logger for free.
type CharmLogger struct {
	logger *charmlog.Logger
}

// NewCharmLogger constructs a CharmLogger writing to stderr at the info
// level by default.
func NewCharmLogger() *CharmLogger {
	return &CharmLogger{logger: charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "sal",
	})}
}

func (c *CharmLogger) Warnf(format string, args ...any) {
	c.logger.Warnf(format, args...)
}

func (c *CharmLogger) Errorf(format string, args ...any) {
	c.logger.Errorf(format, args...)
}
