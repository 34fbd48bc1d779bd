package bootstrap

import (
	"os"
	"syscall"
	"time"

	"github.com/kbukum/tokengate/logger"
)

// Option configures an App in NewApp.
type Option func(*settings)

type settings struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	signals         []os.Signal
}

func newSettings(opts []Option) settings {
	s := settings{
		gracefulTimeout: DefaultGracefulTimeout,
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger replaces the logger built from the config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithGracefulTimeout bounds how long shutdown may take. Non-positive values
// are ignored.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.gracefulTimeout = d
		}
	}
}

// WithSignals replaces the shutdown signals (default SIGINT and SIGTERM).
func WithSignals(sig ...os.Signal) Option {
	return func(s *settings) { s.signals = sig }
}
