package internal

import (
	"io"
	"time"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOutput redirects console output and logs.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *application) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// WithClock overrides the time source used for catalog timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *application) {
		a.now = now
	}
}
