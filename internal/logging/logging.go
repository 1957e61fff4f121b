// Package logging builds the logrus logger shared by the editor and the
// persistence bridge. Nothing here touches the logrus standard logger: the
// logger is created once per process and passed to the components that need it.
package logging

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Options configures New.
type Options struct {
	Level  string    // panic, fatal, error, warn, info, debug, trace
	Format string    // text or json
	Output io.Writer // defaults to logrus' default (stderr) when nil
}

// New returns a configured logger.
func New(opts Options) (*log.Logger, error) {
	logger := log.New()
	if opts.Output != nil {
		logger.SetOutput(opts.Output)
	}

	level := opts.Level
	if level == "" {
		level = "warn"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(opts.Format) {
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format '%s' (must be 'text' or 'json')", opts.Format)
	}

	return logger, nil
}

// Component returns an entry tagged with the component name.
func Component(logger *log.Logger, name string) *log.Entry {
	return logger.WithField("component", name)
}

// Discard returns a logger that drops everything. Used by tests and by
// components constructed without a logger.
func Discard() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}
