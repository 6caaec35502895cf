package phtunnel

import (
	"log/slog"
	"os"

	phuslog "github.com/phuslu/log"

	"github.com/caasmo/phtunnel/core"
	"github.com/caasmo/phtunnel/router/httprouter"
	"github.com/caasmo/phtunnel/router/servemux"
)

func WithRouterServeMux() core.Option {
	r := servemux.New()
	return core.WithRouter(r)
}

func WithRouterHttprouter() core.Option {
	r := httprouter.New()
	return core.WithRouter(r)
}

// DefaultLoggerOptions provides default settings for slog handlers.
// Level: Info, Removes the time attribute from output.
var DefaultLoggerOptions = &slog.HandlerOptions{
	Level: slog.LevelInfo,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	},
}

// WithPhusLogger configures slog with phuslu/log's JSON handler on stderr.
// Uses DefaultLoggerOptions if opts is nil.
func WithPhusLogger(opts *slog.HandlerOptions) core.Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	logger := slog.New(phuslog.SlogNewJSONHandler(os.Stderr, opts))
	return core.WithLogger(logger)
}

// WithTextLogger configures slog with the standard library's text handler.
func WithTextLogger(opts *slog.HandlerOptions) core.Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	return core.WithLogger(logger)
}

// loggerOptions returns handler options at the configured level.
func loggerOptions(level slog.Level) *slog.HandlerOptions {
	opts := *DefaultLoggerOptions
	opts.Level = level
	return &opts
}
