package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Backend names a Logger implementation.
type Backend string

const (
	BackendSlog    Backend = "slog"
	BackendZap     Backend = "zap"
	BackendZerolog Backend = "zerolog"
)

// Options configures New.
type Options struct {
	Backend Backend
	Level   string // debug, info, warn, error
	JSON    bool   // slog only; zap and zerolog always emit JSON
}

// New builds a Logger writing to w.
func New(w io.Writer, opts Options) (Logger, error) {
	level := strings.ToLower(opts.Level)
	if level == "" {
		level = "info"
	}

	switch opts.Backend {
	case BackendSlog, "":
		var sl slog.Level
		if err := sl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		ho := &slog.HandlerOptions{Level: sl}
		var h slog.Handler = slog.NewTextHandler(w, ho)
		if opts.JSON {
			h = slog.NewJSONHandler(w, ho)
		}
		return NewSlogLogger(slog.New(h)), nil

	case BackendZap:
		zl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		core := zapcore.NewCore(enc, zapcore.AddSync(w), zl)
		return NewZapLogger(zap.New(core)), nil

	case BackendZerolog:
		zl, err := zerolog.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		return NewZerologLogger(zerolog.New(w).Level(zl).With().Timestamp().Logger()), nil

	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
