package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"

	"github.com/gostonefire/tripindex/config"
)

// New - Builds a logger from the log configuration.
// Records go to w in the configured format, and additionally as JSON to cfg.File when set.
// It returns:
//   - logger is the configured logger
//   - closer closes the log file if one was opened, it is never nil
//   - err is returned for an unknown level or format, or if the log file can't be opened
func New(cfg config.LogConfig, w io.Writer) (logger *slog.Logger, closer func() error, err error) {
	closer = func() error { return nil }

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		err = fmt.Errorf("unknown log format %q", cfg.Format)
		return
	}

	if cfg.File != "" {
		var f *os.File
		f, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			err = fmt.Errorf("open log file: %w", err)
			return
		}
		closer = f.Close
		handler = slogmulti.Fanout(handler, slog.NewJSONHandler(f, opts))
	}

	logger = slog.New(handler)
	return
}

// ParseLevel - Maps a level name (debug, info, warn, error) to a slog.Level, empty means info
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}
