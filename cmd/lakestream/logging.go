package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/olist-lakehouse/lakestream/internal/utils"
)

var errInvalidLogLevel = errors.New("invalid log level")

func newConsoleHandler(level slog.Leveler) slog.Handler {
	return tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return level, fmt.Errorf("%w %q", errInvalidLogLevel, s)
	}
	return level, nil
}

// newLogger logs to stdout and, when logFile is set, to a size rotated file
// as well. The returned close func releases the file.
func newLogger(levelName, logFile string) (*slog.Logger, func() error, error) {
	level, err := parseLevel(levelName)
	if err != nil {
		return nil, nil, err
	}

	console := newConsoleHandler(level)
	if logFile == "" {
		return slog.New(console), func() error { return nil }, nil
	}

	if err := utils.EnsureParent(logFile); err != nil {
		return nil, nil, fmt.Errorf("log dir: %w", err)
	}
	rotating := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    50, // MiB
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	}
	file := slog.NewTextHandler(rotating, &slog.HandlerOptions{Level: level})

	return slog.New(utils.NewMultiLogHandler(console, file)), rotating.Close, nil
}

func newRunID() string {
	return uuid.NewString()
}
