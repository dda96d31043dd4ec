package command

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/lmittmann/tint"
)

// levelSilent is above every level a logger emits.
const levelSilent = slog.Level(100)

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "silent":
		return levelSilent, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (debug|info|warn|error|silent)", s)
	}
}

func rewriteLogLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) != 0 {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	var text string
	switch {
	case level < slog.LevelInfo:
		text = "DEBUG"
	case level == slog.LevelInfo:
		text = color.GreenString("INFO")
	case level == slog.LevelWarn:
		text = color.YellowString("WARN")
	case level == slog.LevelError:
		text = color.RedString("ERROR")
	default:
		text = level.String()
	}
	a.Value = slog.StringValue(text)
	return a
}

// newHandler builds the slog handler for format "text" (tint) or "json".
func newHandler(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return tint.NewHandler(w, &tint.Options{
			Level:       level,
			TimeFormat:  time.DateTime,
			ReplaceAttr: rewriteLogLevel,
			NoColor:     color.NoColor,
		}), nil
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (text|json)", format)
	}
}

// newLoggers returns the CLI's slog logger and the logr view of the same
// handler handed to the compiler. logr V(n) maps to slog level -n, so
// compiler detail shows up at debug level.
func newLoggers(w io.Writer, format, level string) (*slog.Logger, logr.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, logr.Logger{}, err
	}
	h, err := newHandler(w, format, lvl)
	if err != nil {
		return nil, logr.Logger{}, err
	}
	return slog.New(h), logr.FromSlogHandler(h), nil
}
