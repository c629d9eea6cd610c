// Package logger wraps log/slog with the loose call convention used across
// the services: trailing arguments may be key/value pairs, bare errors, or
// slog attrs, in any mix.
package logger

import (
	"log/slog"
	"os"
)

var log *slog.Logger = slog.Default()

// Init configures the package logger. Production gets JSON output, everything
// else a text handler with debug level.
func Init(environment string) {
	var handler slog.Handler
	if environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	log = slog.New(handler)
	slog.SetDefault(log)
}

func Info(msg string, args ...any) {
	log.Info(msg, normalize(args)...)
}

func Warn(msg string, args ...any) {
	log.Warn(msg, normalize(args)...)
}

func Error(msg string, args ...any) {
	log.Error(msg, normalize(args)...)
}

// Fatal logs at error level and exits.
func Fatal(msg string, args ...any) {
	log.Error(msg, normalize(args)...)
	os.Exit(1)
}

func normalize(args []any) []any {
	out := make([]any, 0, len(args)*2)

	for i := 0; i < len(args); {
		switch v := args[i].(type) {
		case error:
			out = append(out, "error", v)
			i++
		case slog.Attr:
			out = append(out, v)
			i++
		case string:
			if i+1 < len(args) {
				out = append(out, v, args[i+1])
				i += 2
			} else {
				out = append(out, "detail", v)
				i++
			}
		default:
			out = append(out, "detail", v)
			i++
		}
	}

	return out
}
