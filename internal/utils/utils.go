package utils

import (
	"log/slog"
	"os"
)

// NewLogger builds the JSON logger every binary shares.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// FailOnError aborts startup on an unrecoverable wiring error.
func FailOnError(logger *slog.Logger, err error, msg string) {
	if err != nil {
		logger.Error(msg, "error", err)
		panic(err)
	}
}
