package logger_test

import (
	"errors"

	"github.com/bestchoice-b3/b3-daily/pkg/config"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
)

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	log := logger.New(&config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	})

	log.WithFields(map[string]interface{}{
		"symbol": "PETR4",
		"price":  38.12,
	}).Info("Quote fetched")

	log.WithError(errors.New("connection refused")).Warn("Quote fetch failed")
}
