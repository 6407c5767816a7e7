package config

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// InitLogger builds the process-wide logger. Production gets JSON output,
// everything else gets the human-readable development encoder.
func InitLogger() *zap.Logger {
	loggerOnce.Do(func() {
		var err error
		if os.Getenv("APP_ENV") == "production" {
			logger, err = zap.NewProduction()
		} else {
			logger, err = zap.NewDevelopment()
		}
		if err != nil {
			panic(err)
		}
	})
	return logger
}

// GetLogger returns the shared logger, initializing it on first use.
func GetLogger() *zap.Logger {
	return InitLogger()
}
