// Package log holds the process-wide zap logger for the game service.
package log

import (
	"os"

	"go.uber.org/zap"
)

// L is the shared logger. Setup replaces it wholesale; callers always go
// through the package variable.
var L *zap.Logger

func init() {
	Setup(os.Getenv("APP_ENV"))
}

// Setup builds the global logger for the given environment. Anything other
// than "production" gets the development console encoder at debug level.
func Setup(env string) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.OutputPaths = []string{"stdout"}

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	L = l
}

// Round tags an entry with the round it concerns.
func Round(number uint64) zap.Field {
	return zap.Uint64("round_number", number)
}
