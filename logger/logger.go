package logger

import (
	"os"

	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

// Init builds the global sugared logger. Set YAMB_ENV=development for
// console-friendly output.
func Init() {
	var (
		logger *zap.Logger
		err    error
	)
	if os.Getenv("YAMB_ENV") == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}

// Sync flushes any buffered log entries. Call it before process exit.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
