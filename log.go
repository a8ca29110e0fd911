package skeincoin

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
)

// log is the package logger. It defaults to stderr at info level,
// callers that want different routing can swap it with UseLogger.
var log = btclog.NewBackend(os.Stderr).Logger("CHAN")

func init() {
	log.SetLevel(btclog.LevelInfo)
}

// UseLogger replaces the package logger.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// logError logs a consensus rejection and hands the same message back
// as an error, so every failed check is both reported and returned.
func logError(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	log.Errorf("%v", err)
	return err
}
