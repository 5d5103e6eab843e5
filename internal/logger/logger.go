package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Init replaces zap's global logger. Development gets the human readable
// console encoder, every other environment JSON.
func Init(environment string) error {
	var (
		l   *zap.Logger
		err error
	)
	switch environment {
	case "development", "dev", "local":
		l, err = zap.NewDevelopment()
	default:
		l, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("zap.New -> %w", err)
	}

	zap.ReplaceGlobals(l.With(zap.String("env", environment)))

	return nil
}
