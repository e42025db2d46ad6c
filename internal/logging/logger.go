// Package logging builds the shared zap.Logger both service binaries
// use, switching encoder by environment: a human-readable console format
// for local/development, JSON for every other environment.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger named for the given service, at the given
// level, using a colorized development encoder for "local"/"development"
// and a JSON production encoder otherwise.
func New(environment, level, name string) (*zap.Logger, error) {
	var zapCfg zap.Config

	if environment == "local" || environment == "development" {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named(name), nil
}
