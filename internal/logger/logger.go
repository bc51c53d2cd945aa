package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger: JSON in production, colored console
// otherwise. The returned sync func flushes buffered entries on shutdown.
func New(appEnv string) (*zap.Logger, func() error) {
	if appEnv == "production" {
		log := zap.Must(zap.NewProduction())
		return log, log.Sync
	}
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	log := zap.Must(config.Build())
	return log, log.Sync
}
