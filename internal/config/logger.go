package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger 初始化日志。outputs 为空时写 stderr
func NewLogger(debug bool, outputs ...string) (*zap.Logger, error) {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}
	if len(outputs) > 0 {
		config.OutputPaths = outputs
	}

	return config.Build()
}
