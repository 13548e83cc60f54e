package config

import (
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger: JSON at info level in production,
// a colored console logger at debug level otherwise.  LOG_LEVEL overrides
// the level.
func NewLogger(cfg Config) (*zap.Logger, error) {
    zc := zap.NewDevelopmentConfig()
    zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
    if cfg.IsProd() {
        zc = zap.NewProductionConfig()
        zc.EncoderConfig.TimeKey = "ts"
        zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
    }
    if lvl := envStr("LOG_LEVEL", ""); lvl != "" {
        l, err := zapcore.ParseLevel(lvl)
        if err != nil {
            return nil, err
        }
        zc.Level = zap.NewAtomicLevelAt(l)
    }
    return zc.Build(zap.Fields(zap.String("service", "bookmyspace")))
}
