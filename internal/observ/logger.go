package observ

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process-wide zap logger: JSON in production,
// console-friendly everywhere else. An unparseable level falls back to
// info rather than failing startup.
func NewLogger(env, level string) (*zap.Logger, error) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	// Error-level stacktraces only; warn-level ones drown the snapshot
	// pipeline's "skipped malformed record" diagnostics in noise.
	return config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
}
