package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	mu    sync.RWMutex
	sugar = zap.NewNop().Sugar()
)

// Init builds the process logger. Production environments log JSON at info
// level, everything else logs human-readable output at debug level.
func Init(env string) {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewExample()
	}

	mu.Lock()
	sugar = l.Sugar()
	mu.Unlock()
}

// Set replaces the process logger, mainly for tests.
func Set(l *zap.Logger) {
	mu.Lock()
	sugar = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
	mu.Unlock()
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Sync() {
	_ = get().Sync()
}

func Debug(msg string, keysAndValues ...interface{}) {
	get().Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...interface{}) {
	get().Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	get().Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...interface{}) {
	get().Errorw(msg, keysAndValues...)
}

func Fatal(msg string, keysAndValues ...interface{}) {
	get().Fatalw(msg, keysAndValues...)
}
