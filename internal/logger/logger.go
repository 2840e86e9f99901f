package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.Must(zap.NewProduction()).Sugar()

// Init configures the package logger for development.
func Init() {
	InitWithEnv("development")
}

// InitWithEnv builds a JSON logger on stdout. Production logs from info up,
// every other environment includes debug.
func InitWithEnv(env string) {
	cfg := zap.NewProductionConfig()
	if env != "production" {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stdout"}

	l, err := cfg.Build()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	Use(l)
}

// Use replaces the package logger.
func Use(l *zap.Logger) {
	log = l.Sugar()
}

// Sync flushes buffered entries.
func Sync() {
	_ = log.Sync()
}

func Info(msg string, keysAndValues ...any) {
	log.Infow(msg, keysAndValues...)
}

func Infof(format string, v ...any) {
	log.Infof(format, v...)
}

func Warn(msg string, keysAndValues ...any) {
	log.Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...any) {
	log.Errorw(msg, keysAndValues...)
}

func Errorf(format string, v ...any) {
	log.Errorf(format, v...)
}

func Debug(msg string, keysAndValues ...any) {
	log.Debugw(msg, keysAndValues...)
}

func Debugf(format string, v ...any) {
	log.Debugf(format, v...)
}

func Fatalf(format string, v ...any) {
	log.Fatalf(format, v...)
}
