package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger логгер сервиса поверх zap с printf-style API
type Logger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
	file  *os.File
}

// New создает логгер, который пишет в stdout и (если указан путь) в файл.
// level: debug, info, warn, error. Пустое или неизвестное значение трактуется как info.
func New(filePath, level string) (*Logger, error) {
	atomicLevel := zap.NewAtomicLevelAt(parseLevel(level))

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stdout), atomicLevel),
	}

	var file *os.File
	if filePath != "" {
		if dir := filepath.Dir(filePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("logger: create log dir: %w", err)
			}
		}

		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logger: open log file: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(f), atomicLevel))
	}

	base := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))

	return &Logger{
		base:  base,
		sugar: base.Sugar(),
		file:  file,
	}, nil
}

// NewNop создает логгер, который ничего не пишет (для тестов)
func NewNop() *Logger {
	base := zap.NewNop()
	return &Logger{base: base, sugar: base.Sugar()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Fatal логирует и завершает процесс
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.sugar.Fatalf(format, v...)
}

// Zap возвращает исходный *zap.Logger для библиотек, которым нужен структурный логгер
func (l *Logger) Zap() *zap.Logger {
	return l.base
}

// Close сбрасывает буферы и закрывает файл
func (l *Logger) Close() error {
	_ = l.base.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
