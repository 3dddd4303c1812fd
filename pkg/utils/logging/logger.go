package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where logs go and how verbose each output is
type Options struct {
	// Dir holds the JSON log files. Defaults to "logs".
	Dir string
	// Env prefixes the log file name
	Env string
	// Console receives human readable output. Defaults to stdout.
	Console io.Writer
	// ConsoleLevel defaults to info
	ConsoleLevel zapcore.Level
	// FileLevel defaults to debug when nil
	FileLevel *zapcore.Level
	// Verbose drops the console level to debug
	Verbose bool
}

// New builds a zap logger with console and file outputs and returns the path of the file it writes to.
// opts.Env prefixes the log file name.
func New(opts Options) (*zap.Logger, string, error) {
	if opts.Dir == "" {
		opts.Dir = "logs"
	}
	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	if opts.Verbose {
		opts.ConsoleLevel = zapcore.DebugLevel
	}
	fileLevel := zapcore.DebugLevel
	if opts.FileLevel != nil {
		fileLevel = *opts.FileLevel
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create logs directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logFileName := filepath.Join(opts.Dir, fmt.Sprintf("%s_%s.log", fileEnv(opts.Env), timestamp))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file: %w", err)
	}

	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoderConfig.TimeKey = "timestamp"
	fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig), zapcore.AddSync(opts.Console), opts.ConsoleLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(logFile), fileLevel),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if opts.Env != "" {
		logger = logger.With(zap.String("env", opts.Env))
	}

	return logger, logFileName, nil
}

func fileEnv(env string) string {
	if env == "" {
		return "default"
	}
	return env
}
