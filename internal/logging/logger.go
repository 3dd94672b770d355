package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"riskstream/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps logrus logger with additional functionality. Attached
// fields accumulate in the wrapper and are handed to logrus as a single
// entry at emit time.
type Logger struct {
	*logrus.Logger
	component string
	fields    logrus.Fields
}

// Log levels
const (
	DebugLevel = logrus.DebugLevel
	InfoLevel  = logrus.InfoLevel
	WarnLevel  = logrus.WarnLevel
	ErrorLevel = logrus.ErrorLevel
	FatalLevel = logrus.FatalLevel
)

// Global logger instance
var globalLogger *Logger

// NewLogger creates a new logger with the given configuration
func NewLogger(cfg config.LoggingConfig) *Logger {
	logger := logrus.New()

	// Set log level
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Set formatter
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	// Set output
	var output io.Writer
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	case "file":
		output = createFileWriter(cfg)
	case "both":
		output = io.MultiWriter(os.Stdout, createFileWriter(cfg))
	default:
		output = os.Stdout
	}

	logger.SetOutput(output)

	return &Logger{
		Logger: logger,
	}
}

// createFileWriter creates a rotating file writer
func createFileWriter(cfg config.LoggingConfig) io.Writer {
	// Ensure log directory exists
	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		fmt.Printf("Warning: Failed to create log directory: %v\n", err)
		return os.Stdout
	}

	logFile := filepath.Join(cfg.Directory, "riskstream.log")

	return &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    cfg.MaxSize, // MB
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge, // days
		Compress:   cfg.Compress,
	}
}

// InitGlobalLogger initializes the global logger
func InitGlobalLogger(cfg config.LoggingConfig) {
	globalLogger = NewLogger(cfg)
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		// Create default logger if not initialized
		globalLogger = NewLogger(config.LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		})
	}
	return globalLogger
}

// NewComponentLogger creates a logger for a specific component
func NewComponentLogger(component string) *Logger {
	baseLogger := GetGlobalLogger()
	return &Logger{
		Logger:    baseLogger.Logger,
		component: component,
	}
}

// entry collapses the accumulated fields and component tag into a logrus
// entry. Emission always goes through the embedded logrus logger, never
// back through the wrapper.
func (l *Logger) entry() *logrus.Entry {
	fields := make(logrus.Fields, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	if l.component != "" {
		fields["component"] = l.component
	}
	return l.Logger.WithFields(fields)
}

// bare reports whether the logger carries no fields and no component, in
// which case the embedded logger can be used directly
func (l *Logger) bare() bool {
	return l.component == "" && len(l.fields) == 0
}

// Logging methods with component awareness

// Debug logs a debug message
func (l *Logger) Debug(args ...interface{}) {
	if l.bare() {
		l.Logger.Debug(args...)
	} else {
		l.entry().Debug(args...)
	}
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.bare() {
		l.Logger.Debugf(format, args...)
	} else {
		l.entry().Debugf(format, args...)
	}
}

// Info logs an info message
func (l *Logger) Info(args ...interface{}) {
	if l.bare() {
		l.Logger.Info(args...)
	} else {
		l.entry().Info(args...)
	}
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	if l.bare() {
		l.Logger.Infof(format, args...)
	} else {
		l.entry().Infof(format, args...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(args ...interface{}) {
	if l.bare() {
		l.Logger.Warn(args...)
	} else {
		l.entry().Warn(args...)
	}
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	if l.bare() {
		l.Logger.Warnf(format, args...)
	} else {
		l.entry().Warnf(format, args...)
	}
}

// Error logs an error message
func (l *Logger) Error(args ...interface{}) {
	if l.bare() {
		l.Logger.Error(args...)
	} else {
		l.entry().Error(args...)
	}
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.bare() {
		l.Logger.Errorf(format, args...)
	} else {
		l.entry().Errorf(format, args...)
	}
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(args ...interface{}) {
	if l.bare() {
		l.Logger.Fatal(args...)
	} else {
		l.entry().Fatal(args...)
	}
}

// Fatalf logs a formatted fatal message and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	if l.bare() {
		l.Logger.Fatalf(format, args...)
	} else {
		l.entry().Fatalf(format, args...)
	}
}

// WithFields adds multiple fields to the logger
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(logrus.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{
		Logger:    l.Logger,
		component: l.component,
		fields:    merged,
	}
}

// WithField adds a single field to the logger
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithError adds an error field to the logger
func (l *Logger) WithError(err error) *Logger {
	return l.WithFields(map[string]interface{}{logrus.ErrorKey: err})
}

// Risk-engine specific logging methods

// LogRiskEvent logs an emitted risk event
func (l *Logger) LogRiskEvent(instrumentID, kind, severity string, oldValue, newValue, changePct float64) {
	l.WithFields(logrus.Fields{
		"event":      "risk_event",
		"instrument": instrumentID,
		"kind":       kind,
		"severity":   severity,
		"old_value":  oldValue,
		"new_value":  newValue,
		"change_pct": changePct,
	}).Info("Risk event emitted")
}

// LogRegimeChange logs a confirmed regime transition
func (l *Logger) LogRegimeChange(instrumentID, fromRegime, toRegime string, score float64) {
	l.WithFields(logrus.Fields{
		"event":       "regime_change",
		"instrument":  instrumentID,
		"from_regime": fromRegime,
		"to_regime":   toRegime,
		"score":       score,
	}).Info("Regime transition")
}

// LogTickRejected logs a rejected tick with its rejection reason
func (l *Logger) LogTickRejected(instrumentID string, reason string, err error) {
	l.WithFields(logrus.Fields{
		"event":      "tick_rejected",
		"instrument": instrumentID,
		"reason":     reason,
		"error":      err.Error(),
	}).Warn("Tick rejected")
}

// LogSnapshot logs a metrics snapshot at debug level
func (l *Logger) LogSnapshot(instrumentID string, price, score float64, regime string) {
	l.WithFields(logrus.Fields{
		"event":      "metrics_snapshot",
		"instrument": instrumentID,
		"price":      price,
		"score":      score,
		"regime":     regime,
	}).Debug("Metrics snapshot")
}

// Global convenience functions

// Debug logs a debug message using the global logger
func Debug(args ...interface{}) {
	GetGlobalLogger().Debug(args...)
}

// Debugf logs a formatted debug message using the global logger
func Debugf(format string, args ...interface{}) {
	GetGlobalLogger().Debugf(format, args...)
}

// Info logs an info message using the global logger
func Info(args ...interface{}) {
	GetGlobalLogger().Info(args...)
}

// Infof logs a formatted info message using the global logger
func Infof(format string, args ...interface{}) {
	GetGlobalLogger().Infof(format, args...)
}

// Warn logs a warning message using the global logger
func Warn(args ...interface{}) {
	GetGlobalLogger().Warn(args...)
}

// Warnf logs a formatted warning message using the global logger
func Warnf(format string, args ...interface{}) {
	GetGlobalLogger().Warnf(format, args...)
}

// Error logs an error message using the global logger
func Error(args ...interface{}) {
	GetGlobalLogger().Error(args...)
}

// Errorf logs a formatted error message using the global logger
func Errorf(format string, args ...interface{}) {
	GetGlobalLogger().Errorf(format, args...)
}

// Fatalf logs a formatted fatal message using the global logger
func Fatalf(format string, args ...interface{}) {
	GetGlobalLogger().Fatalf(format, args...)
}

// WithError adds an error field to the global logger
func WithError(err error) *Logger {
	return GetGlobalLogger().WithError(err)
}
