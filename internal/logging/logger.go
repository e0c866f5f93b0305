// Package logging provides config-driven categorized file-based logging for inbucket-tui.
// The terminal belongs to the UI, so logs are written to <state>/logs/ with one file per
// category. Logging is controlled by logging.debug_mode - when false, no logs are written.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/grptx/inbucket/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup and shutdown
	CategoryRouting Category = "routing" // URL changes and page transitions
	CategorySession Category = "session" // Session intents and persistence decisions
	CategoryStore   Category = "store"   // Store backends and change streams
	CategoryMonitor Category = "monitor" // Monitor socket lifecycle
	CategoryAPI     Category = "api"     // Inbucket REST calls
	CategoryUI      Category = "ui"      // Chrome and page events
)

var (
	loggers   = make(map[Category]*zap.SugaredLogger)
	files     = make(map[Category]*os.File)
	loggersMu sync.RWMutex

	logsDir  string
	cfg      config.LoggingConfig
	level    = zapcore.InfoLevel
	cfgMu    sync.RWMutex
	instance = uuid.NewString()
)

// Initialize sets up the logging directory under stateDir.
// Should be called once at startup.
func Initialize(stateDir string, lc config.LoggingConfig) error {
	if stateDir == "" {
		return fmt.Errorf("state directory required")
	}

	cfgMu.Lock()
	cfg = lc
	logsDir = filepath.Join(stateDir, "logs")
	if err := level.Set(lc.Level); err != nil || lc.Level == "" {
		level = zapcore.InfoLevel
	}
	cfgMu.Unlock()

	if !lc.DebugMode {
		return nil // Silent no-op in production mode
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Infof("=== inbucket-tui logging initialized ===")
	boot.Infof("Logs directory: %s", logsDir)
	boot.Infof("Log level: %s", level)
	if len(lc.Categories) == 0 {
		boot.Infof("All categories enabled (no category filter)")
	}

	return nil
}

// InstanceID identifies this process in every log line, so interleaved
// writers sharing one store can be told apart.
func InstanceID() string {
	return instance
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *zap.SugaredLogger {
	if !IsCategoryEnabled(category) {
		return zap.NewNop().Sugar()
	}

	cfgMu.RLock()
	dir, json := logsDir, cfg.JSONFormat
	cfgMu.RUnlock()
	if dir == "" {
		return zap.NewNop().Sugar()
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix for easy rotation
	filename := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02"), category)
	file, err := os.OpenFile(filepath.Join(dir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zap.NewNop().Sugar()
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if json {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(file), zap.NewAtomicLevelAt(level))
	l := zap.New(core).Sugar().With("cat", string(category), "instance", instance)

	files[category] = file
	loggers[category] = l
	return l
}

// CloseAll flushes and closes every open category file.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for cat, l := range loggers {
		_ = l.Sync()
		if f := files[cat]; f != nil {
			_ = f.Close()
		}
	}
	loggers = make(map[Category]*zap.SugaredLogger)
	files = make(map[Category]*os.File)
}

func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Infof(format, args...)
}

func Routing(format string, args ...interface{}) {
	Get(CategoryRouting).Infof(format, args...)
}

func RoutingDebug(format string, args ...interface{}) {
	Get(CategoryRouting).Debugf(format, args...)
}

func Session(format string, args ...interface{}) {
	Get(CategorySession).Infof(format, args...)
}

func SessionDebug(format string, args ...interface{}) {
	Get(CategorySession).Debugf(format, args...)
}

func Store(format string, args ...interface{}) {
	Get(CategoryStore).Infof(format, args...)
}

func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debugf(format, args...)
}

func StoreError(format string, args ...interface{}) {
	Get(CategoryStore).Errorf(format, args...)
}

func Monitor(format string, args ...interface{}) {
	Get(CategoryMonitor).Infof(format, args...)
}

func MonitorWarn(format string, args ...interface{}) {
	Get(CategoryMonitor).Warnf(format, args...)
}

func API(format string, args ...interface{}) {
	Get(CategoryAPI).Infof(format, args...)
}

func APIDebug(format string, args ...interface{}) {
	Get(CategoryAPI).Debugf(format, args...)
}

func UI(format string, args ...interface{}) {
	Get(CategoryUI).Infof(format, args...)
}

func UIDebug(format string, args ...interface{}) {
	Get(CategoryUI).Debugf(format, args...)
}
