package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AuditEventType names an externally visible action of the client.
type AuditEventType string

const (
	AuditNavigate       AuditEventType = "navigate"        // in-app URL pushed
	AuditOpenExternal   AuditEventType = "open_external"   // URL handed to the OS
	AuditRecordSaved    AuditEventType = "record_saved"    // session record written
	AuditRecordExternal AuditEventType = "record_external" // session record read back
	AuditSocketControl  AuditEventType = "socket_control"  // monitor feed started or stopped
)

// AuditEvent is one line of the audit trail.
type AuditEvent struct {
	EventType AuditEventType
	Target    string
	Success   bool
	Error     string
	Fields    map[string]interface{}
}

var (
	auditMu     sync.Mutex
	auditFile   *os.File
	auditLogger *zap.Logger
)

// InitAudit opens <logs>/<date>_audit.log. It is a no-op unless debug mode is
// on and Initialize has run.
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}
	cfgMu.RLock()
	dir := logsDir
	cfgMu.RUnlock()
	if dir == "" {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()
	if auditFile != nil {
		return nil
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_audit.log", time.Now().Format("2006-01-02")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.EpochMillisTimeEncoder
	encCfg.MessageKey = "event"
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), zapcore.InfoLevel)

	auditFile = file
	auditLogger = zap.New(core).With(zap.String("instance", instance))
	return nil
}

// CloseAudit flushes and closes the audit log.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditFile == nil {
		return
	}
	_ = auditLogger.Sync()
	_ = auditFile.Close()
	auditFile = nil
	auditLogger = nil
}

// Audit writes e as a JSON line.
func Audit(e AuditEvent) {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditLogger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("target", e.Target),
		zap.Bool("success", e.Success),
	}
	if e.Error != "" {
		fields = append(fields, zap.String("error", e.Error))
	}
	if len(e.Fields) > 0 {
		fields = append(fields, zap.Any("fields", e.Fields))
	}
	auditLogger.Info(string(e.EventType), fields...)
}

// AuditResult records the outcome of an action on target.
func AuditResult(event AuditEventType, target string, err error) {
	e := AuditEvent{EventType: event, Target: target, Success: err == nil}
	if err != nil {
		e.Error = err.Error()
	}
	Audit(e)
}
