package bootstrap

import (
	"context"

	"go.uber.org/zap"

	"go-compras/internal/shared/contextutil"
)

// StdoutAuditLogger writes audit entries to the process log through the named
// "audit" zap logger. A dedicated sink (table, SIEM) can replace it behind
// the AuditLogger interface without touching the call sites.
type StdoutAuditLogger struct{}

func NewStdoutAuditLogger() *StdoutAuditLogger {
	return &StdoutAuditLogger{}
}

func (l *StdoutAuditLogger) Log(ctx context.Context, entry AuditLog) {
	fields := []zap.Field{
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
	}
	if entry.Actor != "" {
		fields = append(fields, zap.String("actor", entry.Actor))
	}
	if rid := contextutil.GetRequestID(ctx); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}
	if len(entry.Meta) > 0 {
		fields = append(fields, zap.Any("meta", entry.Meta))
	}
	zap.L().Named("audit").Info("audit event", fields...)
}
