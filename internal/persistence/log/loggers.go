package log

import (
	"path/filepath"

	"turtlecraft.ai/internal/sim/world"
)

// CommandLogger journals one entry per executed turtle command.
type CommandLogger struct{ w *JSONLZstdWriter }

func NewCommandLogger(worldDir string) *CommandLogger {
	return &CommandLogger{w: NewJSONLZstdWriter(filepath.Join(worldDir, "commands"), "commands")}
}

func (l *CommandLogger) WriteCommand(e world.CommandLogEntry) error { return l.w.Write(e) }
func (l *CommandLogger) Close() error                               { return l.w.Close() }

// AuditLogger journals world mutations (block sets, item spawns, sign writes).
type AuditLogger struct{ w *JSONLZstdWriter }

func NewAuditLogger(worldDir string) *AuditLogger {
	return &AuditLogger{w: NewJSONLZstdWriter(filepath.Join(worldDir, "audit"), "audit")}
}

func (l *AuditLogger) WriteAudit(e world.AuditEntry) error { return l.w.Write(e) }
func (l *AuditLogger) Close() error                        { return l.w.Close() }

var (
	_ world.CommandLogger = (*CommandLogger)(nil)
	_ world.AuditLogger   = (*AuditLogger)(nil)
)
