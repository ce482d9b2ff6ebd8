package world

func (w *World) auditSetBlock(actor string, pos Vec3i, from, to uint16, reason string) {
	w.writeAudit(AuditEntry{
		Tick:   w.CurrentTick(),
		Actor:  actor,
		Action: "SET_BLOCK",
		Pos:    pos.ToArray(),
		From:   from,
		To:     to,
		Reason: reason,
	})
}

// auditEvent matches items.AuditFunc.
func (w *World) auditEvent(nowTick uint64, actor, action string, pos Vec3i, reason string, details map[string]any) {
	w.writeAudit(AuditEntry{
		Tick:    nowTick,
		Actor:   actor,
		Action:  action,
		Pos:     pos.ToArray(),
		Reason:  reason,
		Details: details,
	})
}

func (w *World) writeAudit(e AuditEntry) {
	if w.auditLogger == nil {
		return
	}
	if err := w.auditLogger.WriteAudit(e); err != nil {
		w.logf("audit write failed: %v", err)
	}
}
