package world

import modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"

func (w *World) writeSign(pos Vec3i, lines []string, actor string) {
	s := &Sign{Pos: pos, UpdatedTick: w.CurrentTick(), UpdatedBy: actor}
	for i := 0; i < len(lines) && i < modelpkg.SignLines; i++ {
		s.Lines[i] = lines[i]
	}
	w.signs[pos] = s
	w.auditEvent(w.CurrentTick(), actor, "SIGN_WRITE", pos, "PLACE", map[string]any{
		"lines": s.Lines[:],
	})
}

func (w *World) removeSign(pos Vec3i, actor, reason string) {
	if _, ok := w.signs[pos]; !ok {
		return
	}
	delete(w.signs, pos)
	w.auditEvent(w.CurrentTick(), actor, "SIGN_REMOVE", pos, reason, nil)
}

func (w *World) SignAt(pos Vec3i) *Sign { return w.signs[pos] }
