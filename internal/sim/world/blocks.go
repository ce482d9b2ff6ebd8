package world

import (
	"turtlecraft.ai/internal/sim/catalogs"
	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

const (
	airBlockName    = "AIR"
	turtleBlockName = "TURTLE"
)

func (w *World) blockName(b uint16) string {
	if int(b) < len(w.catalogs.Blocks.Palette) {
		return w.catalogs.Blocks.Palette[b]
	}
	return airBlockName
}

func (w *World) blockDefAt(pos Vec3i) catalogs.BlockDef {
	return w.catalogs.Blocks.Defs[w.BlockAt(pos)]
}

// SetBlock writes a block by name outside of any command (world setup, admin).
func (w *World) SetBlock(pos Vec3i, name string) bool {
	return w.setBlock(pos, name, "WORLD", "SETUP")
}

// setBlock swaps the block at pos and keeps containers and signs in step with it.
func (w *World) setBlock(pos Vec3i, name, actor, reason string) bool {
	to, ok := w.catalogs.Blocks.Index[name]
	if !ok || !w.InBuildLimits(pos) {
		return false
	}
	from := w.chunks.GetBlock(pos)
	if from == to {
		return true
	}
	fromName := w.blockName(from)
	w.chunks.SetBlock(pos, to)
	w.auditSetBlock(actor, pos, from, to, reason)

	if fromName == "SIGN" {
		w.removeSign(pos, actor, reason)
	}
	if w.catalogs.Blocks.Defs[fromName].ContainerSize > 0 {
		w.removeContainer(pos, actor, reason)
	}
	if def := w.catalogs.Blocks.Defs[name]; def.ContainerSize > 0 {
		w.ensureContainer(pos, name, def.ContainerSize)
	}
	return true
}

func (w *World) ensureContainer(pos Vec3i, typ string, size int) *Container {
	if c := w.containers[pos]; c != nil && c.Type == typ {
		return c
	}
	c := modelpkg.NewContainer(typ, pos, size, w.catalogs.StackLimit)
	w.containers[pos] = c
	return c
}

// removeContainer drops the container's contents into the world.
func (w *World) removeContainer(pos Vec3i, actor, reason string) {
	c := w.containers[pos]
	if c == nil {
		return
	}
	delete(w.containers, pos)
	for _, st := range c.List() {
		if st.Empty() {
			continue
		}
		w.spawnItem(pos.Center(), st, actor, "CONTAINER_SPILL")
	}
	w.auditEvent(w.CurrentTick(), actor, "CONTAINER_REMOVE", pos, reason, map[string]any{
		"container_id": c.ID(),
	})
}

// Container returns the container at pos, if any.
func (w *World) Container(pos Vec3i) *Container { return w.containers[pos] }
