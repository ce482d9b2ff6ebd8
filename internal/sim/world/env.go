package world

import (
	"turtlecraft.ai/internal/sim/catalogs"
	"turtlecraft.ai/internal/sim/tuning"
	"turtlecraft.ai/internal/sim/turtle"
	"turtlecraft.ai/internal/sim/turtle/command"
	"turtlecraft.ai/internal/sim/turtle/transfer"
	"turtlecraft.ai/internal/sim/turtle/upgrades"
	"turtlecraft.ai/internal/sim/world/capture"
)

var _ command.Env = (*World)(nil)

func (w *World) Catalogs() *catalogs.Catalogs { return w.catalogs }
func (w *World) Upgrades() *upgrades.Registry { return w.upgrades }
func (w *World) Tuning() tuning.Tuning        { return w.tun }

func (w *World) Logf(format string, args ...any) { w.logf(format, args...) }

func (w *World) BlockAt(pos Vec3i) string {
	return w.blockName(w.chunks.GetBlock(pos))
}

func (w *World) InBuildLimits(pos Vec3i) bool {
	return pos.Y >= w.tun.World.MinY && pos.Y <= w.tun.World.MaxY
}

func (w *World) IsLiquid(pos Vec3i) bool {
	return w.blockDefAt(pos).Liquid
}

// SolidActorAt reports whether a live non-prop actor overlaps the block at pos.
func (w *World) SolidActorAt(pos Vec3i) bool {
	box := BlockBox(pos)
	for _, a := range w.sortedActors() {
		if !a.Prop && a.Box().Intersects(box) {
			return true
		}
	}
	return false
}

func (w *World) RayTraceActor(from, dir Vec3, maxDist float64) (*Actor, Vec3, bool) {
	var (
		best     *Actor
		bestDist float64
	)
	for _, a := range w.sortedActors() {
		d, ok := a.Box().RayHit(from, dir, maxDist)
		if !ok {
			continue
		}
		if best == nil || d < bestDist {
			best, bestDist = a, d
		}
	}
	if best == nil {
		return nil, Vec3{}, false
	}
	return best, from.Add(dir.Scale(bestDist)), true
}

func (w *World) ItemEntitiesIn(box AABB) []*ItemEntity {
	return w.items.In(box)
}

func (w *World) SetItemEntityStack(id string, stack ItemStack) {
	w.items.SetStack(w.CurrentTick(), "TURTLE", id, stack, "PICKUP")
}

// SpawnItem lets an open capture window claim the stack before it materialises.
func (w *World) SpawnItem(pos Vec3, stack ItemStack) {
	w.spawnItem(pos, stack, "WORLD", "SPAWN")
}

func (w *World) spawnItem(pos Vec3, stack ItemStack, actor, reason string) {
	if stack.Empty() {
		return
	}
	if w.capture.InterceptSpawn(pos, stack) {
		return
	}
	w.items.Spawn(w.CurrentTick(), actor, pos, stack, reason)
}

func (w *World) DropItem(from Vec3i, dir Direction, stack ItemStack) {
	off := w.tun.Capture.DropOffset
	if off <= 0 {
		off = 0.7
	}
	pos := from.Center().Add(dir.Unit().Scale(off))
	w.items.Spawn(w.CurrentTick(), "TURTLE", pos, stack, "DROP")
}

func (w *World) PlayEffect(effect string, pos Vec3i) { w.playEffect(effect, pos) }

func (w *World) MoveTurtle(t *turtle.Turtle, to Vec3i) {
	from := t.Pos()
	w.setBlock(from, airBlockName, t.ID(), "TURTLE_MOVE")
	t.SetPos(to)
	w.setBlock(to, turtleBlockName, t.ID(), "TURTLE_MOVE")
}

func (w *World) NewProxy(owner string, pos Vec3i, facing Direction, held ItemStack) command.Proxy {
	return &proxy{w: w, owner: owner, pos: pos, facing: facing, held: held}
}

func (w *World) EditableForPlacement(pos Vec3i, owner string) bool {
	return w.policy.EditableForPlacement(pos, owner)
}

func (w *World) EditableForBreaking(pos Vec3i, owner string) bool {
	return w.policy.EditableForBreaking(pos, owner)
}

func (w *World) PreBreak(pos Vec3i, owner string) bool { return w.policy.PreBreak(pos, owner) }

func (w *World) CanDamage(pos Vec3i, owner string) bool { return w.policy.CanDamage(pos, owner) }

// InventoryAt exposes block containers and other turtles as item handlers.
func (w *World) InventoryAt(pos Vec3i, side Direction) (transfer.ItemHandler, bool) {
	if c := w.containers[pos]; c != nil {
		return &c.Slots, true
	}
	if t := w.turtleAt(pos); t != nil {
		return t.Inventory(), true
	}
	return nil, false
}

func (w *World) Capture() *capture.Slot { return &w.capture }
