package world

import (
	"turtlecraft.ai/internal/sim/catalogs"
	"turtlecraft.ai/internal/sim/turtle/command"
	"turtlecraft.ai/internal/sim/world/feature/work/mining"
)

// proxy applies the world's native item rules on behalf of a turtle. It holds
// one stack; anything else it gains lands in extras.
type proxy struct {
	w      *World
	owner  string
	pos    Vec3i
	facing Direction
	held   ItemStack
	extras []ItemStack
}

var _ command.Proxy = (*proxy)(nil)

func (p *proxy) Held() ItemStack { return p.held }

func (p *proxy) TakeExtras() []ItemStack {
	out := p.extras
	p.extras = nil
	return out
}

func (p *proxy) heldDef() catalogs.ItemDef {
	return p.w.catalogs.Items.Defs[p.held.Item]
}

func (p *proxy) consumeOne() {
	p.held = p.held.WithCount(p.held.Count - 1)
}

// give puts stack into the hand if it is empty, otherwise into extras.
func (p *proxy) give(stack ItemStack) {
	if stack.Empty() {
		return
	}
	if p.held.Empty() {
		p.held = stack
		return
	}
	if p.held.CanStack(stack) {
		limit := p.w.catalogs.StackLimit(stack.Item)
		if room := limit - p.held.Count; room > 0 {
			moved, rest := stack.Split(room)
			p.held.Count += moved.Count
			stack = rest
		}
	}
	if !stack.Empty() {
		p.extras = append(p.extras, stack)
	}
}

// InteractAt swaps the hand with a prop's displayed item.
func (p *proxy) InteractAt(a *Actor, hit Vec3) bool {
	if !a.Alive() || !a.Prop {
		return false
	}
	switch {
	case p.held.Empty() && a.Equipped.Empty():
		return false
	case a.Equipped.Empty():
		a.Equipped = p.held.WithCount(1)
		p.consumeOne()
	case p.held.Empty():
		p.held = a.Equipped
		a.Equipped = ItemStack{}
	case p.held.Count == 1:
		p.held, a.Equipped = a.Equipped, p.held
	default:
		return false
	}
	p.w.auditEvent(p.w.CurrentTick(), p.owner, "PROP_SWAP", a.Pos.Block(), "", map[string]any{
		"actor_id": a.ID,
		"equipped": a.Equipped.Item,
	})
	return true
}

// Interact handles generic entity interaction: a NAME_TAG renames a mob.
func (p *proxy) Interact(a *Actor) bool {
	if !a.Alive() || a.Prop {
		return false
	}
	if p.heldDef().Kind != catalogs.ItemKindNameTag || p.held.Label == "" {
		return false
	}
	a.Name = p.held.Label
	p.consumeOne()
	p.w.auditEvent(p.w.CurrentTick(), p.owner, "ACTOR_NAME", a.Pos.Block(), "", map[string]any{
		"actor_id": a.ID,
		"name":     a.Name,
	})
	return true
}

// UseOnActor applies the actor's catalog interaction for the held item.
func (p *proxy) UseOnActor(a *Actor) bool {
	if !a.Alive() || p.held.Empty() {
		return false
	}
	for _, rule := range p.w.catalogs.Actors.Defs[a.Kind].Interactions {
		if rule.Item != p.held.Item {
			continue
		}
		n := rule.Count
		if n <= 0 {
			n = 1
		}
		out := ItemStack{Item: rule.Gives, Count: n}
		if rule.Consumes {
			p.consumeOne()
			p.give(out)
		} else {
			p.w.spawnItem(a.Pos, out, p.owner, "INTERACT")
		}
		p.w.auditEvent(p.w.CurrentTick(), p.owner, "ACTOR_USE", a.Pos.Block(), "", map[string]any{
			"actor_id": a.ID,
			"item":     rule.Item,
		})
		return true
	}
	return false
}

func (p *proxy) PlaceAgainst(anchor Vec3i, face Direction, lines []string) bool {
	if p.held.Empty() {
		return false
	}
	w := p.w
	item := p.heldDef()
	if item.Kind == catalogs.ItemKindTool {
		to, ok := w.blockDefAt(anchor).ToolTransforms[item.ToolKind]
		if !ok || face == Down || w.BlockAt(anchor.Offset(Up)) != airBlockName {
			return false
		}
		return w.setBlock(anchor, to, p.owner, "TOOL_USE")
	}
	block, ok := w.catalogs.BlockForItem(p.held.Item)
	if !ok {
		return false
	}
	target := anchor
	if !w.blockDefAt(anchor).Replaceable {
		target = anchor.Offset(face)
	}
	if !w.InBuildLimits(target) {
		return false
	}
	if cur := w.BlockAt(target); cur != airBlockName && !w.catalogs.Blocks.Defs[cur].Replaceable {
		return false
	}
	if w.catalogs.Blocks.Defs[block].Solid && w.SolidActorAt(target) {
		return false
	}
	if !w.setBlock(target, block, p.owner, "PLACE") {
		return false
	}
	p.consumeOne()
	if lines != nil && block == "SIGN" {
		w.writeSign(target, lines, p.owner)
	}
	return true
}

func (p *proxy) AttackDamage() float64 {
	if d := p.heldDef().AttackDamage; d > 0 {
		return d
	}
	return 1
}

// Attack damages a; props take one hit to mark and a second to break.
func (p *proxy) Attack(a *Actor, damage float64) bool {
	def := p.w.catalogs.Actors.Defs[a.Kind]
	if !a.Alive() || !def.Attackable {
		return false
	}
	if a.Prop {
		if !a.Punched {
			a.Punched = true
			return true
		}
		p.w.killActor(a, p.owner)
		return true
	}
	a.HP -= damage
	p.w.auditEvent(p.w.CurrentTick(), p.owner, "ATTACK", a.Pos.Block(), "", map[string]any{
		"actor_id": a.ID,
		"damage":   damage,
	})
	if a.HP <= 0 {
		p.w.killActor(a, p.owner)
	}
	return true
}

func (p *proxy) CanHarvest(pos Vec3i) bool {
	return mining.CanHarvest(p.w.blockDefAt(pos), p.heldDef())
}

func (p *proxy) MiningProgress(pos Vec3i) float64 {
	return mining.MiningProgress(p.w.blockDefAt(pos), p.heldDef())
}

func (p *proxy) RemoveBlock(pos Vec3i) bool {
	w := p.w
	name := w.BlockAt(pos)
	if name == airBlockName || w.turtleAt(pos) != nil {
		return false
	}
	to := w.catalogs.Blocks.Defs[name].BrokenAs
	if to == "" {
		to = airBlockName
	}
	if to == name {
		return false
	}
	return w.setBlock(pos, to, p.owner, "DIG")
}

func (p *proxy) HarvestDrops(pos Vec3i, block string) {
	w := p.w
	def := w.catalogs.Blocks.Defs[block]
	item := def.DropsItem
	if item == "" {
		item = block
	}
	if _, ok := w.catalogs.Items.Defs[item]; !ok {
		return
	}
	n := def.DropsCount
	if n <= 0 {
		n = 1
	}
	st := ItemStack{Item: item, Count: n}
	if w.capture.InterceptBlockDrop(pos, st) {
		return
	}
	w.spawnItem(pos.Center(), st, p.owner, "HARVEST")
}
