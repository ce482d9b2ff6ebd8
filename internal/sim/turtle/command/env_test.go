package command

import (
	"fmt"
	"testing"

	"turtlecraft.ai/internal/sim/catalogs"
	"turtlecraft.ai/internal/sim/tuning"
	"turtlecraft.ai/internal/sim/turtle"
	"turtlecraft.ai/internal/sim/turtle/transfer"
	"turtlecraft.ai/internal/sim/turtle/upgrades"
	"turtlecraft.ai/internal/sim/world/capture"
	"turtlecraft.ai/internal/sim/world/feature/work/mining"
	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

type drop struct {
	from  modelpkg.Vec3i
	dir   modelpkg.Direction
	stack modelpkg.ItemStack
}

// stubEnv is a small in-memory world: a block map, actors, loose items and
// container inventories.
type stubEnv struct {
	t *testing.T

	cat *catalogs.Catalogs
	reg *upgrades.Registry
	tun tuning.Tuning

	blocks     map[modelpkg.Vec3i]string
	actors     []*modelpkg.Actor
	items      []*modelpkg.ItemEntity
	invs       map[modelpkg.Vec3i]transfer.ItemHandler
	signs      map[modelpkg.Vec3i][]string
	protected  map[modelpkg.Vec3i]bool
	noDamage   bool
	capture    capture.Slot
	dropped    []drop
	spawned    []modelpkg.ItemStack
	effects    []string
	logs       []string
	nextEntity int
}

func newStubEnv(t *testing.T) *stubEnv {
	t.Helper()
	cat, err := catalogs.Load("../../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	tun := tuning.Defaults()
	return &stubEnv{
		t:         t,
		cat:       cat,
		reg:       upgrades.NewRegistry(cat),
		tun:       tun,
		blocks:    map[modelpkg.Vec3i]string{},
		invs:      map[modelpkg.Vec3i]transfer.ItemHandler{},
		signs:     map[modelpkg.Vec3i][]string{},
		protected: map[modelpkg.Vec3i]bool{},
	}
}

// newTurtle places a turtle block at pos facing north with a flat floor below.
func (e *stubEnv) newTurtle(pos modelpkg.Vec3i) *turtle.Turtle {
	tt := turtle.New(turtle.Config{
		ID:         "T1",
		Owner:      "alice",
		Pos:        pos,
		Facing:     modelpkg.North,
		Fuel:       10,
		FuelLimit:  e.tun.Turtle.FuelLimit,
		NeedFuel:   true,
		StackLimit: e.cat.StackLimit,
	})
	e.blocks[pos] = "TURTLE"
	for x := -3; x <= 3; x++ {
		for z := -3; z <= 3; z++ {
			e.blocks[modelpkg.Vec3i{X: pos.X + x, Y: pos.Y - 1, Z: pos.Z + z}] = "STONE"
		}
	}
	return tt
}

func (e *stubEnv) addChest(pos modelpkg.Vec3i) *modelpkg.Slots {
	e.blocks[pos] = "CHEST"
	s := modelpkg.NewSlots(27, e.cat.StackLimit)
	e.invs[pos] = &s
	return &s
}

func (e *stubEnv) addActor(kind string, pos modelpkg.Vec3) *modelpkg.Actor {
	def := e.cat.Actors.Defs[kind]
	a := &modelpkg.Actor{ID: fmt.Sprintf("%s%d", kind, len(e.actors)+1), Kind: kind, Pos: pos, Width: def.Width, Height: def.Height, HP: def.MaxHP, MaxHP: def.MaxHP, Prop: def.Prop}
	e.actors = append(e.actors, a)
	return a
}

func (e *stubEnv) Catalogs() *catalogs.Catalogs { return e.cat }
func (e *stubEnv) Upgrades() *upgrades.Registry { return e.reg }
func (e *stubEnv) Tuning() tuning.Tuning        { return e.tun }
func (e *stubEnv) Capture() *capture.Slot       { return &e.capture }
func (e *stubEnv) Logf(format string, args ...any) {
	e.logs = append(e.logs, fmt.Sprintf(format, args...))
}

func (e *stubEnv) BlockAt(pos modelpkg.Vec3i) string {
	if b, ok := e.blocks[pos]; ok {
		return b
	}
	return "AIR"
}

func (e *stubEnv) InBuildLimits(pos modelpkg.Vec3i) bool {
	return pos.Y >= e.tun.World.MinY && pos.Y <= e.tun.World.MaxY
}

func (e *stubEnv) IsLiquid(pos modelpkg.Vec3i) bool { return e.cat.Blocks.Defs[e.BlockAt(pos)].Liquid }

func (e *stubEnv) SolidActorAt(pos modelpkg.Vec3i) bool {
	for _, a := range e.actors {
		if a.Alive() && a.Box().Intersects(modelpkg.BlockBox(pos)) {
			return true
		}
	}
	return false
}

func (e *stubEnv) RayTraceActor(from, dir modelpkg.Vec3, maxDist float64) (*modelpkg.Actor, modelpkg.Vec3, bool) {
	for _, a := range e.actors {
		if !a.Alive() {
			continue
		}
		if d, ok := a.Box().RayHit(from, dir, maxDist); ok {
			return a, from.Add(dir.Scale(d)), true
		}
	}
	return nil, modelpkg.Vec3{}, false
}

func (e *stubEnv) ItemEntitiesIn(box modelpkg.AABB) []*modelpkg.ItemEntity {
	var out []*modelpkg.ItemEntity
	for _, it := range e.items {
		if it.Alive() && box.Contains(it.Pos) {
			out = append(out, it)
		}
	}
	return out
}

func (e *stubEnv) SetItemEntityStack(id string, stack modelpkg.ItemStack) {
	for i, it := range e.items {
		if it.EntityID != id {
			continue
		}
		if stack.Empty() {
			e.items = append(e.items[:i], e.items[i+1:]...)
			return
		}
		it.Stack = stack
		return
	}
}

func (e *stubEnv) SpawnItem(pos modelpkg.Vec3, stack modelpkg.ItemStack) {
	if stack.Empty() || e.capture.InterceptSpawn(pos, stack) {
		return
	}
	e.nextEntity++
	e.items = append(e.items, &modelpkg.ItemEntity{EntityID: fmt.Sprintf("IT%d", e.nextEntity), Pos: pos, Stack: stack})
	e.spawned = append(e.spawned, stack)
}

func (e *stubEnv) DropItem(from modelpkg.Vec3i, dir modelpkg.Direction, stack modelpkg.ItemStack) {
	e.dropped = append(e.dropped, drop{from: from, dir: dir, stack: stack})
}

func (e *stubEnv) PlayEffect(effect string, pos modelpkg.Vec3i) {
	e.effects = append(e.effects, effect)
}

func (e *stubEnv) MoveTurtle(t *turtle.Turtle, to modelpkg.Vec3i) {
	delete(e.blocks, t.Pos())
	e.blocks[to] = "TURTLE"
	t.SetPos(to)
}

func (e *stubEnv) EditableForPlacement(pos modelpkg.Vec3i, owner string) bool {
	return !e.protected[pos]
}
func (e *stubEnv) EditableForBreaking(pos modelpkg.Vec3i, owner string) bool {
	return !e.protected[pos]
}
func (e *stubEnv) PreBreak(pos modelpkg.Vec3i, owner string) bool  { return true }
func (e *stubEnv) CanDamage(pos modelpkg.Vec3i, owner string) bool { return !e.noDamage }

func (e *stubEnv) InventoryAt(pos modelpkg.Vec3i, side modelpkg.Direction) (transfer.ItemHandler, bool) {
	h, ok := e.invs[pos]
	return h, ok
}

func (e *stubEnv) NewProxy(owner string, pos modelpkg.Vec3i, facing modelpkg.Direction, held modelpkg.ItemStack) Proxy {
	return &stubProxy{env: e, held: held}
}

type stubProxy struct {
	env    *stubEnv
	held   modelpkg.ItemStack
	extras []modelpkg.ItemStack
}

func (p *stubProxy) Held() modelpkg.ItemStack { return p.held }

func (p *stubProxy) TakeExtras() []modelpkg.ItemStack {
	out := p.extras
	p.extras = nil
	return out
}

func (p *stubProxy) InteractAt(a *modelpkg.Actor, hit modelpkg.Vec3) bool { return false }
func (p *stubProxy) Interact(a *modelpkg.Actor) bool                      { return false }

func (p *stubProxy) UseOnActor(a *modelpkg.Actor) bool {
	for _, rule := range p.env.cat.Actors.Defs[a.Kind].Interactions {
		if rule.Item != p.held.Item {
			continue
		}
		p.env.SpawnItem(a.Pos, modelpkg.Stack(rule.Gives, rule.Count))
		return true
	}
	return false
}

func (p *stubProxy) PlaceAgainst(anchor modelpkg.Vec3i, face modelpkg.Direction, lines []string) bool {
	e := p.env
	item := e.cat.Items.Defs[p.held.Item]
	if item.Kind == catalogs.ItemKindTool {
		to, ok := e.cat.Blocks.Defs[e.BlockAt(anchor)].ToolTransforms[item.ToolKind]
		if !ok || face == modelpkg.Down || e.BlockAt(anchor.Offset(modelpkg.Up)) != "AIR" {
			return false
		}
		e.blocks[anchor] = to
		return true
	}
	block, ok := e.cat.BlockForItem(p.held.Item)
	if !ok {
		return false
	}
	target := anchor
	if !e.cat.Blocks.Defs[e.BlockAt(anchor)].Replaceable {
		target = anchor.Offset(face)
	}
	cur := e.BlockAt(target)
	if cur != "AIR" && !e.cat.Blocks.Defs[cur].Replaceable {
		return false
	}
	e.blocks[target] = block
	if lines != nil {
		e.signs[target] = lines
	}
	p.held = p.held.WithCount(p.held.Count - 1)
	return true
}

func (p *stubProxy) AttackDamage() float64 {
	if d := p.env.cat.Items.Defs[p.held.Item].AttackDamage; d > 0 {
		return d
	}
	return 1
}

func (p *stubProxy) Attack(a *modelpkg.Actor, damage float64) bool {
	if a.Prop {
		if !a.Punched {
			a.Punched = true
			return true
		}
		a.HP = 0
	} else {
		a.HP -= damage
	}
	if a.HP <= 0 {
		a.Dead = true
		for _, d := range p.env.cat.Actors.Defs[a.Kind].Drops {
			st := modelpkg.Stack(d.Item, d.Count)
			if !p.env.capture.InterceptActorDrops(a.ID, st) {
				p.env.SpawnItem(a.Pos, st)
			}
		}
	}
	return true
}

func (p *stubProxy) CanHarvest(pos modelpkg.Vec3i) bool {
	return mining.CanHarvest(p.env.cat.Blocks.Defs[p.env.BlockAt(pos)], p.env.cat.Items.Defs[p.held.Item])
}

func (p *stubProxy) MiningProgress(pos modelpkg.Vec3i) float64 {
	return mining.MiningProgress(p.env.cat.Blocks.Defs[p.env.BlockAt(pos)], p.env.cat.Items.Defs[p.held.Item])
}

func (p *stubProxy) RemoveBlock(pos modelpkg.Vec3i) bool {
	delete(p.env.blocks, pos)
	return true
}

func (p *stubProxy) HarvestDrops(pos modelpkg.Vec3i, block string) {
	def := p.env.cat.Blocks.Defs[block]
	item := def.DropsItem
	if item == "" {
		item = block
	}
	n := def.DropsCount
	if n <= 0 {
		n = 1
	}
	st := modelpkg.Stack(item, n)
	if !p.env.capture.InterceptBlockDrop(pos, st) {
		p.env.SpawnItem(pos.Center(), st)
	}
}

func (e *stubEnv) snapshot(t *turtle.Turtle) (inv []modelpkg.ItemStack, fuel int, blocks int) {
	return t.Inventory().List(), t.Fuel(), len(e.blocks)
}

func sameStacks(a, b []modelpkg.ItemStack) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func mustRun(t *testing.T, env Env, tt *turtle.Turtle, c Command) Result {
	t.Helper()
	res, err := c.Execute(env, tt)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", c.Verb(), err)
	}
	return res
}
