package command

import (
	"errors"
	"testing"

	"turtlecraft.ai/internal/protocol"
	"turtlecraft.ai/internal/sim/turtle"
	"turtlecraft.ai/internal/sim/world/capture"
	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

var home = modelpkg.Vec3i{X: 100, Y: 10, Z: 100}

// front is the block north of home.
var front = modelpkg.Vec3i{X: 100, Y: 10, Z: 99}

func mount(t *testing.T, env *stubEnv, tt *turtle.Turtle, side turtle.Side, item string) {
	t.Helper()
	u, ok := env.reg.ForItem(modelpkg.Stack(item, 1))
	if !ok {
		t.Fatalf("no upgrade for %s", item)
	}
	tt.SetUpgrade(side, u)
}

func TestSuckFromContainer(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	chest := env.addChest(front)
	chest.SetStackInSlot(0, modelpkg.Stack("COBBLESTONE", 10))

	res := mustRun(t, env, tt, Suck{Dir: Forward, Quantity: 64})
	if !res.Success {
		t.Fatalf("suck failed: %q", res.Message)
	}
	if chest.Total() != 0 {
		t.Fatalf("chest still holds %d", chest.Total())
	}
	if got := tt.Inventory().StackInSlot(0); got.Item != "COBBLESTONE" || got.Count != 10 {
		t.Fatalf("slot 1: %+v", got)
	}
}

func TestSuckLooseEntityTakesOnlyWhatExists(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	env.items = append(env.items, &modelpkg.ItemEntity{EntityID: "IT1", Pos: front.Center(), Stack: modelpkg.Stack("COBBLESTONE", 3)})

	res := mustRun(t, env, tt, Suck{Dir: Forward, Quantity: 5})
	if !res.Success {
		t.Fatalf("suck failed: %q", res.Message)
	}
	if len(env.items) != 0 {
		t.Fatalf("entity not removed: %+v", env.items)
	}
	if tt.Inventory().Total() != 3 {
		t.Fatalf("turtle holds %d, want 3", tt.Inventory().Total())
	}
	if len(env.effects) != 1 || env.effects[0] != "item_pickup" {
		t.Fatalf("effects: %v", env.effects)
	}
}

func TestSuckLooseEntityLeavesRemainder(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	env.items = append(env.items, &modelpkg.ItemEntity{EntityID: "IT1", Pos: front.Center(), Stack: modelpkg.Stack("DIRT", 10)})

	res := mustRun(t, env, tt, Suck{Dir: Forward, Quantity: 4})
	if !res.Success {
		t.Fatalf("suck failed: %q", res.Message)
	}
	if len(env.items) != 1 || env.items[0].Stack.Count != 6 {
		t.Fatalf("entity: %+v", env.items)
	}
}

func TestSuckFailures(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)

	if res := mustRun(t, env, tt, Suck{Dir: Forward, Quantity: 64}); res.Success || res.Message != "No items to take" {
		t.Fatalf("empty ground: %+v", res)
	}
	if res := mustRun(t, env, tt, Suck{Dir: Forward, Quantity: 0}); !res.Success {
		t.Fatalf("zero quantity should trivially succeed")
	}
	if _, err := (Suck{Dir: Forward, Quantity: 65}).Execute(env, tt); err == nil || err.Error() != "Quantity out of range" {
		t.Fatalf("quantity 65: %v", err)
	}

	chest := env.addChest(front)
	chest.SetStackInSlot(3, modelpkg.Stack("COBBLESTONE", 10))
	for i := 0; i < turtle.InventorySize; i++ {
		tt.Inventory().SetStackInSlot(i, modelpkg.Stack("DIRT", 64))
	}
	before := tt.Inventory().List()
	if res := mustRun(t, env, tt, Suck{Dir: Forward, Quantity: 64}); res.Success || res.Message != "No space for items" {
		t.Fatalf("full turtle: %+v", res)
	}
	if chest.Total() != 10 || !sameStacks(before, tt.Inventory().List()) {
		t.Fatalf("failed suck mutated inventories")
	}
}

func TestSuckCommitsOnlyWhatFits(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	chest := env.addChest(front)
	chest.SetStackInSlot(0, modelpkg.Stack("COBBLESTONE", 10))
	for i := 1; i < turtle.InventorySize; i++ {
		tt.Inventory().SetStackInSlot(i, modelpkg.Stack("DIRT", 64))
	}
	tt.Inventory().SetStackInSlot(0, modelpkg.Stack("COBBLESTONE", 60))
	total := chest.Total() + tt.Inventory().Total()

	res := mustRun(t, env, tt, Suck{Dir: Forward, Quantity: 64})
	if !res.Success {
		t.Fatalf("suck failed: %q", res.Message)
	}
	if chest.Total() != 6 || tt.Inventory().StackInSlot(0).Count != 64 {
		t.Fatalf("chest=%d slot=%+v", chest.Total(), tt.Inventory().StackInSlot(0))
	}
	if chest.Total()+tt.Inventory().Total() != total {
		t.Fatalf("items not conserved")
	}
	if len(env.logs) != 0 || len(env.dropped) != 0 {
		t.Fatalf("unexpected anomaly: logs=%v dropped=%v", env.logs, env.dropped)
	}
}

// shortChest hands out one item less than it promised on real extraction.
type shortChest struct {
	*modelpkg.Slots
}

func (c shortChest) Extract(slot, amount int, simulate bool) modelpkg.ItemStack {
	got := c.Slots.Extract(slot, amount, simulate)
	if !simulate && got.Count > 1 {
		c.Slots.Insert(slot, modelpkg.Stack(got.Item, 1), false)
		got.Count--
	}
	return got
}

func TestSuckReportsProtocolViolation(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	chest := env.addChest(front)
	chest.SetStackInSlot(0, modelpkg.Stack("COBBLESTONE", 10))
	env.invs[front] = shortChest{chest}

	_, err := (Suck{Dir: Forward, Quantity: 64}).Execute(env, tt)
	if !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("want protocol violation, got %v", err)
	}
}

func TestPlaceSignOnOccupiedFloorExhaustsAnchors(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	tt.SetSelectedStack(modelpkg.Stack("SIGN", 4))
	before, fuel, blocks := env.snapshot(tt)

	res := mustRun(t, env, tt, Place{Dir: Down, Args: []any{"Hello"}})
	if res.Success || res.Message != "Cannot place block here" {
		t.Fatalf("expected placement failure, got %+v", res)
	}
	inv, fuel2, blocks2 := env.snapshot(tt)
	if !sameStacks(before, inv) || fuel != fuel2 || blocks != blocks2 || len(env.signs) != 0 {
		t.Fatalf("failed place mutated state")
	}
}

func TestPlaceFallsBackToFloorAnchor(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	tt.SetSelectedStack(modelpkg.Stack("DIRT", 2))

	res := mustRun(t, env, tt, Place{Dir: Forward})
	if !res.Success {
		t.Fatalf("place failed: %q", res.Message)
	}
	if env.BlockAt(front) != "DIRT" {
		t.Fatalf("front=%s", env.BlockAt(front))
	}
	if got := tt.SelectedStack(); got.Count != 1 {
		t.Fatalf("selected stack: %+v", got)
	}
}

func TestPlaceReplacesFrontAnchor(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	env.blocks[front] = "TALL_GRASS"
	tt.SetSelectedStack(modelpkg.Stack("COBBLESTONE", 1))

	res := mustRun(t, env, tt, Place{Dir: Forward})
	if !res.Success {
		t.Fatalf("place failed: %q", res.Message)
	}
	if env.BlockAt(front) != "COBBLESTONE" {
		t.Fatalf("front=%s", env.BlockAt(front))
	}
	if !tt.SelectedStack().Empty() {
		t.Fatalf("selected slot should be empty: %+v", tt.SelectedStack())
	}
}

func TestPlaceInProtectedArea(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	env.protected[front] = true
	tt.SetSelectedStack(modelpkg.Stack("DIRT", 2))

	res := mustRun(t, env, tt, Place{Dir: Forward})
	if res.Success || res.Message != "Cannot place in protected area" {
		t.Fatalf("got %+v", res)
	}
	if env.BlockAt(front) != "AIR" || tt.SelectedStack().Count != 2 {
		t.Fatalf("protected place mutated state")
	}
}

func TestPlaceNothingSelected(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	if res := mustRun(t, env, tt, Place{Dir: Forward}); res.Message != "No items to place" {
		t.Fatalf("got %+v", res)
	}
	tt.SetSelectedStack(modelpkg.Stack("COAL", 1))
	if res := mustRun(t, env, tt, Place{Dir: Forward}); res.Message != "Cannot place item here" {
		t.Fatalf("got %+v", res)
	}
}

func TestPlaceWritesSignText(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	tt.SetSelectedStack(modelpkg.Stack("SIGN", 1))

	res := mustRun(t, env, tt, Place{Dir: Forward, Args: []any{"Hello"}})
	if !res.Success {
		t.Fatalf("place failed: %q", res.Message)
	}
	lines := env.signs[front]
	if len(lines) != 4 || lines[0] != "" || lines[1] != "Hello" {
		t.Fatalf("sign lines: %q", lines)
	}
}

func TestSignText(t *testing.T) {
	cases := []struct {
		msg  string
		want [4]string
	}{
		{"a\nb", [4]string{"", "a", "b", ""}},
		{"a\nb\nc", [4]string{"a", "b", "c", ""}},
		{"1\n2\n3\n4\n5", [4]string{"1", "2", "3", "4"}},
		{"0123456789abcdefgh", [4]string{"", "0123456789abcde", "", ""}},
	}
	for _, c := range cases {
		got := signText([]any{c.msg})
		for i := range c.want {
			if got[i] != c.want[i] {
				t.Fatalf("signText(%q)=%q want %q", c.msg, got, c.want)
			}
		}
	}
	if signText(nil) != nil || signText([]any{42}) != nil {
		t.Fatalf("non-string args should not produce text")
	}
}

func TestPlaceOnActorCapturesDrops(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	sheep := env.addActor("SHEEP", modelpkg.Vec3{X: 100.5, Y: 10, Z: 99.5})
	tt.SetSelectedStack(modelpkg.Stack("SHEARS", 1))

	res := mustRun(t, env, tt, Place{Dir: Forward})
	if !res.Success {
		t.Fatalf("shearing failed: %q", res.Message)
	}
	if !sheep.Alive() || len(env.spawned) != 0 {
		t.Fatalf("wool should be captured, spawned=%v", env.spawned)
	}
	if got := tt.Inventory().StackInSlot(1); got.Item != "WOOL" || got.Count != 2 {
		t.Fatalf("wool not stored: %+v", tt.Inventory().List())
	}
	if got := tt.SelectedStack(); got.Item != "SHEARS" {
		t.Fatalf("shears lost: %+v", got)
	}
	if env.capture.Active() {
		t.Fatalf("capture window left open")
	}
}

func TestDigUnbreakable(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	mount(t, env, tt, turtle.Left, "DIAMOND_PICKAXE")
	env.blocks[front] = "BEDROCK"
	before, fuel, _ := env.snapshot(tt)

	res := mustRun(t, env, tt, Dig{Dir: Forward})
	if res.Success || res.Message != "Cannot break unbreakable block" {
		t.Fatalf("got %+v", res)
	}
	inv, fuel2, _ := env.snapshot(tt)
	if !sameStacks(before, inv) || fuel != fuel2 || env.BlockAt(front) != "BEDROCK" {
		t.Fatalf("failed dig mutated state")
	}
	if anims := tt.DrainAnimations(); len(anims) != 0 {
		t.Fatalf("failed dig animated: %v", anims)
	}
}

func TestDigStoresDropsInTurtle(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	mount(t, env, tt, turtle.Right, "DIAMOND_PICKAXE")
	env.blocks[front] = "STONE"

	res := mustRun(t, env, tt, Dig{Dir: Forward})
	if !res.Success {
		t.Fatalf("dig failed: %q", res.Message)
	}
	if env.BlockAt(front) != "AIR" {
		t.Fatalf("block not removed")
	}
	if got := tt.Inventory().StackInSlot(0); got.Item != "COBBLESTONE" || got.Count != 1 {
		t.Fatalf("drop not captured: %+v", got)
	}
	if len(env.spawned) != 0 || env.capture.Active() {
		t.Fatalf("spawned=%v active=%v", env.spawned, env.capture.Active())
	}
	if anims := tt.DrainAnimations(); len(anims) != 1 || anims[0] != turtle.AnimSwing {
		t.Fatalf("anims=%v", anims)
	}
}

func TestDigFlushesWhatDoesNotFit(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	mount(t, env, tt, turtle.Left, "DIAMOND_PICKAXE")
	env.blocks[front] = "STONE"
	for i := 0; i < turtle.InventorySize; i++ {
		tt.Inventory().SetStackInSlot(i, modelpkg.Stack("DIRT", 64))
	}

	res := mustRun(t, env, tt, Dig{Dir: Forward})
	if !res.Success {
		t.Fatalf("dig failed: %q", res.Message)
	}
	if len(env.dropped) != 1 || env.dropped[0].stack.Item != "COBBLESTONE" || env.dropped[0].dir != modelpkg.South {
		t.Fatalf("leftover not flushed behind the turtle: %+v", env.dropped)
	}
}

func TestDigToolRules(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)

	env.blocks[front] = "DIRT"
	if res := mustRun(t, env, tt, Dig{Dir: Forward}); res.Message != "No tool to dig" {
		t.Fatalf("no tool: %+v", res)
	}
	mount(t, env, tt, turtle.Left, "DIAMOND_PICKAXE")
	if res := mustRun(t, env, tt, Dig{Dir: Forward}); res.Message != "Cannot break block with this tool" {
		t.Fatalf("pickaxe on dirt: %+v", res)
	}
	env.blocks[front] = "GLASS"
	if res := mustRun(t, env, tt, Dig{Dir: Forward}); !res.Success {
		t.Fatalf("glass is always breakable: %+v", res)
	}
	if res := mustRun(t, env, tt, Dig{Dir: Forward}); res.Message != "Nothing to dig here" {
		t.Fatalf("air: %+v", res)
	}
	env.blocks[front] = "WATER"
	if res := mustRun(t, env, tt, Dig{Dir: Forward}); res.Message != "Nothing to dig here" {
		t.Fatalf("water: %+v", res)
	}
	env.blocks[front] = "STONE"
	env.protected[front] = true
	if res := mustRun(t, env, tt, Dig{Dir: Forward}); res.Message != "Cannot break protected block" {
		t.Fatalf("protected: %+v", res)
	}
}

func TestDigWithHoeTills(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	mount(t, env, tt, turtle.Left, "DIAMOND_HOE")
	env.blocks[front] = "GRASS"

	res := mustRun(t, env, tt, Dig{Dir: Forward})
	if !res.Success {
		t.Fatalf("till failed: %q", res.Message)
	}
	if env.BlockAt(front) != "FARMLAND" || tt.Inventory().Total() != 0 {
		t.Fatalf("front=%s inv=%d", env.BlockAt(front), tt.Inventory().Total())
	}
}

func TestDigSideSelection(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	mount(t, env, tt, turtle.Left, "DIAMOND_PICKAXE")
	mount(t, env, tt, turtle.Right, "DIAMOND_SHOVEL")
	env.blocks[front] = "DIRT"

	left := turtle.Left
	if res := mustRun(t, env, tt, Dig{Dir: Forward, Side: &left}); res.Success {
		t.Fatalf("pickaxe side should refuse dirt")
	}
	if res := mustRun(t, env, tt, Dig{Dir: Forward}); !res.Success {
		t.Fatalf("shovel side should dig dirt: %+v", res)
	}
}

func TestDigWhileWindowOpenIsViolation(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	mount(t, env, tt, turtle.Left, "DIAMOND_PICKAXE")
	env.blocks[front] = "STONE"
	sess, err := env.capture.Begin(capture.BlockRegion(home, 0), func(s modelpkg.ItemStack) modelpkg.ItemStack { return s })
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer sess.End(nil)

	if _, err := (Dig{Dir: Forward}).Execute(env, tt); !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("want protocol violation, got %v", err)
	}
	if env.BlockAt(front) != "STONE" {
		t.Fatalf("block broken despite failed capture")
	}
}

func TestAttackKillsAndCapturesLoot(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	mount(t, env, tt, turtle.Left, "DIAMOND_SWORD")
	z := env.addActor("ZOMBIE", modelpkg.Vec3{X: 100.5, Y: 10, Z: 99.5})

	res := mustRun(t, env, tt, Attack{Dir: Forward})
	if !res.Success {
		t.Fatalf("attack failed: %q", res.Message)
	}
	if z.Alive() {
		t.Fatalf("zombie survived with hp %v", z.HP)
	}
	if got := tt.Inventory().StackInSlot(0); got.Item != "ROTTEN_FLESH" {
		t.Fatalf("loot not captured: %+v", got)
	}
	if len(env.spawned) != 0 {
		t.Fatalf("loot spawned: %v", env.spawned)
	}
}

func TestAttackBreaksPropInOneCall(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	mount(t, env, tt, turtle.Left, "DIAMOND_PICKAXE")
	stand := env.addActor("ARMOR_STAND", modelpkg.Vec3{X: 100.5, Y: 10, Z: 99.5})

	if res := mustRun(t, env, tt, Attack{Dir: Forward}); !res.Success {
		t.Fatalf("attack failed: %q", res.Message)
	}
	if !stand.Dead {
		t.Fatalf("prop should break on the double hit")
	}
}

func TestAttackFailures(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	mount(t, env, tt, turtle.Left, "DIAMOND_SWORD")

	if res := mustRun(t, env, tt, Attack{Dir: Forward}); res.Message != "Nothing to attack here" {
		t.Fatalf("empty: %+v", res)
	}
	display := env.addActor("ITEM_DISPLAY", modelpkg.Vec3{X: 100.5, Y: 10, Z: 99.5})
	if res := mustRun(t, env, tt, Attack{Dir: Forward}); res.Message != "Nothing to attack here" || display.Dead {
		t.Fatalf("unattackable: %+v", res)
	}
	env.actors = nil
	sheep := env.addActor("SHEEP", modelpkg.Vec3{X: 100.5, Y: 10, Z: 99.5})
	env.noDamage = true
	if res := mustRun(t, env, tt, Attack{Dir: Forward}); res.Success || sheep.HP != sheep.MaxHP {
		t.Fatalf("damage gate ignored: %+v hp=%v", res, sheep.HP)
	}
	if env.capture.Active() {
		t.Fatalf("capture window left open after failure")
	}
}

func TestEquipRejectsNonUpgrade(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	tt.SetSelectedStack(modelpkg.Stack("DIRT", 5))
	before := tt.Inventory().List()

	res := mustRun(t, env, tt, Equip{Side: turtle.Left})
	if res.Success || res.Message != "Not a valid upgrade" {
		t.Fatalf("got %+v", res)
	}
	if !sameStacks(before, tt.Inventory().List()) || tt.Upgrade(turtle.Left) != nil {
		t.Fatalf("failed equip mutated state")
	}
}

func TestEquipSwapAndUnequip(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	tt.SetSelectedStack(modelpkg.Stack("DIAMOND_PICKAXE", 1))

	if res := mustRun(t, env, tt, Equip{Side: turtle.Left}); !res.Success {
		t.Fatalf("equip: %+v", res)
	}
	if tt.Tool(turtle.Left) == nil || !tt.SelectedStack().Empty() {
		t.Fatalf("pickaxe not mounted")
	}

	tt.SetSelectedStack(modelpkg.Stack("DIAMOND_SWORD", 1))
	if res := mustRun(t, env, tt, Equip{Side: turtle.Left}); !res.Success {
		t.Fatalf("swap: %+v", res)
	}
	if tt.Tool(turtle.Left).ToolKind() != "SWORD" || tt.SelectedStack().Item != "DIAMOND_PICKAXE" {
		t.Fatalf("swap result: mounted=%v selected=%+v", tt.Upgrade(turtle.Left), tt.SelectedStack())
	}

	tt.Select(5)
	if res := mustRun(t, env, tt, Equip{Side: turtle.Left}); !res.Success {
		t.Fatalf("unequip: %+v", res)
	}
	if tt.Upgrade(turtle.Left) != nil || tt.SelectedStack().Item != "DIAMOND_SWORD" {
		t.Fatalf("unequip result: selected=%+v", tt.SelectedStack())
	}
	if anims := tt.DrainAnimations(); len(anims) != 3 {
		t.Fatalf("anims=%v", anims)
	}

	tt.Select(6)
	if res := mustRun(t, env, tt, Equip{Side: turtle.Right}); !res.Success {
		t.Fatalf("noop equip: %+v", res)
	}
	if anims := tt.DrainAnimations(); len(anims) != 0 {
		t.Fatalf("noop equip animated: %v", anims)
	}
}

func TestEquipDropsOldUpgradeWhenFull(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	mount(t, env, tt, turtle.Left, "DIAMOND_PICKAXE")
	for i := 0; i < turtle.InventorySize; i++ {
		tt.Inventory().SetStackInSlot(i, modelpkg.Stack("DIRT", 64))
	}
	tt.SetSelectedStack(modelpkg.Stack("WIRELESS_MODEM", 2))

	if res := mustRun(t, env, tt, Equip{Side: turtle.Left}); !res.Success {
		t.Fatalf("equip: %+v", res)
	}
	if tt.SelectedStack().Count != 1 {
		t.Fatalf("one modem should be consumed: %+v", tt.SelectedStack())
	}
	if len(env.dropped) != 1 || env.dropped[0].stack.Item != "DIAMOND_PICKAXE" || env.dropped[0].dir != modelpkg.North {
		t.Fatalf("old upgrade not dropped along facing: %+v", env.dropped)
	}
}

func TestMoveAndTurn(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)

	if res := mustRun(t, env, tt, Move{Dir: Forward}); !res.Success {
		t.Fatalf("move: %+v", res)
	}
	if tt.Pos() != front || tt.Fuel() != 9 || env.BlockAt(home) != "AIR" || env.BlockAt(front) != "TURTLE" {
		t.Fatalf("pos=%v fuel=%d", tt.Pos(), tt.Fuel())
	}
	if res := mustRun(t, env, tt, Move{Dir: Down}); res.Message != "Movement obstructed" || tt.Fuel() != 9 {
		t.Fatalf("down into floor: %+v", res)
	}
	mustRun(t, env, tt, Turn{Side: turtle.Left})
	if tt.Facing() != modelpkg.West {
		t.Fatalf("facing=%v", tt.Facing())
	}
	tt.SetFuel(0)
	if res := mustRun(t, env, tt, Move{Dir: Forward}); res.Message != "Out of fuel" || tt.Pos() != front {
		t.Fatalf("no fuel: %+v", res)
	}
	tt.SetFuel(5)
	tt.SetPos(modelpkg.Vec3i{X: 100, Y: env.tun.World.MaxY, Z: 99})
	if res := mustRun(t, env, tt, Move{Dir: Up}); res.Message != "Too high to move" {
		t.Fatalf("ceiling: %+v", res)
	}
}

func TestDetectInspectCompare(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)

	if res := mustRun(t, env, tt, Detect{Dir: Down}); !res.Success {
		t.Fatalf("floor not detected")
	}
	if res := mustRun(t, env, tt, Detect{Dir: Forward}); res.Success {
		t.Fatalf("air detected")
	}
	if res := mustRun(t, env, tt, Inspect{Dir: Forward}); res.Message != "No block to inspect" {
		t.Fatalf("inspect air: %+v", res)
	}
	res := mustRun(t, env, tt, Inspect{Dir: Down})
	if !res.Success || len(res.Values) != 1 {
		t.Fatalf("inspect floor: %+v", res)
	}
	if desc := res.Values[0].(map[string]any); desc["name"] != "STONE" {
		t.Fatalf("descriptor: %v", desc)
	}
	if res := mustRun(t, env, tt, Compare{Dir: Forward}); !res.Success {
		t.Fatalf("empty slot should compare equal to air")
	}
	tt.SetSelectedStack(modelpkg.Stack("STONE", 1))
	if res := mustRun(t, env, tt, Compare{Dir: Down}); !res.Success {
		t.Fatalf("stone should match floor")
	}
	if res := mustRun(t, env, tt, Compare{Dir: Forward}); res.Success {
		t.Fatalf("stone should not match air")
	}
}

func TestDropIntoContainerAndWorld(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	tt.SetSelectedStack(modelpkg.Stack("DIRT", 10))

	if res := mustRun(t, env, tt, Drop{Dir: Forward, Quantity: 4}); !res.Success {
		t.Fatalf("drop: %+v", res)
	}
	if len(env.dropped) != 1 || env.dropped[0].stack.Count != 4 || tt.SelectedStack().Count != 6 {
		t.Fatalf("world drop: %+v", env.dropped)
	}

	chest := env.addChest(front)
	if res := mustRun(t, env, tt, Drop{Dir: Forward, Quantity: 64}); !res.Success {
		t.Fatalf("drop into chest: %+v", res)
	}
	if chest.Total() != 6 || !tt.SelectedStack().Empty() {
		t.Fatalf("chest=%d selected=%+v", chest.Total(), tt.SelectedStack())
	}
	if res := mustRun(t, env, tt, Drop{Dir: Forward, Quantity: 64}); res.Message != "No items to drop" {
		t.Fatalf("empty: %+v", res)
	}
}

func TestSelectTransferRefuelQueries(t *testing.T) {
	env := newStubEnv(t)
	tt := env.newTurtle(home)
	tt.SetSelectedStack(modelpkg.Stack("COAL", 10))

	if res := mustRun(t, env, tt, TransferTo{Slot: 3, Quantity: 4}); !res.Success {
		t.Fatalf("transfer: %+v", res)
	}
	if tt.Inventory().StackInSlot(3).Count != 4 || tt.SelectedStack().Count != 6 {
		t.Fatalf("transfer result: %+v", tt.Inventory().List())
	}

	if res := mustRun(t, env, tt, Refuel{Quantity: 2}); !res.Success {
		t.Fatalf("refuel: %+v", res)
	}
	if tt.Fuel() != 10+2*80 || tt.SelectedStack().Count != 4 {
		t.Fatalf("fuel=%d selected=%+v", tt.Fuel(), tt.SelectedStack())
	}

	if res := mustRun(t, env, tt, Select{Slot: 3}); !res.Success || tt.Selected() != 3 {
		t.Fatalf("select: %+v", res)
	}
	if res := mustRun(t, env, tt, ItemQuery{Kind: "getItemCount", Slot: -1}); res.Values[0] != 4 {
		t.Fatalf("count: %+v", res)
	}
	if res := mustRun(t, env, tt, ItemQuery{Kind: "getItemSpace", Slot: 3}); res.Values[0] != 60 {
		t.Fatalf("space: %+v", res)
	}
	if res := mustRun(t, env, tt, SelectedSlot{}); res.Values[0] != 4 {
		t.Fatalf("selected slot: %+v", res)
	}
	if res := mustRun(t, env, tt, FuelLevel{}); res.Values[0] != 170 {
		t.Fatalf("fuel level: %+v", res)
	}

	tt.SetSelectedStack(modelpkg.Stack("DIRT", 1))
	if res := mustRun(t, env, tt, Refuel{Quantity: 1}); res.Message != "Items not combustible" {
		t.Fatalf("dirt: %+v", res)
	}
}

func TestDecode(t *testing.T) {
	q := func(n int) *int { return &n }
	cmd, err := Decode(protocol.CommandMsg{Verb: "suck", Direction: "up", Quantity: q(5)})
	if err != nil {
		t.Fatalf("decode suck: %v", err)
	}
	if s, ok := cmd.(Suck); !ok || s.Dir != Up || s.Quantity != 5 {
		t.Fatalf("suck: %#v", cmd)
	}
	cmd, err = Decode(protocol.CommandMsg{Verb: "place", Args: []any{"Hi"}})
	if err != nil || cmd.(Place).Dir != Forward {
		t.Fatalf("place default direction: %#v %v", cmd, err)
	}
	cmd, err = Decode(protocol.CommandMsg{Verb: "select", Slot: q(16)})
	if err != nil || cmd.(Select).Slot != 15 {
		t.Fatalf("select: %#v %v", cmd, err)
	}

	bad := []protocol.CommandMsg{
		{Verb: "suck", Quantity: q(65)},
		{Verb: "suck", Quantity: q(-1)},
		{Verb: "select", Slot: q(17)},
		{Verb: "select"},
		{Verb: "place", Direction: "back"},
		{Verb: "equip", Side: "top"},
	}
	for _, m := range bad {
		var argErr ArgumentError
		if _, err := Decode(m); !errors.As(err, &argErr) {
			t.Fatalf("%+v: want argument error, got %v", m, err)
		}
	}
	var unknown UnknownVerbError
	if _, err := Decode(protocol.CommandMsg{Verb: "craft"}); !errors.As(err, &unknown) {
		t.Fatalf("craft: %v", err)
	}
}
