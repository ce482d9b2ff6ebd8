package command

import (
	"fmt"

	"turtlecraft.ai/internal/sim/turtle"
	"turtlecraft.ai/internal/sim/turtle/transfer"
	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

// Suck pulls up to Quantity items from the inventory in Dir, or from one loose
// item entity lying in the block space there.
type Suck struct {
	Dir      RelDir
	Quantity int
}

func (Suck) Verb() string { return "suck" }

func (c Suck) Execute(env Env, t *turtle.Turtle) (Result, error) {
	if c.Quantity < 0 || c.Quantity > maxQuantity {
		return Result{}, ArgumentError("Quantity out of range")
	}
	if c.Quantity == 0 {
		return Success(), nil
	}
	dir := c.Dir.World(t.Facing())
	target := t.Pos().Offset(dir)
	if inv, ok := env.InventoryAt(target, dir.Opposite()); ok {
		return suckInventory(env, t, inv, c.Quantity)
	}
	return suckEntities(env, t, target, c.Quantity)
}

func suckInventory(env Env, t *turtle.Turtle, src transfer.ItemHandler, quantity int) (Result, error) {
	take, err := transfer.PlanTake(src, quantity)
	if err != nil {
		return Result{}, err
	}
	if take.Empty() {
		return Failure("No items to take"), nil
	}
	store, err := transfer.PlanStore(t.Inventory(), take.Stack, t.Selected())
	if err != nil {
		return Result{}, err
	}
	if store.Remainder.Equal(take.Stack) {
		return Failure("No space for items"), nil
	}
	committed := take.Stack.Count - store.Remainder.Count

	exact, err := transfer.PlanTake(src, committed)
	if err != nil {
		return Result{}, err
	}
	got, err := exact.Commit()
	if err != nil {
		return Result{}, err
	}
	if got.Count != committed || !got.CanStack(take.Stack) {
		return Result{}, fmt.Errorf("%w: extracted %d %s, expected %d %s", ErrProtocolViolation, got.Count, got.Item, committed, take.Stack.Item)
	}
	left, err := transfer.StoreAll(t.Inventory(), got, t.Selected())
	if err != nil {
		return Result{}, err
	}
	if !left.Empty() {
		env.Logf("turtle %s: %d %s left over after committed suck", t.ID(), left.Count, left.Item)
		dropAt(env, t, t.Facing().Opposite())(left)
	}
	t.Animate(turtle.AnimWait)
	return Success(), nil
}

func suckEntities(env Env, t *turtle.Turtle, target modelpkg.Vec3i, quantity int) (Result, error) {
	ents := env.ItemEntitiesIn(modelpkg.BlockBox(target))
	if len(ents) == 0 {
		return Failure("No items to take"), nil
	}
	for _, e := range ents {
		stack := e.Stack
		if stack.Empty() {
			continue
		}
		take, rest := stack.Split(quantity)
		rem, err := transfer.StoreAll(t.Inventory(), take, t.Selected())
		if err != nil {
			return Result{}, err
		}
		if rem.Count >= take.Count && !rem.Empty() {
			continue
		}
		left := rest.Count + rem.Count
		env.SetItemEntityStack(e.ID(), stack.WithCount(left))
		env.PlayEffect("item_pickup", target)
		t.Animate(turtle.AnimWait)
		return Success(), nil
	}
	return Failure("No space for items"), nil
}
