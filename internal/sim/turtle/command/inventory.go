package command

import (
	"turtlecraft.ai/internal/sim/turtle"
	"turtlecraft.ai/internal/sim/turtle/transfer"
	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

// Drop moves up to Quantity items from the selected slot into the inventory
// in Dir, or throws them into the world when there is none.
type Drop struct {
	Dir      RelDir
	Quantity int
}

func (Drop) Verb() string { return "drop" }

func (c Drop) Execute(env Env, t *turtle.Turtle) (Result, error) {
	if c.Quantity < 0 || c.Quantity > maxQuantity {
		return Result{}, ArgumentError("Quantity out of range")
	}
	if c.Quantity == 0 {
		return Success(), nil
	}
	inv := t.Inventory()
	stack := inv.Extract(t.Selected(), c.Quantity, true)
	if stack.Empty() {
		return Failure("No items to drop"), nil
	}
	dir := c.Dir.World(t.Facing())
	target := t.Pos().Offset(dir)

	dst, ok := env.InventoryAt(target, dir.Opposite())
	if !ok {
		got := inv.Extract(t.Selected(), stack.Count, false)
		env.DropItem(t.Pos(), dir, got)
		t.Animate(turtle.AnimWait)
		return Success(), nil
	}

	store, err := transfer.PlanStore(dst, stack, 0)
	if err != nil {
		return Result{}, err
	}
	if store.Moved() == 0 {
		return Failure("No space for items"), nil
	}
	got := inv.Extract(t.Selected(), store.Moved(), false)
	if got.Count != store.Moved() {
		// Put it back before failing.
		inv.Insert(t.Selected(), got, false)
		return Result{}, violationf("turtle slot yielded %d, planned %d", got.Count, store.Moved())
	}
	if left := store.Commit(); !left.Empty() {
		env.Logf("turtle %s: %d %s refused by %v after committed drop", t.ID(), left.Count, left.Item, target)
		if err := storeOrDrop(env, t, left); err != nil {
			return Result{}, err
		}
	}
	t.Animate(turtle.AnimWait)
	return Success(), nil
}

// Select changes the selected slot (0-based).
type Select struct {
	Slot int
}

func (Select) Verb() string { return "select" }

func (c Select) Execute(env Env, t *turtle.Turtle) (Result, error) {
	if !t.Select(c.Slot) {
		return Result{}, ArgumentError("Slot out of range")
	}
	return Success(), nil
}

// TransferTo moves up to Quantity items from the selected slot into Slot.
type TransferTo struct {
	Slot     int
	Quantity int
}

func (TransferTo) Verb() string { return "transferTo" }

func (c TransferTo) Execute(env Env, t *turtle.Turtle) (Result, error) {
	if c.Slot < 0 || c.Slot >= turtle.InventorySize {
		return Result{}, ArgumentError("Slot out of range")
	}
	inv := t.Inventory()
	src := t.Selected()
	stack := inv.Extract(src, c.Quantity, true)
	if stack.Empty() || c.Slot == src {
		return Success(), nil
	}
	rem := inv.Insert(c.Slot, stack, true)
	moved := stack.Count - rem.Count
	if moved <= 0 {
		return Failure("No space for items"), nil
	}
	got := inv.Extract(src, moved, false)
	if rest := inv.Insert(c.Slot, got, false); !rest.Empty() {
		inv.Insert(src, rest, false)
	}
	return Success(), nil
}

// Refuel burns up to Quantity items from the selected slot.
type Refuel struct {
	Quantity int
}

func (Refuel) Verb() string { return "refuel" }

func (c Refuel) Execute(env Env, t *turtle.Turtle) (Result, error) {
	if c.Quantity < 0 || c.Quantity > maxQuantity {
		return Result{}, ArgumentError("Quantity out of range")
	}
	stack := t.SelectedStack()
	if stack.Empty() {
		return Failure("No items to combust"), nil
	}
	value := env.Catalogs().Items.Defs[stack.Item].FuelValue
	if value <= 0 {
		return Failure("Items not combustible"), nil
	}
	if c.Quantity == 0 || !t.NeedsFuel() {
		return Success(), nil
	}
	n := c.Quantity
	if n > stack.Count {
		n = stack.Count
	}
	if limit := t.FuelLimit(); limit > 0 {
		if room := (limit - t.Fuel()) / value; n > room {
			n = room
		}
	}
	if n <= 0 {
		return Success(), nil
	}
	t.Inventory().Extract(t.Selected(), n, false)
	t.SetFuel(t.Fuel() + n*value)
	t.Animate(turtle.AnimWait)
	return Success(), nil
}

// ItemQuery answers getItemCount, getItemSpace and getItemDetail. Slot -1
// means the selected slot.
type ItemQuery struct {
	Kind string
	Slot int
}

func (c ItemQuery) Verb() string { return c.Kind }

func (c ItemQuery) Execute(env Env, t *turtle.Turtle) (Result, error) {
	slot := c.Slot
	if slot < 0 {
		slot = t.Selected()
	}
	if slot >= turtle.InventorySize {
		return Result{}, ArgumentError("Slot out of range")
	}
	inv := t.Inventory()
	stack := inv.StackInSlot(slot)
	switch c.Kind {
	case "getItemCount":
		return Success(stack.Count), nil
	case "getItemSpace":
		if stack.Empty() {
			return Success(modelpkg.DefaultStackLimit), nil
		}
		return Success(inv.StackLimit(stack.Item) - stack.Count), nil
	default:
		if stack.Empty() {
			return Success(nil), nil
		}
		detail := map[string]any{"name": stack.Item, "count": stack.Count}
		if stack.Label != "" {
			detail["label"] = stack.Label
		}
		return Success(detail), nil
	}
}

type FuelLevel struct{}

func (FuelLevel) Verb() string { return "getFuelLevel" }

func (FuelLevel) Execute(env Env, t *turtle.Turtle) (Result, error) {
	if !t.NeedsFuel() {
		return Success("unlimited"), nil
	}
	return Success(t.Fuel()), nil
}

// SelectedSlot reports the 1-based selected slot.
type SelectedSlot struct{}

func (SelectedSlot) Verb() string { return "getSelectedSlot" }

func (SelectedSlot) Execute(env Env, t *turtle.Turtle) (Result, error) {
	return Success(t.Selected() + 1), nil
}
