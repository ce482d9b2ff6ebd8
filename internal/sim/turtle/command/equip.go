package command

import (
	"turtlecraft.ai/internal/sim/turtle"
	"turtlecraft.ai/internal/sim/turtle/upgrades"
)

// Equip swaps the upgrade on Side with the one in the selected slot. An empty
// slot unequips.
type Equip struct {
	Side turtle.Side
}

func (Equip) Verb() string { return "equip" }

func (c Equip) Execute(env Env, t *turtle.Turtle) (Result, error) {
	selected := t.SelectedStack()
	var next upgrades.Upgrade
	if !selected.Empty() {
		u, ok := env.Upgrades().ForItem(selected)
		if !ok {
			return Failure("Not a valid upgrade"), nil
		}
		next = u
	}
	prev := t.Upgrade(c.Side)
	if prev == nil && next == nil {
		return Success(), nil
	}

	if next != nil {
		t.Inventory().Extract(t.Selected(), 1, false)
	}
	if prev != nil {
		if err := storeOrDrop(env, t, prev.CraftingItem()); err != nil {
			return Result{}, err
		}
	}
	t.SetUpgrade(c.Side, next)
	t.Animate(turtle.AnimUpgrade)
	return Success(), nil
}
