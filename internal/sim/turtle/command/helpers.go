package command

import (
	"fmt"

	"turtlecraft.ai/internal/sim/turtle"
	"turtlecraft.ai/internal/sim/turtle/transfer"
	"turtlecraft.ai/internal/sim/world/capture"
	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

const airBlock = "AIR"

// intoTurtle is the capture redirect: drops go into the turtle inventory
// starting at the selected slot.
func intoTurtle(env Env, t *turtle.Turtle) capture.Redirect {
	return func(stack modelpkg.ItemStack) modelpkg.ItemStack {
		rem, err := transfer.StoreAll(t.Inventory(), stack, t.Selected())
		if err != nil {
			env.Logf("turtle %s: capture store failed: %v", t.ID(), err)
			return stack
		}
		return rem
	}
}

// dropAt returns a flush func ejecting stacks from the turtle along dir.
func dropAt(env Env, t *turtle.Turtle, dir modelpkg.Direction) func(modelpkg.ItemStack) {
	pos := t.Pos()
	return func(stack modelpkg.ItemStack) {
		env.DropItem(pos, dir, stack)
	}
}

// storeOrDrop stores stack into the turtle from the selected slot, ejecting
// overflow along the turtle's facing.
func storeOrDrop(env Env, t *turtle.Turtle, stack modelpkg.ItemStack) error {
	if stack.Empty() {
		return nil
	}
	rem, err := transfer.StoreAll(t.Inventory(), stack, t.Selected())
	if err != nil {
		return err
	}
	if !rem.Empty() {
		env.DropItem(t.Pos(), t.Facing(), rem)
	}
	return nil
}

// unloadProxy writes the proxy's held stack back to the selected slot and
// stores whatever else it picked up.
func unloadProxy(env Env, t *turtle.Turtle, p Proxy) error {
	t.SetSelectedStack(p.Held())
	for _, st := range p.TakeExtras() {
		if err := storeOrDrop(env, t, st); err != nil {
			return err
		}
	}
	return nil
}

func violationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrProtocolViolation}, args...)...)
}
