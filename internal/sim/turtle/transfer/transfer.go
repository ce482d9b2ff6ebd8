// Package transfer moves items between slotted inventories in two phases: a pure
// plan computed from dry-run (simulate) calls, and a Commit that performs the
// planned per-slot moves for real.
package transfer

import (
	"errors"
	"fmt"

	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

// ItemHandler is a slotted inventory supporting dry-run transfers.
// With simulate set, Extract and Insert must not change anything.
type ItemHandler interface {
	Size() int
	StackInSlot(slot int) modelpkg.ItemStack
	StackLimit(item string) int
	Extract(slot, amount int, simulate bool) modelpkg.ItemStack
	// Insert returns the part of stack that did not fit.
	Insert(slot int, stack modelpkg.ItemStack, simulate bool) modelpkg.ItemStack
}

// ErrProtocolViolation marks an inventory reporting a delta that contradicts the
// request or the plan (e.g. extracting more than asked).
var ErrProtocolViolation = errors.New("transfer: inventory protocol violation")

type slotDelta struct {
	slot  int
	count int
}

// Take is a planned extraction of one stackable kind of item.
type Take struct {
	Stack   modelpkg.ItemStack
	handler ItemHandler
	slots   []slotDelta
}

// PlanTake computes which slots would supply up to limit items. The first
// non-empty slot fixes the item kind and caps limit at its stack size.
func PlanTake(h ItemHandler, limit int) (Take, error) {
	t := Take{handler: h}
	for slot := 0; slot < h.Size() && limit > 0; slot++ {
		got := h.Extract(slot, limit, true)
		if got.Empty() {
			continue
		}
		if got.Count > limit {
			return Take{}, fmt.Errorf("%w: simulated extract of %d from slot %d returned %d", ErrProtocolViolation, limit, slot, got.Count)
		}
		if t.Stack.Empty() {
			t.Stack = got
			if max := h.StackLimit(got.Item); max > 0 && limit > max {
				limit = max
			}
			if got.Count > limit {
				got = got.WithCount(limit)
				t.Stack = got
			}
		} else if t.Stack.CanStack(got) {
			t.Stack.Count += got.Count
		} else {
			continue
		}
		t.slots = append(t.slots, slotDelta{slot: slot, count: got.Count})
		limit -= got.Count
	}
	return t, nil
}

func (t Take) Empty() bool { return t.Stack.Empty() }

// Commit extracts the planned amounts for real. Any slot yielding something
// other than planned is a protocol violation.
func (t Take) Commit() (modelpkg.ItemStack, error) {
	var out modelpkg.ItemStack
	for _, d := range t.slots {
		got := t.handler.Extract(d.slot, d.count, false)
		if got.Count != d.count || !got.CanStack(t.Stack) {
			return out, fmt.Errorf("%w: slot %d yielded %d %s, planned %d %s", ErrProtocolViolation, d.slot, got.Count, got.Item, d.count, t.Stack.Item)
		}
		if out.Empty() {
			out = got
		} else {
			out.Count += got.Count
		}
	}
	return out, nil
}

// Store is a planned insertion; Remainder is what the plan could not place.
type Store struct {
	Stack     modelpkg.ItemStack
	Remainder modelpkg.ItemStack
	handler   ItemHandler
	slots     []slotDelta
}

// PlanStore computes how stack would spread over h, trying slots from begin to
// the end and then wrapping around to the slots before begin.
func PlanStore(h ItemHandler, stack modelpkg.ItemStack, begin int) (Store, error) {
	s := Store{Stack: stack, Remainder: stack, handler: h}
	n := h.Size()
	if stack.Empty() || n == 0 {
		return s, nil
	}
	if begin < 0 || begin >= n {
		begin = 0
	}
	for i := 0; i < n && !s.Remainder.Empty(); i++ {
		slot := (begin + i) % n
		rest := h.Insert(slot, s.Remainder, true)
		if !rest.Empty() && !rest.CanStack(s.Remainder) {
			return Store{}, fmt.Errorf("%w: simulated insert into slot %d returned %s", ErrProtocolViolation, slot, rest.Item)
		}
		moved := s.Remainder.Count - rest.Count
		if rest.Empty() {
			moved = s.Remainder.Count
		}
		if moved < 0 {
			return Store{}, fmt.Errorf("%w: simulated insert into slot %d grew the stack", ErrProtocolViolation, slot)
		}
		if moved == 0 {
			continue
		}
		s.slots = append(s.slots, slotDelta{slot: slot, count: moved})
		s.Remainder = s.Remainder.WithCount(s.Remainder.Count - moved)
	}
	return s, nil
}

// Moved is the number of items the plan places.
func (s Store) Moved() int {
	if s.Stack.Empty() {
		return 0
	}
	return s.Stack.Count - s.Remainder.Count
}

// Commit inserts the planned amounts for real and returns anything a slot
// refused despite the plan. The plan's own Remainder is not included.
func (s Store) Commit() modelpkg.ItemStack {
	var leftover modelpkg.ItemStack
	for _, d := range s.slots {
		rest := s.handler.Insert(d.slot, s.Stack.WithCount(d.count), false)
		if rest.Empty() {
			continue
		}
		if leftover.Empty() {
			leftover = rest
		} else {
			leftover.Count += rest.Count
		}
	}
	return leftover
}

// StoreAll plans and commits in one step, returning everything that did not go in.
func StoreAll(h ItemHandler, stack modelpkg.ItemStack, begin int) (modelpkg.ItemStack, error) {
	plan, err := PlanStore(h, stack, begin)
	if err != nil {
		return stack, err
	}
	leftover := plan.Commit()
	switch {
	case leftover.Empty():
		return plan.Remainder, nil
	case plan.Remainder.Empty():
		return leftover, nil
	default:
		leftover.Count += plan.Remainder.Count
		return leftover, nil
	}
}
