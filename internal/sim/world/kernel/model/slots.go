package model

// DefaultStackLimit is used when no per-item limit is known.
const DefaultStackLimit = 64

// StackLimitFunc reports the maximum stack size for an item kind.
type StackLimitFunc func(item string) int

// Slots is a fixed-size slotted inventory with dry-run capable transfers.
// Both block containers and the turtle's own inventory are built on it.
type Slots struct {
	stacks []ItemStack
	limit  StackLimitFunc
}

func NewSlots(size int, limit StackLimitFunc) Slots {
	return Slots{stacks: make([]ItemStack, size), limit: limit}
}

func (s *Slots) Size() int { return len(s.stacks) }

func (s *Slots) StackInSlot(slot int) ItemStack {
	if slot < 0 || slot >= len(s.stacks) {
		return ItemStack{}
	}
	return s.stacks[slot]
}

func (s *Slots) SetStackInSlot(slot int, stack ItemStack) {
	if slot < 0 || slot >= len(s.stacks) {
		return
	}
	s.stacks[slot] = stack.normalized()
}

func (s *Slots) StackLimit(item string) int {
	if s.limit == nil {
		return DefaultStackLimit
	}
	if n := s.limit(item); n > 0 {
		return n
	}
	return DefaultStackLimit
}

// Extract removes up to amount items from slot. With simulate set nothing changes.
func (s *Slots) Extract(slot, amount int, simulate bool) ItemStack {
	cur := s.StackInSlot(slot)
	if cur.Empty() || amount <= 0 {
		return ItemStack{}
	}
	taken, rest := cur.Split(amount)
	if !simulate {
		s.stacks[slot] = rest
	}
	return taken
}

// Insert merges stack into slot and returns what did not fit.
func (s *Slots) Insert(slot int, stack ItemStack, simulate bool) ItemStack {
	if stack.Empty() || slot < 0 || slot >= len(s.stacks) {
		return stack
	}
	cur := s.stacks[slot]
	if !cur.Empty() && !cur.CanStack(stack) {
		return stack
	}
	limit := s.StackLimit(stack.Item)
	room := limit - cur.Count
	if room <= 0 {
		return stack
	}
	moved, rest := stack.Split(room)
	if !simulate {
		if cur.Empty() {
			s.stacks[slot] = moved
		} else {
			cur.Count += moved.Count
			s.stacks[slot] = cur
		}
	}
	return rest
}

// Total counts all items held.
func (s *Slots) Total() int {
	n := 0
	for _, st := range s.stacks {
		if !st.Empty() {
			n += st.Count
		}
	}
	return n
}

func (s *Slots) List() []ItemStack {
	out := make([]ItemStack, len(s.stacks))
	copy(out, s.stacks)
	return out
}
