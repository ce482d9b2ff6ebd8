package model

// ItemEntity is a loose item stack lying in the world (mining drops, ejected items).
type ItemEntity struct {
	EntityID    string
	Pos         Vec3
	Stack       ItemStack
	CreatedTick uint64
	ExpiresTick uint64
}

func (e *ItemEntity) ID() string { return e.EntityID }

func (e *ItemEntity) Alive() bool { return e != nil && !e.Stack.Empty() }
