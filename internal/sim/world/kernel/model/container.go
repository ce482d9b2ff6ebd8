package model

import "turtlecraft.ai/internal/sim/world/logic/ids"

// Container is the authoritative inventory state for blocks like CHEST/BARREL.
type Container struct {
	Type string
	Pos  Vec3i
	Slots
}

func NewContainer(typ string, pos Vec3i, size int, limit StackLimitFunc) *Container {
	return &Container{Type: typ, Pos: pos, Slots: NewSlots(size, limit)}
}

func (c *Container) ID() string { return ContainerID(c.Type, c.Pos) }

func ContainerID(typ string, pos Vec3i) string {
	return ids.ContainerID(typ, pos.X, pos.Y, pos.Z)
}

func ParseContainerID(id string) (typ string, pos Vec3i, ok bool) {
	typ, x, y, z, ok := ids.ParseContainerID(id)
	if !ok {
		return "", Vec3i{}, false
	}
	return typ, Vec3i{X: x, Y: y, Z: z}, true
}
