package world

import modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"

type Vec3i = modelpkg.Vec3i
type Vec3 = modelpkg.Vec3
type AABB = modelpkg.AABB

var BlockBox = modelpkg.BlockBox

type Direction = modelpkg.Direction
type ItemStack = modelpkg.ItemStack
type ItemEntity = modelpkg.ItemEntity
type Actor = modelpkg.Actor
type Container = modelpkg.Container
type Sign = modelpkg.Sign
type ClaimFlags = modelpkg.ClaimFlags
type LandClaim = modelpkg.LandClaim

const (
	Down  = modelpkg.Down
	Up    = modelpkg.Up
	North = modelpkg.North
	South = modelpkg.South
	West  = modelpkg.West
	East  = modelpkg.East
)
