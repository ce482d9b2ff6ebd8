// Package command implements turtle verbs. A Command is decoded once per
// request and executed synchronously on the world loop against an Env.
//
// Expected failures (nothing to dig, no space) come back as a failed Result
// and leave inventory, fuel and world untouched. A non-nil error means a
// collaborator broke its contract and is never converted into a success.
package command

import (
	"turtlecraft.ai/internal/sim/catalogs"
	"turtlecraft.ai/internal/sim/tuning"
	"turtlecraft.ai/internal/sim/turtle"
	"turtlecraft.ai/internal/sim/turtle/transfer"
	"turtlecraft.ai/internal/sim/turtle/upgrades"
	"turtlecraft.ai/internal/sim/world/capture"
	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

// ErrProtocolViolation marks a collaborator reporting an impossible delta.
var ErrProtocolViolation = transfer.ErrProtocolViolation

type Result struct {
	Success bool
	Message string
	Values  []any
}

func Success(values ...any) Result { return Result{Success: true, Values: values} }

func Failure(msg string) Result { return Result{Message: msg} }

type Command interface {
	Verb() string
	Execute(env Env, t *turtle.Turtle) (Result, error)
}

// Env is the world surface commands run against.
type Env interface {
	Catalogs() *catalogs.Catalogs
	Upgrades() *upgrades.Registry
	Tuning() tuning.Tuning
	Logf(format string, args ...any)

	BlockAt(pos modelpkg.Vec3i) string
	InBuildLimits(pos modelpkg.Vec3i) bool
	IsLiquid(pos modelpkg.Vec3i) bool
	SolidActorAt(pos modelpkg.Vec3i) bool
	// RayTraceActor returns the first live actor hit within maxDist and the hit point.
	RayTraceActor(from, dir modelpkg.Vec3, maxDist float64) (*modelpkg.Actor, modelpkg.Vec3, bool)
	ItemEntitiesIn(box modelpkg.AABB) []*modelpkg.ItemEntity
	// SetItemEntityStack replaces an entity's stack; an empty stack removes it.
	SetItemEntityStack(id string, stack modelpkg.ItemStack)
	SpawnItem(pos modelpkg.Vec3, stack modelpkg.ItemStack)
	// DropItem ejects stack from the block at from, offset along dir.
	DropItem(from modelpkg.Vec3i, dir modelpkg.Direction, stack modelpkg.ItemStack)
	PlayEffect(effect string, pos modelpkg.Vec3i)
	MoveTurtle(t *turtle.Turtle, to modelpkg.Vec3i)

	NewProxy(owner string, pos modelpkg.Vec3i, facing modelpkg.Direction, held modelpkg.ItemStack) Proxy

	EditableForPlacement(pos modelpkg.Vec3i, owner string) bool
	EditableForBreaking(pos modelpkg.Vec3i, owner string) bool
	PreBreak(pos modelpkg.Vec3i, owner string) bool
	CanDamage(pos modelpkg.Vec3i, owner string) bool

	InventoryAt(pos modelpkg.Vec3i, side modelpkg.Direction) (transfer.ItemHandler, bool)
	Capture() *capture.Slot
}

// Proxy is a transient stand-in for the turtle that applies the world's native
// interaction rules. It holds a single item stack.
type Proxy interface {
	// InteractAt is the context-aware interaction at the hit point (e.g. swapping a prop's item).
	InteractAt(a *modelpkg.Actor, hit modelpkg.Vec3) bool
	Interact(a *modelpkg.Actor) bool
	UseOnActor(a *modelpkg.Actor) bool
	// PlaceAgainst uses the held item on face of anchor. lines is sign text (nil for none).
	PlaceAgainst(anchor modelpkg.Vec3i, face modelpkg.Direction, lines []string) bool

	AttackDamage() float64
	Attack(a *modelpkg.Actor, damage float64) bool

	CanHarvest(pos modelpkg.Vec3i) bool
	MiningProgress(pos modelpkg.Vec3i) float64
	// RemoveBlock swaps the block for its broken state, reporting whether it changed.
	RemoveBlock(pos modelpkg.Vec3i) bool
	HarvestDrops(pos modelpkg.Vec3i, block string)

	Held() modelpkg.ItemStack
	// TakeExtras drains items the proxy gained besides its held stack.
	TakeExtras() []modelpkg.ItemStack
}

// ArgumentError is a request the verb rejects before running (bad slot, quantity).
type ArgumentError string

func (e ArgumentError) Error() string { return string(e) }

// RelDir is a direction relative to the turtle.
type RelDir int

const (
	Forward RelDir = iota
	Back
	Up
	Down
)

func (r RelDir) String() string {
	switch r {
	case Back:
		return "back"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "forward"
	}
}

// World resolves r against facing.
func (r RelDir) World(facing modelpkg.Direction) modelpkg.Direction {
	switch r {
	case Back:
		return facing.Opposite()
	case Up:
		return modelpkg.Up
	case Down:
		return modelpkg.Down
	default:
		return facing
	}
}
