// Package turtle holds the state of one programmable turtle. Fields are private;
// verbs read and mutate it through accessors.
package turtle

import (
	"fmt"
	"strings"

	"turtlecraft.ai/internal/sim/turtle/upgrades"
	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

const InventorySize = 16

type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return Left, fmt.Errorf("unknown side %q", s)
	}
}

// Animation is a cosmetic event clients may render; it carries no state.
type Animation string

const (
	AnimMove    Animation = "MOVE"
	AnimTurn    Animation = "TURN"
	AnimSwing   Animation = "SWING"
	AnimWait    Animation = "WAIT"
	AnimUpgrade Animation = "UPGRADE"
)

type Config struct {
	ID        string
	Owner     string
	Pos       modelpkg.Vec3i
	Facing    modelpkg.Direction
	Fuel      int
	FuelLimit int
	NeedFuel  bool
	// StackLimit caps slot sizes per item (nil = 64 for everything).
	StackLimit modelpkg.StackLimitFunc
}

type Turtle struct {
	id    string
	owner string

	pos    modelpkg.Vec3i
	facing modelpkg.Direction

	fuel      int
	fuelLimit int
	needFuel  bool

	selected int
	inv      modelpkg.Slots
	mounts   [2]upgrades.Upgrade

	anims []Animation
}

func New(cfg Config) *Turtle {
	facing := cfg.Facing
	if !facing.Horizontal() {
		facing = modelpkg.North
	}
	t := &Turtle{
		id:        cfg.ID,
		owner:     cfg.Owner,
		pos:       cfg.Pos,
		facing:    facing,
		fuelLimit: cfg.FuelLimit,
		needFuel:  cfg.NeedFuel,
		inv:       modelpkg.NewSlots(InventorySize, cfg.StackLimit),
	}
	t.SetFuel(cfg.Fuel)
	return t
}

func (t *Turtle) ID() string    { return t.id }
func (t *Turtle) Owner() string { return t.owner }

func (t *Turtle) Pos() modelpkg.Vec3i        { return t.pos }
func (t *Turtle) SetPos(p modelpkg.Vec3i)    { t.pos = p }
func (t *Turtle) Facing() modelpkg.Direction { return t.facing }

// SetFacing ignores vertical directions; turtles only face horizontally.
func (t *Turtle) SetFacing(d modelpkg.Direction) {
	if d.Horizontal() {
		t.facing = d
	}
}

func (t *Turtle) NeedsFuel() bool { return t.needFuel }
func (t *Turtle) Fuel() int       { return t.fuel }
func (t *Turtle) FuelLimit() int  { return t.fuelLimit }

func (t *Turtle) SetFuel(n int) {
	if n < 0 {
		n = 0
	}
	if t.fuelLimit > 0 && n > t.fuelLimit {
		n = t.fuelLimit
	}
	t.fuel = n
}

// ConsumeFuel spends n fuel, reporting false (and spending nothing) when short.
func (t *Turtle) ConsumeFuel(n int) bool {
	if !t.needFuel || n <= 0 {
		return true
	}
	if t.fuel < n {
		return false
	}
	t.fuel -= n
	return true
}

// Selected is the 0-based selected slot.
func (t *Turtle) Selected() int { return t.selected }

func (t *Turtle) Select(slot int) bool {
	if slot < 0 || slot >= InventorySize {
		return false
	}
	t.selected = slot
	return true
}

// Inventory is the turtle's 16-slot handler.
func (t *Turtle) Inventory() *modelpkg.Slots { return &t.inv }

func (t *Turtle) SelectedStack() modelpkg.ItemStack { return t.inv.StackInSlot(t.selected) }

func (t *Turtle) SetSelectedStack(s modelpkg.ItemStack) { t.inv.SetStackInSlot(t.selected, s) }

func (t *Turtle) Upgrade(side Side) upgrades.Upgrade {
	if side != Left && side != Right {
		return nil
	}
	return t.mounts[side]
}

func (t *Turtle) SetUpgrade(side Side, u upgrades.Upgrade) {
	if side != Left && side != Right {
		return
	}
	t.mounts[side] = u
}

// Tool returns the tool mounted on side, or nil.
func (t *Turtle) Tool(side Side) *upgrades.Tool {
	tool, _ := t.Upgrade(side).(*upgrades.Tool)
	return tool
}

func (t *Turtle) Animate(a Animation) { t.anims = append(t.anims, a) }

// DrainAnimations returns and clears queued animation events.
func (t *Turtle) DrainAnimations() []Animation {
	out := t.anims
	t.anims = nil
	return out
}
