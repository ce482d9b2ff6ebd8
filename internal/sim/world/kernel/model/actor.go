package model

// Actor is a non-turtle entity: a mob or a stationary prop (armour stand style).
type Actor struct {
	ID     string
	Kind   string
	Name   string
	Pos    Vec3 // feet position
	Width  float64
	Height float64

	HP    float64
	MaxHP float64
	Prop  bool

	// Equipped is the single item a prop can hold (context-aware interaction target).
	Equipped ItemStack

	// Punched marks a prop that took its first hit; the next hit breaks it.
	Punched bool
	Dead    bool
}

func (a *Actor) Alive() bool { return a != nil && !a.Dead && a.HP > 0 }

func (a *Actor) Box() AABB {
	hw := a.Width / 2
	return AABB{
		Min: Vec3{X: a.Pos.X - hw, Y: a.Pos.Y, Z: a.Pos.Z - hw},
		Max: Vec3{X: a.Pos.X + hw, Y: a.Pos.Y + a.Height, Z: a.Pos.Z + hw},
	}
}
