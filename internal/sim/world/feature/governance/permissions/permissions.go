// Package permissions decides whether an actor may build, break or fight at a
// position, combining land claims with the spawn protection radius.
package permissions

import modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"

type Permissions struct {
	CanBuild  bool
	CanBreak  bool
	CanDamage bool
}

func WildPermissions() Permissions {
	return Permissions{
		CanBuild:  true,
		CanBreak:  true,
		CanDamage: true,
	}
}

func ForLand(isMember bool, flags modelpkg.ClaimFlags) Permissions {
	if isMember {
		return WildPermissions()
	}
	return Permissions{
		CanBuild:  flags.AllowBuild,
		CanBreak:  flags.AllowBreak,
		CanDamage: flags.AllowDamage,
	}
}

// Policy evaluates protection. ClaimAt may be nil when no claims exist.
type Policy struct {
	Enabled     bool
	SpawnRadius int
	SpawnX      int
	SpawnZ      int
	ClaimAt     func(pos modelpkg.Vec3i) *modelpkg.LandClaim
}

func (p Policy) At(pos modelpkg.Vec3i, actor string) Permissions {
	if !p.Enabled || p.ClaimAt == nil {
		return WildPermissions()
	}
	c := p.ClaimAt(pos)
	if c == nil {
		return WildPermissions()
	}
	return ForLand(c.IsMember(actor), c.Flags)
}

// InSpawn reports whether pos lies in the protected square around spawn.
func (p Policy) InSpawn(pos modelpkg.Vec3i) bool {
	if !p.Enabled || p.SpawnRadius <= 0 {
		return false
	}
	dx := pos.X - p.SpawnX
	if dx < 0 {
		dx = -dx
	}
	dz := pos.Z - p.SpawnZ
	if dz < 0 {
		dz = -dz
	}
	return dx <= p.SpawnRadius && dz <= p.SpawnRadius
}

func (p Policy) EditableForPlacement(pos modelpkg.Vec3i, actor string) bool {
	return !p.InSpawn(pos) && p.At(pos, actor).CanBuild
}

func (p Policy) EditableForBreaking(pos modelpkg.Vec3i, actor string) bool {
	return !p.InSpawn(pos)
}

// PreBreak is the claim-level break check run before any block is removed.
func (p Policy) PreBreak(pos modelpkg.Vec3i, actor string) bool {
	return p.At(pos, actor).CanBreak
}

func (p Policy) CanDamage(pos modelpkg.Vec3i, actor string) bool {
	return p.At(pos, actor).CanDamage
}
