package model

type ClaimFlags struct {
	AllowBuild  bool
	AllowBreak  bool
	AllowDamage bool
}

// LandClaim protects a square (XZ) area for its owner and members.
type LandClaim struct {
	LandID  string
	Owner   string
	Anchor  Vec3i
	Radius  int // square radius in blocks
	Flags   ClaimFlags
	Members map[string]bool
}

func (c *LandClaim) Contains(pos Vec3i) bool {
	dx := pos.X - c.Anchor.X
	if dx < 0 {
		dx = -dx
	}
	dz := pos.Z - c.Anchor.Z
	if dz < 0 {
		dz = -dz
	}
	return dx <= c.Radius && dz <= c.Radius
}

func (c *LandClaim) IsMember(id string) bool {
	if id == "" {
		return false
	}
	return id == c.Owner || c.Members[id]
}
