package world

import (
	"sort"

	"turtlecraft.ai/internal/sim/world/logic/ids"
)

// AddClaim protects a square area around anchor for owner.
func (w *World) AddClaim(owner string, anchor Vec3i, radius int, flags ClaimFlags, members ...string) *LandClaim {
	c := &LandClaim{
		LandID:  ids.EntityID("LAND", w.nextLandNum.Add(1)),
		Owner:   owner,
		Anchor:  anchor,
		Radius:  radius,
		Flags:   flags,
		Members: map[string]bool{},
	}
	for _, m := range members {
		c.Members[m] = true
	}
	w.claims[c.LandID] = c
	w.auditEvent(w.CurrentTick(), owner, "CLAIM_LAND", anchor, "", map[string]any{
		"land_id": c.LandID,
		"radius":  radius,
	})
	return c
}

func (w *World) RemoveClaim(landID string) {
	delete(w.claims, landID)
}

// claimAt returns the claim covering pos; overlapping claims resolve by id.
func (w *World) claimAt(pos Vec3i) *LandClaim {
	if len(w.claims) == 0 {
		return nil
	}
	landIDs := make([]string, 0, len(w.claims))
	for id, c := range w.claims {
		if c.Contains(pos) {
			landIDs = append(landIDs, id)
		}
	}
	if len(landIDs) == 0 {
		return nil
	}
	sort.Strings(landIDs)
	return w.claims[landIDs[0]]
}
