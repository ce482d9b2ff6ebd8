// Package mining holds the native harvest rules: which tool family suits a
// block, whether a tool may harvest it, and how fast it breaks.
package mining

import "turtlecraft.ai/internal/sim/catalogs"

type ToolFamily int

const (
	ToolFamilyNone ToolFamily = iota
	ToolFamilyPickaxe
	ToolFamilyAxe
	ToolFamilyShovel
	ToolFamilySword
	ToolFamilyHoe
)

var familyByKind = map[string]ToolFamily{
	"PICKAXE": ToolFamilyPickaxe,
	"AXE":     ToolFamilyAxe,
	"SHOVEL":  ToolFamilyShovel,
	"SWORD":   ToolFamilySword,
	"HOE":     ToolFamilyHoe,
}

var familyByTag = map[string]ToolFamily{
	"MINEABLE_PICKAXE": ToolFamilyPickaxe,
	"MINEABLE_AXE":     ToolFamilyAxe,
	"MINEABLE_SHOVEL":  ToolFamilyShovel,
	"MINEABLE_SWORD":   ToolFamilySword,
	"MINEABLE_HOE":     ToolFamilyHoe,
}

func FamilyForToolKind(kind string) ToolFamily { return familyByKind[kind] }

// MineToolFamilyForBlock picks the family from requires_tool, then from MINEABLE_* tags.
func MineToolFamilyForBlock(def catalogs.BlockDef) ToolFamily {
	if f, ok := familyByKind[def.RequiresTool]; ok {
		return f
	}
	for _, tag := range def.Tags {
		if f, ok := familyByTag[tag]; ok {
			return f
		}
	}
	return ToolFamilyNone
}

// CanHarvest reports whether breaking the block with the tool yields drops.
func CanHarvest(def catalogs.BlockDef, tool catalogs.ItemDef) bool {
	if def.RequiresTool == "" {
		return true
	}
	return FamilyForToolKind(tool.ToolKind) == MineToolFamilyForBlock(def) && tool.ToolTier >= 1
}

// SpeedForTier is the dig speed multiplier of a matching tool.
func SpeedForTier(tier int) float64 {
	switch {
	case tier >= 4:
		return 8
	case tier == 3:
		return 6
	case tier == 2:
		return 4
	case tier == 1:
		return 2
	default:
		return 1
	}
}

// MiningProgress is the fraction of the block broken per tick (0 = never breaks).
func MiningProgress(def catalogs.BlockDef, tool catalogs.ItemDef) float64 {
	if def.Unbreakable() || def.ID == "AIR" {
		return 0
	}
	if def.Hardness == 0 {
		return 1
	}
	speed := 1.0
	if fam := MineToolFamilyForBlock(def); fam != ToolFamilyNone && FamilyForToolKind(tool.ToolKind) == fam {
		speed = SpeedForTier(tool.ToolTier)
	}
	div := 100.0
	if CanHarvest(def, tool) {
		div = 30
	}
	return speed / def.Hardness / div
}
