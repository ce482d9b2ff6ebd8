package upgrades

import (
	"testing"

	"turtlecraft.ai/internal/sim/catalogs"
	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

func loadRegistry(t *testing.T) *Registry {
	t.Helper()
	cat, err := catalogs.Load("../../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return NewRegistry(cat)
}

func TestRegistryResolvesTools(t *testing.T) {
	r := loadRegistry(t)
	u, ok := r.ForItem(modelpkg.Stack("DIAMOND_PICKAXE", 1))
	if !ok {
		t.Fatalf("pickaxe not resolved")
	}
	tool, ok := u.(*Tool)
	if !ok {
		t.Fatalf("expected *Tool, got %T", u)
	}
	if tool.ToolKind() != "PICKAXE" || tool.DamageMultiplier() != 3 || !tool.Restricted() {
		t.Fatalf("unexpected tool: %+v", tool)
	}
	if !tool.Effective(catalogs.BlockDef{ID: "STONE", Tags: []string{"MINEABLE_PICKAXE"}}) {
		t.Fatalf("pickaxe should be effective on stone")
	}
	if tool.Effective(catalogs.BlockDef{ID: "DIRT", Tags: []string{"MINEABLE_SHOVEL"}}) {
		t.Fatalf("pickaxe should not be effective on dirt")
	}
	if got := tool.CraftingItem(); got.Item != "DIAMOND_PICKAXE" || got.Count != 1 {
		t.Fatalf("crafting item: %+v", got)
	}
}

func TestRegistryHoeIsUnrestricted(t *testing.T) {
	r := loadRegistry(t)
	u, ok := r.ForItem(modelpkg.Stack("DIAMOND_HOE", 1))
	if !ok {
		t.Fatalf("hoe not resolved")
	}
	if u.(*Tool).Restricted() {
		t.Fatalf("hoe has no allow-list")
	}
}

func TestRegistryModemAndUnknown(t *testing.T) {
	r := loadRegistry(t)
	u, ok := r.ForItem(modelpkg.Stack("WIRELESS_MODEM", 3))
	if !ok || u.Type() != TypeModem {
		t.Fatalf("modem: %v %v", u, ok)
	}
	if _, ok := r.ForItem(modelpkg.Stack("DIRT", 1)); ok {
		t.Fatalf("dirt is not an upgrade")
	}
	if _, ok := r.ForItem(modelpkg.ItemStack{}); ok {
		t.Fatalf("empty stack is not an upgrade")
	}
}
