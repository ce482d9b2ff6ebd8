// Package upgrades resolves turtle upgrades (tools, peripherals) from items.
package upgrades

import (
	"sort"

	"turtlecraft.ai/internal/sim/catalogs"
	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

type Type string

const (
	TypeTool  Type = catalogs.UpgradeTypeTool
	TypeModem Type = catalogs.UpgradeTypeModem
)

// Upgrade is anything mountable on a turtle side.
type Upgrade interface {
	ID() string
	Type() Type
	// CraftingItem is the item form handed back when the upgrade is removed.
	CraftingItem() modelpkg.ItemStack
}

// Tool is an upgrade that digs and attacks.
type Tool struct {
	id         string
	item       string
	toolKind   string
	multiplier float64
	breakable  []string
}

func (t *Tool) ID() string                       { return t.id }
func (t *Tool) Type() Type                       { return TypeTool }
func (t *Tool) CraftingItem() modelpkg.ItemStack { return modelpkg.Stack(t.item, 1) }

// Item is the tool item the turtle wields through its proxy.
func (t *Tool) Item() string { return t.item }

// ToolKind is the tool family (PICKAXE, AXE, SHOVEL, HOE, SWORD).
func (t *Tool) ToolKind() string { return t.toolKind }

func (t *Tool) DamageMultiplier() float64 { return t.multiplier }

// Restricted reports whether the tool only breaks blocks carrying one of its tags.
func (t *Tool) Restricted() bool { return len(t.breakable) > 0 }

// Effective reports whether a block with the given definition is in the allow-list.
func (t *Tool) Effective(def catalogs.BlockDef) bool {
	for _, tag := range t.breakable {
		if def.HasTag(tag) {
			return true
		}
	}
	return false
}

// Modem is a peripheral upgrade with no verbs of its own.
type Modem struct {
	id   string
	item string
}

func (m *Modem) ID() string                       { return m.id }
func (m *Modem) Type() Type                       { return TypeModem }
func (m *Modem) CraftingItem() modelpkg.ItemStack { return modelpkg.Stack(m.item, 1) }

type Registry struct {
	byID   map[string]Upgrade
	byItem map[string]Upgrade
}

func NewRegistry(cat *catalogs.Catalogs) *Registry {
	r := &Registry{byID: map[string]Upgrade{}, byItem: map[string]Upgrade{}}
	ids := make([]string, 0, len(cat.Upgrades.Defs))
	for id := range cat.Upgrades.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		def := cat.Upgrades.Defs[id]
		var u Upgrade
		switch def.Type {
		case catalogs.UpgradeTypeTool:
			mult := def.DamageMultiplier
			if mult <= 0 {
				mult = 1
			}
			u = &Tool{
				id:         def.ID,
				item:       def.Item,
				toolKind:   cat.Items.Defs[def.Item].ToolKind,
				multiplier: mult,
				breakable:  append([]string(nil), def.BreakableTags...),
			}
		case catalogs.UpgradeTypeModem:
			u = &Modem{id: def.ID, item: def.Item}
		default:
			continue
		}
		r.byID[def.ID] = u
		r.byItem[def.Item] = u
	}
	return r
}

func (r *Registry) ByID(id string) (Upgrade, bool) {
	u, ok := r.byID[id]
	return u, ok
}

// ForItem resolves the upgrade an item stack would mount as.
func (r *Registry) ForItem(stack modelpkg.ItemStack) (Upgrade, bool) {
	if r == nil || stack.Empty() {
		return nil, false
	}
	u, ok := r.byItem[stack.Item]
	return u, ok
}
