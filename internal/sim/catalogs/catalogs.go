package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type Catalogs struct {
	Blocks   BlockCatalog
	Items    ItemCatalog
	Actors   ActorCatalog
	Upgrades UpgradeCatalog
}

type BlockCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string
}

type BlockDef struct {
	ID string `json:"id"`
	// Hardness < 0 marks an indestructible block; 0 breaks instantly.
	Hardness    float64  `json:"hardness"`
	Solid       bool     `json:"solid"`
	Replaceable bool     `json:"replaceable,omitempty"`
	Liquid      bool     `json:"liquid,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	DropsItem   string   `json:"drops_item,omitempty"`
	DropsCount  int      `json:"drops_count,omitempty"`
	// RequiresTool names the tool family needed for the block to drop anything.
	RequiresTool string `json:"requires_tool,omitempty"`
	// BrokenAs is the block left behind after breaking (default AIR).
	BrokenAs      string `json:"broken_as,omitempty"`
	ContainerSize int    `json:"container_size,omitempty"`
	// ToolTransforms maps a tool kind (e.g. HOE) to the block produced when that
	// tool is used on the top or side face, with air above.
	ToolTransforms map[string]string `json:"tool_transforms,omitempty"`
}

func (d BlockDef) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (d BlockDef) Unbreakable() bool { return d.Hardness < 0 }

type ItemCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]ItemDef
	PaletteDigest string
	DefsDigest    string
}

const (
	ItemKindBlock    = "BLOCK"
	ItemKindSign     = "SIGN"
	ItemKindTool     = "TOOL"
	ItemKindMaterial = "MATERIAL"
	ItemKindNameTag  = "NAME_TAG"
	ItemKindFood     = "FOOD"
	ItemKindMech     = "MECH"
)

type ItemDef struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"` // BLOCK, SIGN, TOOL, MATERIAL, NAME_TAG, FOOD, MECH
	PlaceAs  string `json:"place_as,omitempty"`
	MaxStack int    `json:"max_stack,omitempty"`
	// ToolKind is the tool family for TOOL items: PICKAXE, AXE, SHOVEL, HOE, SWORD.
	ToolKind     string  `json:"tool_kind,omitempty"`
	ToolTier     int     `json:"tool_tier,omitempty"`
	AttackDamage float64 `json:"attack_damage,omitempty"`
	FuelValue    int     `json:"fuel_value,omitempty"`
}

// Placeable reports whether using the item against a face creates a block.
func (d ItemDef) Placeable() bool {
	return d.Kind == ItemKindBlock || d.Kind == ItemKindSign
}

type ActorCatalog struct {
	Defs   map[string]ActorDef
	Digest string
}

type ActorDef struct {
	ID           string             `json:"id"`
	MaxHP        float64            `json:"max_hp"`
	Prop         bool               `json:"prop,omitempty"`
	Width        float64            `json:"width"`
	Height       float64            `json:"height"`
	Attackable   bool               `json:"attackable"`
	Drops        []ItemCount        `json:"drops,omitempty"`
	Interactions []ActorInteraction `json:"interactions,omitempty"`
}

// ActorInteraction is a native "use item on actor" rule: holding Item and
// interacting yields Gives (and consumes one Item when Consumes is set).
type ActorInteraction struct {
	Item     string `json:"item"`
	Gives    string `json:"gives,omitempty"`
	Count    int    `json:"count,omitempty"`
	Consumes bool   `json:"consumes,omitempty"`
}

type ItemCount struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

type UpgradeCatalog struct {
	Defs   map[string]UpgradeDef
	ByItem map[string]string
	Digest string
}

const (
	UpgradeTypeTool  = "TOOL"
	UpgradeTypeModem = "MODEM"
)

type UpgradeDef struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	Item             string   `json:"item"`
	DamageMultiplier float64  `json:"damage_multiplier,omitempty"`
	BreakableTags    []string `json:"breakable_tags,omitempty"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadBlocks(filepath.Join(configDir, "blocks.json"), &c.Blocks); err != nil {
		return nil, err
	}
	if err := loadItems(filepath.Join(configDir, "items.json"), &c.Items); err != nil {
		return nil, err
	}
	if err := loadActors(filepath.Join(configDir, "actors.json"), &c.Actors); err != nil {
		return nil, err
	}
	if err := loadUpgrades(filepath.Join(configDir, "upgrades.json"), &c.Upgrades); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// FromDefs builds catalogs from in-memory definitions (tests, embedded defaults).
func FromDefs(blocks []BlockDef, items []ItemDef, actors []ActorDef, upgrades []UpgradeDef) (*Catalogs, error) {
	var c Catalogs
	enc := func(v any) []byte {
		b, _ := json.Marshal(v)
		return b
	}
	if err := buildBlocks(enc(blocks), blocks, &c.Blocks); err != nil {
		return nil, err
	}
	if err := buildItems(enc(items), items, &c.Items); err != nil {
		return nil, err
	}
	if err := buildActors(enc(actors), actors, &c.Actors); err != nil {
		return nil, err
	}
	if err := buildUpgrades(enc(upgrades), upgrades, &c.Upgrades); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks cross references between catalogs.
func (c *Catalogs) Validate() error {
	for _, d := range c.Items.Defs {
		if d.PlaceAs != "" {
			if _, ok := c.Blocks.Defs[d.PlaceAs]; !ok {
				return fmt.Errorf("items.json: %s place_as unknown block %s", d.ID, d.PlaceAs)
			}
		}
	}
	for _, d := range c.Blocks.Defs {
		if d.BrokenAs != "" {
			if _, ok := c.Blocks.Defs[d.BrokenAs]; !ok {
				return fmt.Errorf("blocks.json: %s broken_as unknown block %s", d.ID, d.BrokenAs)
			}
		}
		for kind, to := range d.ToolTransforms {
			if _, ok := c.Blocks.Defs[to]; !ok {
				return fmt.Errorf("blocks.json: %s tool_transforms[%s] unknown block %s", d.ID, kind, to)
			}
		}
	}
	for _, u := range c.Upgrades.Defs {
		if _, ok := c.Items.Defs[u.Item]; !ok {
			return fmt.Errorf("upgrades.json: %s item unknown %s", u.ID, u.Item)
		}
	}
	return nil
}

// StackLimit is the maximum stack size for item (64 when unknown).
func (c *Catalogs) StackLimit(item string) int {
	if d, ok := c.Items.Defs[item]; ok && d.MaxStack > 0 {
		return d.MaxStack
	}
	return 64
}

// BlockForItem returns the block an item places as.
func (c *Catalogs) BlockForItem(item string) (string, bool) {
	d, ok := c.Items.Defs[item]
	if !ok || !d.Placeable() {
		return "", false
	}
	if d.PlaceAs != "" {
		return d.PlaceAs, true
	}
	if _, ok := c.Blocks.Defs[item]; ok {
		return item, true
	}
	return "", false
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadBlocks(path string, out *BlockCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	return buildBlocks(raw, defs, out)
}

func buildBlocks(raw []byte, defs []BlockDef, out *BlockCatalog) error {
	out.DefsDigest = sha256Hex(raw)
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("blocks.json: empty id")
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Ensure AIR exists and is palette id 0.
	if _, ok := out.Defs["AIR"]; !ok {
		return fmt.Errorf("blocks.json: missing AIR")
	}
	ids = append([]string{"AIR"}, filterOut(ids, "AIR")...)

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadItems(path string, out *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	return buildItems(raw, defs, out)
}

func buildItems(raw []byte, defs []ItemDef, out *ItemCatalog) error {
	out.DefsDigest = sha256Hex(raw)
	out.Defs = map[string]ItemDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("items.json: empty id")
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadActors(path string, out *ActorCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		// Actors are optional: a world without mobs is valid.
		if os.IsNotExist(err) {
			return buildActors(nil, nil, out)
		}
		return err
	}
	var defs []ActorDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("actors.json: %w", err)
	}
	return buildActors(raw, defs, out)
}

func buildActors(raw []byte, defs []ActorDef, out *ActorCatalog) error {
	out.Digest = sha256Hex(raw)
	out.Defs = map[string]ActorDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("actors.json: empty id")
		}
		if d.Width <= 0 || d.Height <= 0 {
			return fmt.Errorf("actors.json: %s: width/height must be positive", d.ID)
		}
		out.Defs[d.ID] = d
	}
	return nil
}

func loadUpgrades(path string, out *UpgradeCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var defs []UpgradeDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("upgrades.json: %w", err)
	}
	return buildUpgrades(raw, defs, out)
}

func buildUpgrades(raw []byte, defs []UpgradeDef, out *UpgradeCatalog) error {
	out.Digest = sha256Hex(raw)
	out.Defs = map[string]UpgradeDef{}
	out.ByItem = map[string]string{}
	for _, d := range defs {
		if d.ID == "" || d.Item == "" {
			return fmt.Errorf("upgrades.json: empty id or item")
		}
		switch d.Type {
		case UpgradeTypeTool, UpgradeTypeModem:
		default:
			return fmt.Errorf("upgrades.json: %s: unknown type %q", d.ID, d.Type)
		}
		if _, dup := out.ByItem[d.Item]; dup {
			return fmt.Errorf("upgrades.json: item %s bound to two upgrades", d.Item)
		}
		out.Defs[d.ID] = d
		out.ByItem[d.Item] = d.ID
	}
	return nil
}

func filterOut(in []string, remove string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == remove {
			continue
		}
		out = append(out, s)
	}
	return out
}
