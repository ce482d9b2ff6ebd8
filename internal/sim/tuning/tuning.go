package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	World   World   `yaml:"world"`
	Turtle  Turtle  `yaml:"turtle"`
	Capture Capture `yaml:"capture"`
	Protect Protect `yaml:"protection"`
	// Turtles are placed when the server starts.
	Turtles []TurtleSpawn `yaml:"turtles"`
}

type TurtleSpawn struct {
	ID     string `yaml:"id"`
	Owner  string `yaml:"owner"`
	Pos    [3]int `yaml:"pos"`
	Facing string `yaml:"facing"`
	Fuel   int    `yaml:"fuel"`
}

type World struct {
	MinY int `yaml:"min_y"`
	MaxY int `yaml:"max_y"`
	// Layers are block ids generated bottom-up starting at MinY (empty = void world).
	Layers         []string `yaml:"layers"`
	ItemEntityTTL  uint64   `yaml:"item_entity_ttl_ticks"`
	InboxBuffer    int      `yaml:"inbox_buffer"`
	TickDurationMs int      `yaml:"tick_duration_ms"`
}

type Turtle struct {
	NeedFuel  bool    `yaml:"need_fuel"`
	FuelLimit int     `yaml:"fuel_limit"`
	Reach     float64 `yaml:"reach"`
	// PlacementToolKinds are tool kinds whose dig first tries a placement (tilling, paths).
	PlacementToolKinds []string `yaml:"placement_tool_kinds"`
}

type Capture struct {
	Padding float64 `yaml:"padding"`
	// DropOffset is how far from the turtle block centre flushed leftovers spawn.
	DropOffset float64 `yaml:"drop_offset"`
}

type Protect struct {
	Enabled     bool `yaml:"enabled"`
	SpawnRadius int  `yaml:"spawn_radius"`
	SpawnX      int  `yaml:"spawn_x"`
	SpawnZ      int  `yaml:"spawn_z"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		World: World{
			MinY:           0,
			MaxY:           255,
			ItemEntityTTL:  6000,
			InboxBuffer:    1024,
			TickDurationMs: 50,
		},
		Turtle: Turtle{
			NeedFuel:           true,
			FuelLimit:          20000,
			Reach:              1.5,
			PlacementToolKinds: []string{"HOE", "SHOVEL"},
		},
		Capture: Capture{Padding: 2, DropOffset: 0.7},
		Protect: Protect{Enabled: true},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.World.MaxY <= t.World.MinY {
		return fmt.Errorf("world.max_y (%d) must exceed world.min_y (%d)", t.World.MaxY, t.World.MinY)
	}
	if t.Turtle.Reach <= 0 {
		return fmt.Errorf("turtle.reach must be positive")
	}
	if t.Turtle.FuelLimit < 0 {
		return fmt.Errorf("turtle.fuel_limit must not be negative")
	}
	if t.Capture.Padding < 0 {
		return fmt.Errorf("capture.padding must not be negative")
	}
	seen := map[string]bool{}
	for i, sp := range t.Turtles {
		if sp.ID == "" {
			return fmt.Errorf("turtles[%d]: missing id", i)
		}
		if seen[sp.ID] {
			return fmt.Errorf("turtles[%d]: duplicate id %s", i, sp.ID)
		}
		seen[sp.ID] = true
	}
	return nil
}

// IsPlacementTool reports whether digging with toolKind first tries a placement.
func (t Turtle) IsPlacementTool(toolKind string) bool {
	for _, k := range t.PlacementToolKinds {
		if k == toolKind {
			return true
		}
	}
	return false
}
