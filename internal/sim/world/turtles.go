package world

import (
	"fmt"

	"turtlecraft.ai/internal/sim/turtle"
	"turtlecraft.ai/internal/sim/world/logic/ids"
)

// AddTurtle places a new turtle. Fuel settings default to the world tuning.
func (w *World) AddTurtle(cfg turtle.Config) (*turtle.Turtle, error) {
	if cfg.ID == "" {
		cfg.ID = ids.EntityID("T", w.nextTurtleNum.Add(1))
	}
	if _, dup := w.turtles[cfg.ID]; dup {
		return nil, fmt.Errorf("world: turtle %s already exists", cfg.ID)
	}
	if !w.InBuildLimits(cfg.Pos) {
		return nil, fmt.Errorf("world: turtle position %v outside build limits", cfg.Pos)
	}
	if cur := w.BlockAt(cfg.Pos); cur != airBlockName && !w.catalogs.Blocks.Defs[cur].Replaceable {
		return nil, fmt.Errorf("world: turtle position %v occupied by %s", cfg.Pos, cur)
	}
	if !cfg.Facing.Horizontal() {
		cfg.Facing = North
	}
	if cfg.FuelLimit == 0 {
		cfg.FuelLimit = w.tun.Turtle.FuelLimit
		cfg.NeedFuel = w.tun.Turtle.NeedFuel
	}
	if cfg.StackLimit == nil {
		cfg.StackLimit = w.catalogs.StackLimit
	}
	t := turtle.New(cfg)
	w.turtles[t.ID()] = t
	w.setBlock(cfg.Pos, turtleBlockName, t.ID(), "TURTLE_PLACE")
	return t, nil
}

func (w *World) Turtle(id string) *turtle.Turtle { return w.turtles[id] }

func (w *World) turtleAt(pos Vec3i) *turtle.Turtle {
	if w.BlockAt(pos) != turtleBlockName {
		return nil
	}
	for _, t := range w.turtles {
		if t.Pos() == pos {
			return t
		}
	}
	return nil
}

// TurtleOwners snapshots turtle ids and owners. Call before Run or from the loop.
func (w *World) TurtleOwners() map[string]string {
	out := make(map[string]string, len(w.turtles))
	for id, t := range w.turtles {
		out[id] = t.Owner()
	}
	return out
}
