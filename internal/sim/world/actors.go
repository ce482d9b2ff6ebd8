package world

import (
	"fmt"
	"sort"

	"turtlecraft.ai/internal/sim/world/logic/ids"
)

// SpawnActor places a catalog actor with its feet at pos.
func (w *World) SpawnActor(kind string, pos Vec3) (*Actor, error) {
	def, ok := w.catalogs.Actors.Defs[kind]
	if !ok {
		return nil, fmt.Errorf("world: unknown actor kind %q", kind)
	}
	a := &Actor{
		ID:     ids.EntityID("M", w.nextActorNum.Add(1)),
		Kind:   kind,
		Pos:    pos,
		Width:  def.Width,
		Height: def.Height,
		HP:     def.MaxHP,
		MaxHP:  def.MaxHP,
		Prop:   def.Prop,
	}
	w.actors[a.ID] = a
	w.auditEvent(w.CurrentTick(), "WORLD", "ACTOR_SPAWN", pos.Block(), "", map[string]any{
		"actor_id": a.ID,
		"kind":     kind,
	})
	return a, nil
}

func (w *World) Actor(id string) *Actor { return w.actors[id] }

// sortedActors returns live actors in id order.
func (w *World) sortedActors() []*Actor {
	out := make([]*Actor, 0, len(w.actors))
	for _, a := range w.actors {
		if a.Alive() {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// killActor removes a, routing its loot (and a prop's held item) through the
// capture slot before spawning it.
func (w *World) killActor(a *Actor, killer string) {
	a.HP = 0
	a.Dead = true
	delete(w.actors, a.ID)

	loot := make([]ItemStack, 0, 4)
	for _, d := range w.catalogs.Actors.Defs[a.Kind].Drops {
		loot = append(loot, ItemStack{Item: d.Item, Count: d.Count})
	}
	if !a.Equipped.Empty() {
		loot = append(loot, a.Equipped)
		a.Equipped = ItemStack{}
	}
	for _, st := range loot {
		if st.Empty() {
			continue
		}
		if w.capture.InterceptActorDrops(a.ID, st) {
			continue
		}
		w.spawnItem(a.Pos, st, killer, "ACTOR_LOOT")
	}
	w.auditEvent(w.CurrentTick(), killer, "ACTOR_DEATH", a.Pos.Block(), "", map[string]any{
		"actor_id": a.ID,
		"kind":     a.Kind,
	})
}
