package world

import (
	"context"
	"fmt"
	"sort"

	"turtlecraft.ai/internal/persistence/snapshot"
	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
	"turtlecraft.ai/internal/sim/world/logic/ids"
)

// RequestSnapshot asks the running loop for a snapshot.
func (w *World) RequestSnapshot(ctx context.Context) (snapshot.SnapshotV1, error) {
	reply := make(chan snapshot.SnapshotV1, 1)
	select {
	case w.snapReq <- reply:
	case <-w.stop:
		return snapshot.SnapshotV1{}, ErrStopped
	case <-ctx.Done():
		return snapshot.SnapshotV1{}, ctx.Err()
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return snapshot.SnapshotV1{}, ctx.Err()
	}
}

// ExportSnapshot captures world state. Turtles are left out and their blocks
// are written as air. Loop goroutine only (or before Run).
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: w.cfg.ID,
			Tick:    w.CurrentTick(),
		},
		MinY:    w.tun.World.MinY,
		MaxY:    w.tun.World.MaxY,
		Palette: append([]string(nil), w.catalogs.Blocks.Palette...),
		Counters: snapshot.CountersV1{
			NextEntity: w.nextEntityNum.Load(),
			NextActor:  w.nextActorNum.Load(),
			NextLand:   w.nextLandNum.Load(),
		},
	}

	for _, k := range w.chunks.LoadedChunkKeys() {
		ch := w.chunks.chunks[k]
		blocks := make([]uint16, len(ch.Blocks))
		for i, b := range ch.Blocks {
			if b == w.turtleID {
				b = w.airID
			}
			blocks[i] = b
		}
		snap.Chunks = append(snap.Chunks, snapshot.ChunkV1{CX: k.CX, CZ: k.CZ, Blocks: snapshot.EncodeBlocks(blocks)})
	}

	for _, pos := range sortedPositions(w.containers) {
		c := w.containers[pos]
		cv := snapshot.ContainerV1{Type: c.Type, Pos: pos.ToArray(), Slots: make([]snapshot.ItemStackV1, c.Size())}
		for i := range cv.Slots {
			cv.Slots[i] = stackToV1(c.StackInSlot(i))
		}
		snap.Containers = append(snap.Containers, cv)
	}

	for _, e := range w.items.All() {
		snap.ItemEntities = append(snap.ItemEntities, snapshot.ItemEntityV1{
			ID:          e.EntityID,
			Pos:         [3]float64{e.Pos.X, e.Pos.Y, e.Pos.Z},
			Stack:       stackToV1(e.Stack),
			CreatedTick: e.CreatedTick,
			ExpiresTick: e.ExpiresTick,
		})
	}

	for _, pos := range sortedPositions(w.signs) {
		s := w.signs[pos]
		snap.Signs = append(snap.Signs, snapshot.SignV1{
			Pos:         pos.ToArray(),
			Lines:       s.Lines,
			UpdatedTick: s.UpdatedTick,
			UpdatedBy:   s.UpdatedBy,
		})
	}

	landIDs := make([]string, 0, len(w.claims))
	for id := range w.claims {
		landIDs = append(landIDs, id)
	}
	sort.Strings(landIDs)
	for _, id := range landIDs {
		c := w.claims[id]
		cv := snapshot.ClaimV1{
			LandID:      c.LandID,
			Owner:       c.Owner,
			Anchor:      c.Anchor.ToArray(),
			Radius:      c.Radius,
			AllowBuild:  c.Flags.AllowBuild,
			AllowBreak:  c.Flags.AllowBreak,
			AllowDamage: c.Flags.AllowDamage,
		}
		for m, ok := range c.Members {
			if ok {
				cv.Members = append(cv.Members, m)
			}
		}
		sort.Strings(cv.Members)
		snap.Claims = append(snap.Claims, cv)
	}

	for _, a := range w.sortedActors() {
		snap.Actors = append(snap.Actors, snapshot.ActorV1{
			ID:       a.ID,
			Kind:     a.Kind,
			Name:     a.Name,
			Pos:      [3]float64{a.Pos.X, a.Pos.Y, a.Pos.Z},
			HP:       a.HP,
			Equipped: stackToV1(a.Equipped),
			Punched:  a.Punched,
		})
	}
	return snap
}

// ImportSnapshot replaces world state with snap. It must run before any
// turtle is added and before Run.
func (w *World) ImportSnapshot(snap snapshot.SnapshotV1) error {
	if len(w.turtles) > 0 {
		return fmt.Errorf("world: import snapshot after turtles were added")
	}
	if snap.MinY != w.tun.World.MinY || snap.MaxY != w.tun.World.MaxY {
		return fmt.Errorf("world: snapshot height %d..%d does not match %d..%d",
			snap.MinY, snap.MaxY, w.tun.World.MinY, w.tun.World.MaxY)
	}
	remap := make([]uint16, len(snap.Palette))
	for i, name := range snap.Palette {
		b, ok := w.catalogs.Blocks.Index[name]
		if !ok {
			return fmt.Errorf("world: snapshot block %q not in catalog", name)
		}
		remap[i] = b
	}

	height := snap.MaxY - snap.MinY + 1
	chunks := make(map[ChunkKey]*Chunk, len(snap.Chunks))
	for _, cv := range snap.Chunks {
		raw, err := snapshot.DecodeBlocks(cv.Blocks, chunkSize*chunkSize*height)
		if err != nil {
			return fmt.Errorf("world: chunk %d,%d: %w", cv.CX, cv.CZ, err)
		}
		for i, b := range raw {
			if int(b) >= len(remap) {
				return fmt.Errorf("world: chunk %d,%d: block id %d outside palette", cv.CX, cv.CZ, b)
			}
			raw[i] = remap[b]
		}
		ch := &Chunk{CX: cv.CX, CZ: cv.CZ, MinY: snap.MinY, Height: height, Blocks: raw, dirty: true}
		chunks[ChunkKey{CX: cv.CX, CZ: cv.CZ}] = ch
	}

	w.chunks.chunks = chunks
	w.containers = map[Vec3i]*Container{}
	for _, cv := range snap.Containers {
		pos := vecFromArray(cv.Pos)
		c := modelpkg.NewContainer(cv.Type, pos, len(cv.Slots), w.catalogs.StackLimit)
		for i, st := range cv.Slots {
			c.SetStackInSlot(i, stackFromV1(st))
		}
		w.containers[pos] = c
	}

	w.items = newItemStore(w)
	for _, ev := range snap.ItemEntities {
		w.items.Restore(ItemEntity{
			EntityID:    ev.ID,
			Pos:         Vec3{X: ev.Pos[0], Y: ev.Pos[1], Z: ev.Pos[2]},
			Stack:       stackFromV1(ev.Stack),
			CreatedTick: ev.CreatedTick,
			ExpiresTick: ev.ExpiresTick,
		})
	}

	w.signs = map[Vec3i]*Sign{}
	for _, sv := range snap.Signs {
		pos := vecFromArray(sv.Pos)
		w.signs[pos] = &Sign{Pos: pos, Lines: sv.Lines, UpdatedTick: sv.UpdatedTick, UpdatedBy: sv.UpdatedBy}
	}

	w.claims = map[string]*LandClaim{}
	for _, cv := range snap.Claims {
		c := &LandClaim{
			LandID:  cv.LandID,
			Owner:   cv.Owner,
			Anchor:  vecFromArray(cv.Anchor),
			Radius:  cv.Radius,
			Flags:   ClaimFlags{AllowBuild: cv.AllowBuild, AllowBreak: cv.AllowBreak, AllowDamage: cv.AllowDamage},
			Members: map[string]bool{},
		}
		for _, m := range cv.Members {
			c.Members[m] = true
		}
		w.claims[c.LandID] = c
	}

	w.actors = map[string]*Actor{}
	for _, av := range snap.Actors {
		def, ok := w.catalogs.Actors.Defs[av.Kind]
		if !ok {
			return fmt.Errorf("world: snapshot actor kind %q not in catalog", av.Kind)
		}
		w.actors[av.ID] = &Actor{
			ID:       av.ID,
			Kind:     av.Kind,
			Name:     av.Name,
			Pos:      Vec3{X: av.Pos[0], Y: av.Pos[1], Z: av.Pos[2]},
			Width:    def.Width,
			Height:   def.Height,
			HP:       av.HP,
			MaxHP:    def.MaxHP,
			Prop:     def.Prop,
			Equipped: stackFromV1(av.Equipped),
			Punched:  av.Punched,
		}
	}

	next := snap.Counters
	for _, ev := range snap.ItemEntities {
		next.NextEntity = bumpCounter(next.NextEntity, "I", ev.ID)
	}
	for _, av := range snap.Actors {
		next.NextActor = bumpCounter(next.NextActor, "M", av.ID)
	}
	for _, cv := range snap.Claims {
		next.NextLand = bumpCounter(next.NextLand, "LAND", cv.LandID)
	}
	w.nextEntityNum.Store(next.NextEntity)
	w.nextActorNum.Store(next.NextActor)
	w.nextLandNum.Store(next.NextLand)
	w.tick.Store(snap.Header.Tick)
	w.logf("imported snapshot tick=%d chunks=%d actors=%d items=%d",
		snap.Header.Tick, len(snap.Chunks), len(snap.Actors), len(snap.ItemEntities))
	return nil
}

func stackToV1(s ItemStack) snapshot.ItemStackV1 {
	if s.Empty() {
		return snapshot.ItemStackV1{}
	}
	return snapshot.ItemStackV1{Item: s.Item, Count: s.Count, Label: s.Label}
}

func stackFromV1(s snapshot.ItemStackV1) ItemStack {
	return ItemStack{Item: s.Item, Count: s.Count, Label: s.Label}
}

// bumpCounter keeps a counter at or above the numeric suffix of a restored id.
func bumpCounter(cur uint64, prefix, id string) uint64 {
	if n, ok := ids.ParseUintAfterPrefix(prefix, id); ok {
		return ids.MaxU64(cur, n)
	}
	return cur
}

func vecFromArray(a [3]int) Vec3i { return Vec3i{X: a[0], Y: a[1], Z: a[2]} }

func sortedPositions[V any](m map[Vec3i]V) []Vec3i {
	out := make([]Vec3i, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return out
}
