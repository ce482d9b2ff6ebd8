package items

import (
	"sort"

	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

const EntityTTLTicksDefault = 6000

type AuditFunc func(nowTick uint64, actor, action string, pos modelpkg.Vec3i, reason string, details map[string]any)

// Store holds loose item entities indexed by id and by the block they lie in.
// Accessed only from the world loop goroutine.
type Store struct {
	TTL   uint64
	NewID func() string
	Audit AuditFunc

	byID  map[string]*modelpkg.ItemEntity
	byPos map[modelpkg.Vec3i][]string
}

func NewStore(ttl uint64, newID func() string, audit AuditFunc) *Store {
	if ttl == 0 {
		ttl = EntityTTLTicksDefault
	}
	return &Store{
		TTL:   ttl,
		NewID: newID,
		Audit: audit,
		byID:  map[string]*modelpkg.ItemEntity{},
		byPos: map[modelpkg.Vec3i][]string{},
	}
}

func (s *Store) Len() int { return len(s.byID) }

func (s *Store) Get(id string) *modelpkg.ItemEntity { return s.byID[id] }

// Spawn materialises stack at pos, merging into a stackable entity already in
// the same block. It returns the entity id.
func (s *Store) Spawn(nowTick uint64, actor string, pos modelpkg.Vec3, stack modelpkg.ItemStack, reason string) string {
	if stack.Empty() {
		return ""
	}
	block := pos.Block()
	for _, id := range s.byPos[block] {
		e := s.byID[id]
		if e == nil || !e.Stack.CanStack(stack) {
			continue
		}
		e.Stack.Count += stack.Count
		if exp := nowTick + s.TTL; exp > e.ExpiresTick {
			e.ExpiresTick = exp
		}
		s.audit(nowTick, actor, "ITEM_SPAWN", block, reason, map[string]any{
			"entity_id": e.EntityID,
			"item":      stack.Item,
			"count":     stack.Count,
			"merged":    true,
		})
		return e.EntityID
	}

	if s.NewID == nil {
		return ""
	}
	id := s.NewID()
	s.byID[id] = &modelpkg.ItemEntity{
		EntityID:    id,
		Pos:         pos,
		Stack:       stack,
		CreatedTick: nowTick,
		ExpiresTick: nowTick + s.TTL,
	}
	s.byPos[block] = append(s.byPos[block], id)
	s.audit(nowTick, actor, "ITEM_SPAWN", block, reason, map[string]any{
		"entity_id": id,
		"item":      stack.Item,
		"count":     stack.Count,
		"merged":    false,
	})
	return id
}

func (s *Store) Remove(nowTick uint64, actor, id, reason string) {
	e := s.byID[id]
	if e == nil {
		return
	}
	delete(s.byID, id)
	block := e.Pos.Block()
	ids := RemoveID(s.byPos[block], id)
	if len(ids) == 0 {
		delete(s.byPos, block)
	} else {
		s.byPos[block] = ids
	}
	s.audit(nowTick, actor, "ITEM_DESPAWN", block, reason, map[string]any{
		"entity_id": id,
		"item":      e.Stack.Item,
		"count":     e.Stack.Count,
	})
}

// SetStack replaces the entity's stack; an empty stack removes the entity.
func (s *Store) SetStack(nowTick uint64, actor, id string, stack modelpkg.ItemStack, reason string) {
	e := s.byID[id]
	if e == nil {
		return
	}
	if stack.Empty() {
		s.Remove(nowTick, actor, id, reason)
		return
	}
	e.Stack = stack
}

// In returns live entities whose position lies inside box, oldest first.
func (s *Store) In(box modelpkg.AABB) []*modelpkg.ItemEntity {
	lo := box.Min.Block()
	hi := box.Max.Block()
	var out []*modelpkg.ItemEntity
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				for _, id := range s.byPos[modelpkg.Vec3i{X: x, Y: y, Z: z}] {
					e := s.byID[id]
					if e.Alive() && box.Contains(e.Pos) {
						out = append(out, e)
					}
				}
			}
		}
	}
	sortBySpawn(out)
	return out
}

func (s *Store) CleanupExpired(nowTick uint64) {
	for _, id := range SortedExpired(s.byID, nowTick) {
		s.Remove(nowTick, "WORLD", id, "EXPIRE")
	}
}

func (s *Store) audit(nowTick uint64, actor, action string, pos modelpkg.Vec3i, reason string, details map[string]any) {
	if s.Audit != nil {
		s.Audit(nowTick, actor, action, pos, reason, details)
	}
}

// All returns every entity in id order.
func (s *Store) All() []*modelpkg.ItemEntity {
	out := make([]*modelpkg.ItemEntity, 0, len(s.byID))
	for _, e := range s.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

// Restore inserts e as-is, replacing any entity with the same id. No audit.
func (s *Store) Restore(e modelpkg.ItemEntity) {
	if e.EntityID == "" || e.Stack.Empty() {
		return
	}
	if old := s.byID[e.EntityID]; old != nil {
		block := old.Pos.Block()
		s.byPos[block] = RemoveID(s.byPos[block], e.EntityID)
	}
	cp := e
	s.byID[e.EntityID] = &cp
	block := e.Pos.Block()
	s.byPos[block] = append(s.byPos[block], e.EntityID)
}
