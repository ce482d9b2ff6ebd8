package items

import (
	"sort"

	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

func RemoveID(ids []string, id string) []string {
	for i := 0; i < len(ids); i++ {
		if ids[i] != id {
			continue
		}
		copy(ids[i:], ids[i+1:])
		return ids[:len(ids)-1]
	}
	return ids
}

// SortedExpired returns the ids of entities past their expiry, in id order.
func SortedExpired(byID map[string]*modelpkg.ItemEntity, nowTick uint64) []string {
	out := make([]string, 0)
	for id, e := range byID {
		if e == nil {
			continue
		}
		if e.ExpiresTick != 0 && nowTick >= e.ExpiresTick {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// sortBySpawn orders entities oldest first, ties broken by id.
func sortBySpawn(es []*modelpkg.ItemEntity) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].CreatedTick != es[j].CreatedTick {
			return es[i].CreatedTick < es[j].CreatedTick
		}
		return es[i].EntityID < es[j].EntityID
	})
}
