// Package capture redirects item drops produced by world rules (block harvests,
// actor deaths, item spawns) into a consumer while a window is open.
//
// A world owns exactly one Slot. Commands open a Session on it, run world logic
// that is unaware of the redirection, and End the session, which flushes
// whatever the consumer could not absorb back into the world.
package capture

import (
	"errors"

	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

var ErrWindowOpen = errors.New("capture: a drop capture window is already open")

// Redirect receives a dropped stack and returns the part it could not absorb.
type Redirect func(stack modelpkg.ItemStack) modelpkg.ItemStack

// Region scopes a window to an actor (padded box around it) or a block position.
type Region struct {
	Box     modelpkg.AABB
	ActorID string
	Block   modelpkg.Vec3i
	IsBlock bool
}

func ActorRegion(a *modelpkg.Actor, padding float64) Region {
	return Region{Box: a.Box().Grow(padding), ActorID: a.ID}
}

func BlockRegion(pos modelpkg.Vec3i, padding float64) Region {
	return Region{Box: modelpkg.BlockBox(pos).Grow(padding), Block: pos, IsBlock: true}
}

type Slot struct {
	active *Session
}

type Session struct {
	slot      *Slot
	region    Region
	redirect  Redirect
	leftovers []modelpkg.ItemStack
	ended     bool
}

// Begin opens a window. Only one window may be open per slot.
func (s *Slot) Begin(region Region, redirect Redirect) (*Session, error) {
	if s.active != nil {
		return nil, ErrWindowOpen
	}
	if redirect == nil {
		return nil, errors.New("capture: nil redirect")
	}
	sess := &Session{slot: s, region: region, redirect: redirect}
	s.active = sess
	return sess, nil
}

func (s *Slot) Active() bool { return s.active != nil }

// InterceptSpawn is called before a new item entity materialises at pos.
// It returns true when the spawn was consumed by the open window.
func (s *Slot) InterceptSpawn(pos modelpkg.Vec3, stack modelpkg.ItemStack) bool {
	sess := s.active
	if sess == nil || stack.Empty() || !sess.region.Box.Contains(pos) {
		return false
	}
	sess.capture(stack)
	return true
}

// InterceptActorDrops is called for each loot stack of a dying actor.
func (s *Slot) InterceptActorDrops(actorID string, stack modelpkg.ItemStack) bool {
	sess := s.active
	if sess == nil || stack.Empty() || sess.region.ActorID == "" || sess.region.ActorID != actorID {
		return false
	}
	sess.capture(stack)
	return true
}

// InterceptBlockDrop is called for each harvest drop of the block at pos.
func (s *Slot) InterceptBlockDrop(pos modelpkg.Vec3i, stack modelpkg.ItemStack) bool {
	sess := s.active
	if sess == nil || stack.Empty() || !sess.region.IsBlock || sess.region.Block != pos {
		return false
	}
	sess.capture(stack)
	return true
}

func (sess *Session) capture(stack modelpkg.ItemStack) {
	rem := sess.redirect(stack)
	if !rem.Empty() {
		sess.leftovers = append(sess.leftovers, rem)
	}
}

func (sess *Session) Region() Region { return sess.region }

// Leftovers returns a copy of the stacks accumulated so far.
func (sess *Session) Leftovers() []modelpkg.ItemStack {
	return append([]modelpkg.ItemStack(nil), sess.leftovers...)
}

// End closes the window and hands every leftover to flush exactly once.
// The slot is cleared before flushing so flushed drops are not re-captured.
func (sess *Session) End(flush func(modelpkg.ItemStack)) {
	if sess == nil || sess.ended {
		return
	}
	sess.ended = true
	if sess.slot.active == sess {
		sess.slot.active = nil
	}
	left := sess.leftovers
	sess.leftovers = nil
	if flush == nil {
		return
	}
	for _, st := range left {
		flush(st)
	}
}
