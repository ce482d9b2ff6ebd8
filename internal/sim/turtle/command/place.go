package command

import (
	"fmt"
	"strings"

	"turtlecraft.ai/internal/sim/turtle"
	"turtlecraft.ai/internal/sim/world/capture"
	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

// Place uses the selected item in Dir: on an actor in reach first, otherwise
// against the first acceptable anchor block.
type Place struct {
	Dir  RelDir
	Args []any
}

func (Place) Verb() string { return "place" }

func (c Place) Execute(env Env, t *turtle.Turtle) (Result, error) {
	stack := t.SelectedStack()
	if stack.Empty() {
		return Failure("No items to place"), nil
	}
	dir := c.Dir.World(t.Facing())
	proxy := env.NewProxy(t.Owner(), t.Pos(), dir, stack)
	res, err := deploy(env, t, proxy, dir, signText(c.Args))
	if err != nil {
		return Result{}, err
	}
	if !res.Success {
		return res, nil
	}
	if err := unloadProxy(env, t, proxy); err != nil {
		return Result{}, err
	}
	t.Animate(turtle.AnimWait)
	return res, nil
}

type anchor struct {
	pos          modelpkg.Vec3i
	face         modelpkg.Direction
	allowReplace bool
}

// anchors lists placement candidates in the order they are tried.
func anchors(pos modelpkg.Vec3i, dir modelpkg.Direction) []anchor {
	front := pos.Offset(dir)
	out := []anchor{
		{pos: front, face: dir.Opposite(), allowReplace: true},
		{pos: front.Offset(dir), face: dir.Opposite()},
	}
	if dir.Horizontal() {
		out = append(out, anchor{pos: front.Offset(modelpkg.Down), face: modelpkg.Up})
	}
	return append(out, anchor{pos: pos, face: dir})
}

type anchorVerdict int

const (
	anchorOK anchorVerdict = iota
	anchorUnusable
	anchorProtected
)

func checkAnchor(env Env, owner string, a anchor, blockItem bool) anchorVerdict {
	if !env.InBuildLimits(a.pos) {
		return anchorUnusable
	}
	block := env.BlockAt(a.pos)
	if block == "" || block == airBlock {
		return anchorUnusable
	}
	if blockItem && env.IsLiquid(a.pos) {
		return anchorUnusable
	}
	replaceable := env.Catalogs().Blocks.Defs[block].Replaceable
	if replaceable && !a.allowReplace {
		return anchorUnusable
	}
	gate := a.pos
	if !replaceable {
		gate = a.pos.Offset(a.face)
	}
	if !env.EditableForPlacement(gate, owner) {
		return anchorProtected
	}
	return anchorOK
}

// deploy runs the placement fallback chain with proxy holding the item.
func deploy(env Env, t *turtle.Turtle, proxy Proxy, dir modelpkg.Direction, lines []string) (Result, error) {
	tun := env.Tuning()
	if a, hit, ok := env.RayTraceActor(t.Pos().Center(), dir.Unit(), tun.Turtle.Reach); ok {
		accepted, err := deployOnActor(env, t, proxy, a, hit)
		if err != nil {
			return Result{}, err
		}
		if accepted {
			return Success(), nil
		}
	}

	stack := proxy.Held()
	blockItem := env.Catalogs().Items.Defs[stack.Item].Placeable()
	protected := false
	for _, a := range anchors(t.Pos(), dir) {
		switch checkAnchor(env, t.Owner(), a, blockItem) {
		case anchorProtected:
			protected = true
		case anchorOK:
			if proxy.PlaceAgainst(a.pos, a.face, lines) {
				return Success(), nil
			}
		}
	}
	switch {
	case protected:
		return Failure("Cannot place in protected area"), nil
	case blockItem:
		return Failure("Cannot place block here"), nil
	default:
		return Failure("Cannot place item here"), nil
	}
}

func deployOnActor(env Env, t *turtle.Turtle, proxy Proxy, a *modelpkg.Actor, hit modelpkg.Vec3) (bool, error) {
	sess, err := env.Capture().Begin(capture.ActorRegion(a, env.Tuning().Capture.Padding), intoTurtle(env, t))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}
	defer sess.End(dropAt(env, t, t.Facing().Opposite()))
	return proxy.InteractAt(a, hit) || proxy.Interact(a) || proxy.UseOnActor(a), nil
}

// signText splits a string first argument into sign lines. Short messages of
// one or two lines start on the second line so they sit centred.
func signText(args []any) []string {
	if len(args) == 0 {
		return nil
	}
	msg, ok := args[0].(string)
	if !ok {
		return nil
	}
	split := strings.Split(msg, "\n")
	first := 0
	if len(split) <= 2 {
		first = 1
	}
	lines := make([]string, modelpkg.SignLines)
	for i := 0; i < modelpkg.SignLines && i < len(split)+first; i++ {
		if i < first {
			continue
		}
		line := split[i-first]
		if r := []rune(line); len(r) > modelpkg.SignLineWidth {
			line = string(r[:modelpkg.SignLineWidth])
		}
		lines[i] = line
	}
	return lines
}
