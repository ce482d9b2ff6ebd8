package command

import (
	"fmt"
	"strings"

	"turtlecraft.ai/internal/sim/turtle"
	"turtlecraft.ai/internal/sim/turtle/upgrades"
	"turtlecraft.ai/internal/sim/world/capture"
	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
)

// Attack hits the first living actor in reach with a tool upgrade.
type Attack struct {
	Dir  RelDir
	Side *turtle.Side
}

func (Attack) Verb() string { return "attack" }

func (c Attack) Execute(env Env, t *turtle.Turtle) (Result, error) {
	dir := c.Dir.World(t.Facing())
	return useTools(t, c.Side, "attack", func(tool *upgrades.Tool) (Result, error) {
		return attackWith(env, t, tool, dir)
	})
}

// Dig breaks the block in Dir with a tool upgrade (hoes and shovels first try
// to till or flatten).
type Dig struct {
	Dir  RelDir
	Side *turtle.Side
}

func (Dig) Verb() string { return "dig" }

func (c Dig) Execute(env Env, t *turtle.Turtle) (Result, error) {
	dir := c.Dir.World(t.Facing())
	return useTools(t, c.Side, "dig", func(tool *upgrades.Tool) (Result, error) {
		return digWith(env, t, tool, dir)
	})
}

// useTools tries the tool on the requested side, or each mounted tool in turn,
// returning the first success or else the first failure.
func useTools(t *turtle.Turtle, side *turtle.Side, verb string, use func(*upgrades.Tool) (Result, error)) (Result, error) {
	var first *Result
	for _, s := range []turtle.Side{turtle.Left, turtle.Right} {
		if side != nil && *side != s {
			continue
		}
		tool := t.Tool(s)
		if tool == nil {
			continue
		}
		res, err := use(tool)
		if err != nil {
			return Result{}, err
		}
		if res.Success {
			t.Animate(turtle.AnimSwing)
			return res, nil
		}
		if first == nil {
			first = &res
		}
	}
	if first != nil {
		return *first, nil
	}
	return Failure("No tool to " + strings.ToLower(verb)), nil
}

func attackWith(env Env, t *turtle.Turtle, tool *upgrades.Tool, dir modelpkg.Direction) (Result, error) {
	tun := env.Tuning()
	a, _, ok := env.RayTraceActor(t.Pos().Center(), dir.Unit(), tun.Turtle.Reach)
	if !ok || !a.Alive() {
		return Failure("Nothing to attack here"), nil
	}
	proxy := env.NewProxy(t.Owner(), t.Pos(), dir, modelpkg.Stack(tool.Item(), 1))

	sess, err := env.Capture().Begin(capture.ActorRegion(a, tun.Capture.Padding), intoTurtle(env, t))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}
	defer sess.End(dropAt(env, t, t.Facing().Opposite()))

	def, known := env.Catalogs().Actors.Defs[a.Kind]
	if !known || !def.Attackable || !env.CanDamage(a.Pos.Block(), t.Owner()) {
		return Failure("Nothing to attack here"), nil
	}
	damage := proxy.AttackDamage() * tool.DamageMultiplier()
	if damage <= 0 {
		return Failure("Nothing to attack here"), nil
	}
	if !proxy.Attack(a, damage) {
		return Failure("Nothing to attack here"), nil
	}
	// Props take a first hit as a punch; the second one breaks them.
	if a.Prop && a.Alive() {
		proxy.Attack(a, damage)
	}
	return Success(), nil
}

func digWith(env Env, t *turtle.Turtle, tool *upgrades.Tool, dir modelpkg.Direction) (Result, error) {
	tun := env.Tuning()
	if tun.Turtle.IsPlacementTool(tool.ToolKind()) {
		proxy := env.NewProxy(t.Owner(), t.Pos(), dir, modelpkg.Stack(tool.Item(), 1))
		res, err := deploy(env, t, proxy, dir, nil)
		if err != nil {
			return Result{}, err
		}
		if res.Success {
			return res, nil
		}
	}

	target := t.Pos().Offset(dir)
	block := env.BlockAt(target)
	if block == "" || block == airBlock || env.IsLiquid(target) {
		return Failure("Nothing to dig here"), nil
	}
	def := env.Catalogs().Blocks.Defs[block]
	proxy := env.NewProxy(t.Owner(), t.Pos(), dir, modelpkg.Stack(tool.Item(), 1))
	if def.Unbreakable() || proxy.MiningProgress(target) <= 0 {
		return Failure("Cannot break unbreakable block"), nil
	}
	if tool.Restricted() && !tool.Effective(def) && !def.HasTag("ALWAYS_BREAKABLE") && def.Hardness != 0 {
		return Failure("Cannot break block with this tool"), nil
	}
	if !env.PreBreak(target, t.Owner()) || !env.EditableForBreaking(target, t.Owner()) {
		return Failure("Cannot break protected block"), nil
	}

	sess, err := env.Capture().Begin(capture.BlockRegion(target, tun.Capture.Padding), intoTurtle(env, t))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}
	defer sess.End(dropAt(env, t, t.Facing().Opposite()))

	env.PlayEffect("block_break", target)
	canHarvest := proxy.CanHarvest(target)
	if proxy.RemoveBlock(target) && canHarvest {
		proxy.HarvestDrops(target, block)
	}
	return Success(), nil
}
