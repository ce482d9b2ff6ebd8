package command

import "turtlecraft.ai/internal/sim/turtle"

type Move struct {
	Dir RelDir
}

func (Move) Verb() string { return "move" }

func (c Move) Execute(env Env, t *turtle.Turtle) (Result, error) {
	pos := t.Pos()
	target := pos.Offset(c.Dir.World(t.Facing()))
	if !env.InBuildLimits(target) {
		if target.Y > pos.Y {
			return Failure("Too high to move"), nil
		}
		if target.Y < pos.Y {
			return Failure("Too low to move"), nil
		}
		return Failure("Cannot leave the world"), nil
	}
	if !env.EditableForPlacement(target, t.Owner()) {
		return Failure("Cannot enter protected area"), nil
	}
	block := env.BlockAt(target)
	if block != airBlock && !env.IsLiquid(target) && !env.Catalogs().Blocks.Defs[block].Replaceable {
		return Failure("Movement obstructed"), nil
	}
	if env.SolidActorAt(target) {
		return Failure("Movement obstructed"), nil
	}
	if !t.ConsumeFuel(1) {
		return Failure("Out of fuel"), nil
	}
	env.MoveTurtle(t, target)
	t.Animate(turtle.AnimMove)
	return Success(), nil
}

type Turn struct {
	Side turtle.Side
}

func (Turn) Verb() string { return "turn" }

func (c Turn) Execute(env Env, t *turtle.Turtle) (Result, error) {
	if c.Side == turtle.Left {
		t.SetFacing(t.Facing().RotateLeft())
	} else {
		t.SetFacing(t.Facing().RotateRight())
	}
	t.Animate(turtle.AnimTurn)
	return Success(), nil
}
