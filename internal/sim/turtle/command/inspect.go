package command

import (
	"turtlecraft.ai/internal/sim/turtle"
)

// Detect succeeds when a solid (non-air, non-liquid) block is in Dir.
type Detect struct {
	Dir RelDir
}

func (Detect) Verb() string { return "detect" }

func (c Detect) Execute(env Env, t *turtle.Turtle) (Result, error) {
	target := t.Pos().Offset(c.Dir.World(t.Facing()))
	block := env.BlockAt(target)
	if block == airBlock || env.IsLiquid(target) {
		return Failure(""), nil
	}
	return Success(), nil
}

// Inspect returns a descriptor of the block in Dir.
type Inspect struct {
	Dir RelDir
}

func (Inspect) Verb() string { return "inspect" }

func (c Inspect) Execute(env Env, t *turtle.Turtle) (Result, error) {
	target := t.Pos().Offset(c.Dir.World(t.Facing()))
	block := env.BlockAt(target)
	if block == airBlock {
		return Failure("No block to inspect"), nil
	}
	def := env.Catalogs().Blocks.Defs[block]
	tags := map[string]bool{}
	for _, tag := range def.Tags {
		tags[tag] = true
	}
	state := map[string]any{}
	if def.Liquid {
		state["liquid"] = true
	}
	return Success(map[string]any{
		"name":  block,
		"tags":  tags,
		"state": state,
	}), nil
}

// Compare succeeds when the selected item would place the block in Dir. An
// empty slot matches air.
type Compare struct {
	Dir RelDir
}

func (Compare) Verb() string { return "compare" }

func (c Compare) Execute(env Env, t *turtle.Turtle) (Result, error) {
	target := t.Pos().Offset(c.Dir.World(t.Facing()))
	block := env.BlockAt(target)
	stack := t.SelectedStack()
	if stack.Empty() {
		if block == airBlock {
			return Success(), nil
		}
		return Failure(""), nil
	}
	if placed, ok := env.Catalogs().BlockForItem(stack.Item); ok && placed == block {
		return Success(), nil
	}
	return Failure(""), nil
}
