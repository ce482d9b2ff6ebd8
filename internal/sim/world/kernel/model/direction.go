package model

import "strings"

// Direction is an absolute world direction. Values match the turtle API ordering.
type Direction int

const (
	Down Direction = iota
	Up
	North
	South
	West
	East
)

var directionNames = [...]string{"down", "up", "north", "south", "west", "east"}

func (d Direction) String() string {
	if d < Down || d > East {
		return "unknown"
	}
	return directionNames[d]
}

func ParseDirection(s string) (Direction, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range directionNames {
		if n == s {
			return Direction(i), true
		}
	}
	return 0, false
}

func (d Direction) Vec() Vec3i {
	switch d {
	case Down:
		return Vec3i{Y: -1}
	case Up:
		return Vec3i{Y: 1}
	case North:
		return Vec3i{Z: -1}
	case South:
		return Vec3i{Z: 1}
	case West:
		return Vec3i{X: -1}
	case East:
		return Vec3i{X: 1}
	}
	return Vec3i{}
}

// Unit returns the direction as a continuous unit vector.
func (d Direction) Unit() Vec3 {
	v := d.Vec()
	return Vec3{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func (d Direction) Opposite() Direction {
	switch d {
	case Down:
		return Up
	case Up:
		return Down
	case North:
		return South
	case South:
		return North
	case West:
		return East
	default:
		return West
	}
}

func (d Direction) Horizontal() bool { return d >= North }

// RotateLeft turns a horizontal direction 90 degrees counter-clockwise (seen from above).
func (d Direction) RotateLeft() Direction {
	switch d {
	case North:
		return West
	case West:
		return South
	case South:
		return East
	case East:
		return North
	}
	return d
}

func (d Direction) RotateRight() Direction {
	switch d {
	case North:
		return East
	case East:
		return South
	case South:
		return West
	case West:
		return North
	}
	return d
}
