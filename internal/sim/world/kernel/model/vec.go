package model

import "math"

type Vec3i struct {
	X int
	Y int
	Z int
}

func (v Vec3i) ToArray() [3]int { return [3]int{v.X, v.Y, v.Z} }

func (v Vec3i) Add(o Vec3i) Vec3i { return Vec3i{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }

// Offset returns the neighbouring block position in direction d.
func (v Vec3i) Offset(d Direction) Vec3i { return v.Add(d.Vec()) }

// Center returns the centre point of the block at v.
func (v Vec3i) Center() Vec3 {
	return Vec3{X: float64(v.X) + 0.5, Y: float64(v.Y) + 0.5, Z: float64(v.Z) + 0.5}
}

func Manhattan(a, b Vec3i) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	dz := a.Z - b.Z
	if dz < 0 {
		dz = -dz
	}
	return dx + dy + dz
}

// Vec3 is a continuous world position (actors, item entities).
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }

func (v Vec3) Scale(f float64) Vec3 { return Vec3{X: v.X * f, Y: v.Y * f, Z: v.Z * f} }

// Block returns the position of the block containing v.
func (v Vec3) Block() Vec3i {
	return Vec3i{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y)), Z: int(math.Floor(v.Z))}
}

// AABB is an axis aligned box; Min is inclusive, Max exclusive for containment.
type AABB struct {
	Min Vec3
	Max Vec3
}

// BlockBox returns the unit cube occupied by the block at p.
func BlockBox(p Vec3i) AABB {
	min := Vec3{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}
	return AABB{Min: min, Max: min.Add(Vec3{X: 1, Y: 1, Z: 1})}
}

func (b AABB) Grow(d float64) AABB {
	return AABB{
		Min: Vec3{X: b.Min.X - d, Y: b.Min.Y - d, Z: b.Min.Z - d},
		Max: Vec3{X: b.Max.X + d, Y: b.Max.Y + d, Z: b.Max.Z + d},
	}
}

func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X < b.Max.X &&
		p.Y >= b.Min.Y && p.Y < b.Max.Y &&
		p.Z >= b.Min.Z && p.Z < b.Max.Z
}

func (b AABB) Intersects(o AABB) bool {
	return b.Min.X < o.Max.X && b.Max.X > o.Min.X &&
		b.Min.Y < o.Max.Y && b.Max.Y > o.Min.Y &&
		b.Min.Z < o.Max.Z && b.Max.Z > o.Min.Z
}

// RayHit returns the distance along the ray (from, unit dir) at which it enters b,
// or ok=false when the ray misses within maxDist.
func (b AABB) RayHit(from, dir Vec3, maxDist float64) (dist float64, ok bool) {
	tmin, tmax := 0.0, maxDist
	axes := [3][3]float64{
		{from.X, dir.X, 0},
		{from.Y, dir.Y, 1},
		{from.Z, dir.Z, 2},
	}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}
	for _, a := range axes {
		o, d, i := a[0], a[1], int(a[2])
		if d == 0 {
			if o < lo[i] || o >= hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - o) / d
		t2 := (hi[i] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
