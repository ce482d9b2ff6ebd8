package model

// ItemStack is a value: a count of one item kind. The zero value is the empty stack.
// Label carries per-stack data (e.g. the name written on a NAME_TAG); stacks only
// merge when Item and Label both match.
type ItemStack struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
	Label string `json:"label,omitempty"`
}

func Stack(item string, count int) ItemStack {
	if item == "" || count <= 0 {
		return ItemStack{}
	}
	return ItemStack{Item: item, Count: count}
}

func (s ItemStack) Empty() bool { return s.Item == "" || s.Count <= 0 }

// WithCount returns a copy of s holding n items (empty when n <= 0).
func (s ItemStack) WithCount(n int) ItemStack {
	if s.Item == "" || n <= 0 {
		return ItemStack{}
	}
	s.Count = n
	return s
}

// Split removes up to n items: taken holds them, rest what remains.
func (s ItemStack) Split(n int) (taken, rest ItemStack) {
	if s.Empty() || n <= 0 {
		return ItemStack{}, s.normalized()
	}
	if n > s.Count {
		n = s.Count
	}
	return s.WithCount(n), s.WithCount(s.Count - n)
}

// CanStack reports whether o may merge into s.
func (s ItemStack) CanStack(o ItemStack) bool {
	if s.Empty() || o.Empty() {
		return false
	}
	return s.Item == o.Item && s.Label == o.Label
}

// Equal compares kind, label and count; empty stacks are all equal.
func (s ItemStack) Equal(o ItemStack) bool {
	if s.Empty() || o.Empty() {
		return s.Empty() && o.Empty()
	}
	return s == o
}

func (s ItemStack) normalized() ItemStack {
	if s.Empty() {
		return ItemStack{}
	}
	return s
}
