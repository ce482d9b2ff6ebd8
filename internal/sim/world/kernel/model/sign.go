package model

// SignLines is the number of text lines on a sign; each line holds SignLineWidth chars.
const (
	SignLines     = 4
	SignLineWidth = 15
)

// Sign stores the text associated with a SIGN block.
type Sign struct {
	Pos         Vec3i
	Lines       [SignLines]string
	UpdatedTick uint64
	UpdatedBy   string
}
