package world

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"turtlecraft.ai/internal/sim/world/logic/mathx"
)

const chunkSize = 16

type ChunkKey struct {
	CX int
	CZ int
}

// Chunk is a 16x16 column spanning the full build height.
type Chunk struct {
	CX, CZ int
	MinY   int
	Height int
	Blocks []uint16 // x fastest, then z, then y

	dirty bool
	hash  [32]byte
}

func (c *Chunk) index(x, y, z int) int {
	return x + z*chunkSize + (y-c.MinY)*chunkSize*chunkSize
}

func (c *Chunk) Get(x, y, z int) uint16 {
	return c.Blocks[c.index(x, y, z)]
}

func (c *Chunk) Set(x, y, z int, b uint16) {
	i := c.index(x, y, z)
	if c.Blocks[i] == b {
		return
	}
	c.Blocks[i] = b
	c.dirty = true
}

func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [2]byte
		for _, v := range c.Blocks {
			binary.LittleEndian.PutUint16(tmp[:], v)
			h.Write(tmp[:])
		}
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}

// WorldGen fills new chunks with flat layers stacked from MinY.
type WorldGen struct {
	MinY   int
	MaxY   int
	Air    uint16
	Layers []uint16
}

type ChunkStore struct {
	gen WorldGen
	// Accessed only from the world loop goroutine.
	chunks map[ChunkKey]*Chunk
}

func NewChunkStore(gen WorldGen) *ChunkStore {
	return &ChunkStore{
		gen:    gen,
		chunks: map[ChunkKey]*Chunk{},
	}
}

func (s *ChunkStore) inBounds(pos Vec3i) bool {
	return pos.Y >= s.gen.MinY && pos.Y <= s.gen.MaxY
}

func (s *ChunkStore) GetBlock(pos Vec3i) uint16 {
	if !s.inBounds(pos) {
		return s.gen.Air
	}
	ch := s.getOrGenChunk(mathx.FloorDiv(pos.X, chunkSize), mathx.FloorDiv(pos.Z, chunkSize))
	return ch.Get(mathx.Mod(pos.X, chunkSize), pos.Y, mathx.Mod(pos.Z, chunkSize))
}

func (s *ChunkStore) SetBlock(pos Vec3i, b uint16) {
	if !s.inBounds(pos) {
		return
	}
	ch := s.getOrGenChunk(mathx.FloorDiv(pos.X, chunkSize), mathx.FloorDiv(pos.Z, chunkSize))
	ch.Set(mathx.Mod(pos.X, chunkSize), pos.Y, mathx.Mod(pos.Z, chunkSize), b)
}

func (s *ChunkStore) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.chunks))
	for k := range s.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

// Digest hashes all loaded chunks in key order.
func (s *ChunkStore) Digest() [32]byte {
	h := sha256.New()
	for _, k := range s.LoadedChunkKeys() {
		d := s.chunks[k].Digest()
		h.Write(d[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (s *ChunkStore) getOrGenChunk(cx, cz int) *Chunk {
	k := ChunkKey{CX: cx, CZ: cz}
	if ch, ok := s.chunks[k]; ok {
		return ch
	}
	height := s.gen.MaxY - s.gen.MinY + 1
	ch := &Chunk{
		CX:     cx,
		CZ:     cz,
		MinY:   s.gen.MinY,
		Height: height,
		Blocks: make([]uint16, chunkSize*chunkSize*height),
	}
	s.generateChunk(ch)
	ch.dirty = true
	_ = ch.Digest()
	s.chunks[k] = ch
	return ch
}

func (s *ChunkStore) generateChunk(ch *Chunk) {
	for y := ch.MinY; y < ch.MinY+ch.Height; y++ {
		b := s.gen.Air
		if i := y - s.gen.MinY; i < len(s.gen.Layers) {
			b = s.gen.Layers[i]
		}
		if b == s.gen.Air {
			continue
		}
		for z := 0; z < chunkSize; z++ {
			for x := 0; x < chunkSize; x++ {
				ch.Blocks[ch.index(x, y, z)] = b
			}
		}
	}
}
