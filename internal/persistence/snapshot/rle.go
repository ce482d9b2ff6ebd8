package snapshot

import (
	"encoding/binary"
	"fmt"
)

// EncodeBlocks packs palette ids as uvarint (id, run) pairs.
func EncodeBlocks(ids []uint16) []byte {
	out := make([]byte, 0, 64)
	for i := 0; i < len(ids); {
		id := ids[i]
		j := i + 1
		for j < len(ids) && ids[j] == id {
			j++
		}
		out = binary.AppendUvarint(out, uint64(id))
		out = binary.AppendUvarint(out, uint64(j-i))
		i = j
	}
	return out
}

// DecodeBlocks expands b into exactly n ids.
func DecodeBlocks(b []byte, n int) ([]uint16, error) {
	out := make([]uint16, 0, n)
	for off := 0; off < len(b); {
		id, k := binary.Uvarint(b[off:])
		if k <= 0 || id > 0xFFFF {
			return nil, fmt.Errorf("rle: bad id at byte %d", off)
		}
		off += k
		run, k := binary.Uvarint(b[off:])
		if k <= 0 || run == 0 || uint64(len(out))+run > uint64(n) {
			return nil, fmt.Errorf("rle: bad run at byte %d", off)
		}
		off += k
		for r := uint64(0); r < run; r++ {
			out = append(out, uint16(id))
		}
	}
	if len(out) != n {
		return nil, fmt.Errorf("rle: decoded %d ids, want %d", len(out), n)
	}
	return out, nil
}
