package ids

import (
	"strconv"
	"strings"
)

func MaxU64(a, b uint64) uint64 {
	if a >= b {
		return a
	}
	return b
}

// EntityID formats a world-unique entity id such as "I12" or "M3".
func EntityID(prefix string, n uint64) string {
	return prefix + strconv.FormatUint(n, 10)
}

func ParseUintAfterPrefix(prefix, id string) (uint64, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.ParseUint(id[len(prefix):], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
