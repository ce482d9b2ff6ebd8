// Package snapshot stores world state as a JSON header line followed by a gob
// body, zstd-compressed. Turtles are not part of a snapshot.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	MinY int `json:"min_y"`
	MaxY int `json:"max_y"`
	// Palette maps chunk block ids to block names at export time.
	Palette []string `json:"palette"`

	Chunks       []ChunkV1      `json:"chunks"`
	Containers   []ContainerV1  `json:"containers"`
	ItemEntities []ItemEntityV1 `json:"item_entities"`
	Signs        []SignV1       `json:"signs"`
	Claims       []ClaimV1      `json:"claims"`
	Actors       []ActorV1      `json:"actors"`
	Counters     CountersV1     `json:"counters"`
}

type CountersV1 struct {
	NextEntity uint64 `json:"next_entity"`
	NextActor  uint64 `json:"next_actor"`
	NextLand   uint64 `json:"next_land"`
}

type ChunkV1 struct {
	CX int `json:"cx"`
	CZ int `json:"cz"`
	// Blocks is the run-length encoded column (see EncodeBlocks).
	Blocks []byte `json:"blocks"`
}

type ItemStackV1 struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
	Label string `json:"label,omitempty"`
}

type ContainerV1 struct {
	Type  string        `json:"type"`
	Pos   [3]int        `json:"pos"`
	Slots []ItemStackV1 `json:"slots"`
}

type ItemEntityV1 struct {
	ID          string      `json:"id"`
	Pos         [3]float64  `json:"pos"`
	Stack       ItemStackV1 `json:"stack"`
	CreatedTick uint64      `json:"created_tick"`
	ExpiresTick uint64      `json:"expires_tick"`
}

type SignV1 struct {
	Pos         [3]int    `json:"pos"`
	Lines       [4]string `json:"lines"`
	UpdatedTick uint64    `json:"updated_tick"`
	UpdatedBy   string    `json:"updated_by"`
}

type ClaimV1 struct {
	LandID      string   `json:"land_id"`
	Owner       string   `json:"owner"`
	Anchor      [3]int   `json:"anchor"`
	Radius      int      `json:"radius"`
	AllowBuild  bool     `json:"allow_build"`
	AllowBreak  bool     `json:"allow_break"`
	AllowDamage bool     `json:"allow_damage"`
	Members     []string `json:"members,omitempty"`
}

type ActorV1 struct {
	ID       string      `json:"id"`
	Kind     string      `json:"kind"`
	Name     string      `json:"name,omitempty"`
	Pos      [3]float64  `json:"pos"`
	HP       float64     `json:"hp"`
	Equipped ItemStackV1 `json:"equipped"`
	Punched  bool        `json:"punched,omitempty"`
}

func WriteSnapshot(path string, snap SnapshotV1) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 128*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 128*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return snap, fmt.Errorf("decode header: %w", err)
	}
	if h.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", h.Version)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

// FileName is the snapshot file name for tick.
func FileName(tick uint64) string {
	return strconv.FormatUint(tick, 10) + ".snap.zst"
}

// Latest returns the snapshot in dir with the highest tick, or "".
func Latest(dir string) string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var (
		best     string
		bestTick uint64
	)
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			best, bestTick = filepath.Join(dir, name), tick
		}
	}
	return best
}
