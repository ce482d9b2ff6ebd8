package main

import (
	"path/filepath"
	"testing"

	"turtlecraft.ai/internal/persistence/snapshot"
)

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:4000": true,
		"[::1]:4000":     true,
		"10.0.0.2:4000":  false,
		"garbage":        false,
	}
	for in, want := range cases {
		if got := isLoopbackRemote(in); got != want {
			t.Fatalf("%s: got %v want %v", in, got, want)
		}
	}
}

func TestSaveSnapshotIsPickedAsLatest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")
	for _, tick := range []uint64{5, 50} {
		snap := snapshot.SnapshotV1{Header: snapshot.Header{Version: snapshot.Version, WorldID: "w", Tick: tick}}
		if _, err := saveSnapshot(dir, snap); err != nil {
			t.Fatalf("save %d: %v", tick, err)
		}
	}
	latest := snapshot.Latest(dir)
	got, err := snapshot.ReadSnapshot(latest)
	if err != nil {
		t.Fatalf("read %s: %v", latest, err)
	}
	if got.Header.Tick != 50 {
		t.Fatalf("latest tick=%d", got.Header.Tick)
	}
}
