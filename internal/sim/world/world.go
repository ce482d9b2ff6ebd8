// Package world is the authoritative simulation: blocks, loose items, actors,
// containers and turtles. A single goroutine (Run) owns all state; turtle
// commands are executed synchronously inside it.
package world

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"turtlecraft.ai/internal/persistence/snapshot"
	"turtlecraft.ai/internal/sim/catalogs"
	"turtlecraft.ai/internal/sim/tuning"
	"turtlecraft.ai/internal/sim/turtle"
	"turtlecraft.ai/internal/sim/turtle/upgrades"
	"turtlecraft.ai/internal/sim/world/capture"
	"turtlecraft.ai/internal/sim/world/feature/entities/items"
	"turtlecraft.ai/internal/sim/world/feature/governance/permissions"
	"turtlecraft.ai/internal/sim/world/logic/ids"
)

type CommandLogger interface {
	WriteCommand(entry CommandLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

// CommandLogEntry records one executed turtle command.
type CommandLogEntry struct {
	Tick      uint64 `json:"tick"`
	TurtleID  string `json:"turtle_id"`
	RequestID string `json:"request_id,omitempty"`
	Verb      string `json:"verb"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	Fuel      int    `json:"fuel"`
	Pos       [3]int `json:"pos"`
}

type AuditEntry struct {
	Tick    uint64         `json:"tick"`
	Actor   string         `json:"actor"`
	Action  string         `json:"action"`
	Pos     [3]int         `json:"pos"`
	From    uint16         `json:"from,omitempty"`
	To      uint16         `json:"to,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type Config struct {
	ID     string
	Tuning tuning.Tuning
	// Logger receives operational messages (nil = log.Default()).
	Logger *log.Logger
}

// Effect is a cosmetic event (sounds, particles, turtle animations).
type Effect struct {
	Tick uint64 `json:"tick"`
	Name string `json:"name"`
	Pos  [3]int `json:"pos"`
}

const maxBufferedEffects = 256

type World struct {
	cfg      Config
	tun      tuning.Tuning
	catalogs *catalogs.Catalogs
	upgrades *upgrades.Registry
	logger   *log.Logger

	tick atomic.Uint64

	chunks   *ChunkStore
	airID    uint16
	turtleID uint16

	turtles    map[string]*turtle.Turtle
	actors     map[string]*Actor
	items      *items.Store
	containers map[Vec3i]*Container
	signs      map[Vec3i]*Sign
	claims     map[string]*LandClaim
	policy     permissions.Policy
	capture    capture.Slot
	effects    []Effect

	inbox   chan CommandEnvelope
	snapReq chan chan snapshot.SnapshotV1
	stop    chan struct{}

	nextEntityNum atomic.Uint64
	nextActorNum  atomic.Uint64
	nextLandNum   atomic.Uint64
	nextTurtleNum atomic.Uint64

	commandLogger CommandLogger
	auditLogger   AuditLogger
}

func New(cfg Config, cats *catalogs.Catalogs) (*World, error) {
	if cats == nil {
		return nil, fmt.Errorf("world: nil catalogs")
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	turtleBlock, ok := cats.Blocks.Index[turtleBlockName]
	if !ok {
		return nil, fmt.Errorf("world: block catalog has no %s", turtleBlockName)
	}
	gen := WorldGen{
		MinY: cfg.Tuning.World.MinY,
		MaxY: cfg.Tuning.World.MaxY,
		Air:  cats.Blocks.Index[airBlockName],
	}
	for _, name := range cfg.Tuning.World.Layers {
		b, ok := cats.Blocks.Index[name]
		if !ok {
			return nil, fmt.Errorf("world: unknown layer block %q", name)
		}
		gen.Layers = append(gen.Layers, b)
	}
	buf := cfg.Tuning.World.InboxBuffer
	if buf <= 0 {
		buf = 1024
	}

	w := &World{
		cfg:        cfg,
		tun:        cfg.Tuning,
		catalogs:   cats,
		upgrades:   upgrades.NewRegistry(cats),
		logger:     cfg.Logger,
		chunks:     NewChunkStore(gen),
		airID:      gen.Air,
		turtleID:   turtleBlock,
		turtles:    map[string]*turtle.Turtle{},
		actors:     map[string]*Actor{},
		containers: map[Vec3i]*Container{},
		signs:      map[Vec3i]*Sign{},
		claims:     map[string]*LandClaim{},
		inbox:      make(chan CommandEnvelope, buf),
		snapReq:    make(chan chan snapshot.SnapshotV1),
		stop:       make(chan struct{}),
	}
	w.items = newItemStore(w)
	w.policy = permissions.Policy{
		Enabled:     cfg.Tuning.Protect.Enabled,
		SpawnRadius: cfg.Tuning.Protect.SpawnRadius,
		SpawnX:      cfg.Tuning.Protect.SpawnX,
		SpawnZ:      cfg.Tuning.Protect.SpawnZ,
		ClaimAt:     w.claimAt,
	}
	return w, nil
}

func newItemStore(w *World) *items.Store {
	return items.NewStore(w.tun.World.ItemEntityTTL, func() string {
		return ids.EntityID("I", w.nextEntityNum.Add(1))
	}, w.auditEvent)
}

func (w *World) ID() string                       { return w.cfg.ID }
func (w *World) CurrentTick() uint64              { return w.tick.Load() }
func (w *World) SetCommandLogger(l CommandLogger) { w.commandLogger = l }
func (w *World) SetAuditLogger(l AuditLogger)     { w.auditLogger = l }

// Inbox is where bridges submit command envelopes.
func (w *World) Inbox() chan<- CommandEnvelope { return w.inbox }

// Done is closed once Stop has been called.
func (w *World) Done() <-chan struct{} { return w.stop }

func (w *World) Run(ctx context.Context) error {
	interval := time.Duration(w.tun.World.TickDurationMs) * time.Millisecond
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case env := <-w.inbox:
			env.Resp <- w.handleCommand(env)
		case reply := <-w.snapReq:
			reply <- w.ExportSnapshot()
		case <-ticker.C:
			w.step()
		}
	}
}

func (w *World) Stop() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
}

// step advances the clock and expires loose items.
func (w *World) step() {
	now := w.tick.Add(1)
	w.items.CleanupExpired(now)
}

// StepForTest runs one tick without the loop.
func (w *World) StepForTest() { w.step() }

func (w *World) logf(format string, args ...any) {
	w.logger.Printf(format, args...)
}

func (w *World) playEffect(name string, pos Vec3i) {
	if len(w.effects) >= maxBufferedEffects {
		w.effects = w.effects[1:]
	}
	w.effects = append(w.effects, Effect{Tick: w.CurrentTick(), Name: name, Pos: pos.ToArray()})
}

// DrainEffects returns and clears buffered effects. Loop goroutine only.
func (w *World) DrainEffects() []Effect {
	out := w.effects
	w.effects = nil
	return out
}
