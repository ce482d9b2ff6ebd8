package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"turtlecraft.ai/internal/persistence/indexdb"
	persistlog "turtlecraft.ai/internal/persistence/log"
	"turtlecraft.ai/internal/persistence/snapshot"
	"turtlecraft.ai/internal/sim/catalogs"
	"turtlecraft.ai/internal/sim/tuning"
	"turtlecraft.ai/internal/sim/turtle"
	"turtlecraft.ai/internal/sim/world"
	modelpkg "turtlecraft.ai/internal/sim/world/kernel/model"
	"turtlecraft.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite index (journals are always written)")
		cmdTimeout = flag.Duration("command_timeout", 10*time.Second, "max wait for one command result")
		snapPath   = flag.String("snapshot", "", "snapshot to load (default: latest in <data>/worlds/<world>/snapshots)")
		snapOnExit = flag.Bool("snapshot_on_exit", true, "write a snapshot after the world loop stops")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	w, err := world.New(world.Config{
		ID:     *worldID,
		Tuning: tune,
		Logger: log.New(os.Stdout, "[world] ", log.LstdFlags|log.Lmicroseconds),
	}, cats)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	snapDir := filepath.Join(worldDir, "snapshots")
	if p := strings.TrimSpace(*snapPath); p != "" || snapshot.Latest(snapDir) != "" {
		if p == "" {
			p = snapshot.Latest(snapDir)
		}
		snap, err := snapshot.ReadSnapshot(p)
		if err != nil {
			logger.Fatalf("read snapshot %s: %v", p, err)
		}
		if err := w.ImportSnapshot(snap); err != nil {
			logger.Fatalf("import snapshot %s: %v", p, err)
		}
		logger.Printf("loaded snapshot %s (tick=%d)", p, snap.Header.Tick)
	}
	for _, sp := range tune.Turtles {
		facing, ok := modelpkg.ParseDirection(sp.Facing)
		if !ok || !facing.Horizontal() {
			facing = modelpkg.North
		}
		_, err := w.AddTurtle(turtle.Config{
			ID:     sp.ID,
			Owner:  sp.Owner,
			Pos:    modelpkg.Vec3i{X: sp.Pos[0], Y: sp.Pos[1], Z: sp.Pos[2]},
			Facing: facing,
			Fuel:   sp.Fuel,
		})
		if err != nil {
			logger.Fatalf("spawn turtle %s: %v", sp.ID, err)
		}
	}

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, "index", "world.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(*configDir, cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
	}

	cmdLog := persistlog.NewCommandLogger(worldDir)
	auditLog := persistlog.NewAuditLogger(worldDir)
	defer cmdLog.Close()
	defer auditLog.Close()
	w.SetCommandLogger(multiCommandLogger{cmdLog, idx})
	w.SetAuditLogger(multiAuditLogger{auditLog, idx})

	ctx, cancel := signalContext()
	defer cancel()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	wsSrv := ws.NewServer(ws.Config{
		Owners:         w.TurtleOwners(),
		Catalogs:       cats,
		CommandTimeout: *cmdTimeout,
	}, world.NewBridge(w), log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		resp := struct {
			WorldID string         `json:"world_id"`
			Tick    uint64         `json:"tick"`
			Index   *indexdb.Stats `json:"index,omitempty"`
		}{WorldID: *worldID, Tick: w.CurrentTick()}
		if idx != nil {
			st := idx.Stats()
			resp.Index = &st
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	})
	mux.HandleFunc("/admin/v1/snapshot", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		reqCtx, reqCancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer reqCancel()
		snap, err := w.RequestSnapshot(reqCtx)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusServiceUnavailable)
			return
		}
		path, err := saveSnapshot(snapDir, snap)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusInternalServerError)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]any{"path": path, "tick": snap.Header.Tick})
	})
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (world=%s turtles=%d)", *addr, *worldID, len(tune.Turtles))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
	cancel()
	<-runDone
	if *snapOnExit {
		// The loop has exited, so exporting from this goroutine is safe.
		if path, err := saveSnapshot(snapDir, w.ExportSnapshot()); err != nil {
			logger.Printf("final snapshot: %v", err)
		} else {
			logger.Printf("final snapshot %s", path)
		}
	}
}

func saveSnapshot(dir string, snap snapshot.SnapshotV1) (string, error) {
	path := filepath.Join(dir, snapshot.FileName(snap.Header.Tick))
	return path, snapshot.WriteSnapshot(path, snap)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// multiCommandLogger fans entries out to the journal and the index.
type multiCommandLogger struct {
	journal world.CommandLogger
	index   *indexdb.SQLiteIndex
}

func (m multiCommandLogger) WriteCommand(e world.CommandLogEntry) error {
	err := m.journal.WriteCommand(e)
	if m.index != nil {
		_ = m.index.WriteCommand(e)
	}
	return err
}

type multiAuditLogger struct {
	journal world.AuditLogger
	index   *indexdb.SQLiteIndex
}

func (m multiAuditLogger) WriteAudit(e world.AuditEntry) error {
	err := m.journal.WriteAudit(e)
	if m.index != nil {
		_ = m.index.WriteAudit(e)
	}
	return err
}
