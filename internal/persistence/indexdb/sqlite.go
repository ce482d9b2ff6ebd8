// Package indexdb keeps a queryable SQLite copy of the world journals.
// The JSONL journals stay the source of truth; the index may drop writes
// when it falls behind.
package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"turtlecraft.ai/internal/sim/catalogs"
	"turtlecraft.ai/internal/sim/tuning"
	"turtlecraft.ai/internal/sim/world"
)

const defaultQueueSize = 65536

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropCommand atomic.Uint64
	dropAudit   atomic.Uint64
}

type reqKind int

const (
	reqCommand reqKind = iota + 1
	reqAudit
)

type req struct {
	kind    reqKind
	command world.CommandLogEntry
	audit   world.AuditEntry
}

type Stats struct {
	QueueDepth       int
	QueueCapacity    int
	DropCommandTotal uint64
	DropAuditTotal   uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{db: db, ch: make(chan req, defaultQueueSize)}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS commands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tick INTEGER NOT NULL,
			turtle_id TEXT NOT NULL,
			request_id TEXT,
			verb TEXT NOT NULL,
			success INTEGER NOT NULL,
			message TEXT,
			code TEXT,
			fuel INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_commands_turtle_tick ON commands(turtle_id, tick);`,
		`CREATE TABLE IF NOT EXISTS audits (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			actor TEXT NOT NULL,
			action TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			from_block INTEGER NOT NULL,
			to_block INTEGER NOT NULL,
			reason TEXT,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_actor_tick ON audits(actor, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_pos_tick ON audits(x, z, y, tick);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	return Stats{
		QueueDepth:       len(s.ch),
		QueueCapacity:    cap(s.ch),
		DropCommandTotal: s.dropCommand.Load(),
		DropAuditTotal:   s.dropAudit.Load(),
	}
}

func (s *SQLiteIndex) WriteCommand(entry world.CommandLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqCommand, command: entry}:
	default:
		s.dropCommand.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) WriteAudit(entry world.AuditEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqAudit, audit: entry}:
	default:
		s.dropAudit.Add(1)
	}
	return nil
}

// UpsertCatalogs records the catalogs and tuning the server started with.
func (s *SQLiteIndex) UpsertCatalogs(configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type row struct {
		name   string
		digest string
		json   []byte
	}
	var rows []row
	raw := func(name, file, digest string) {
		if configDir == "" {
			return
		}
		b, err := os.ReadFile(filepath.Join(configDir, file))
		if err != nil || len(b) == 0 {
			return
		}
		rows = append(rows, row{name: name, digest: digest, json: b})
	}
	raw("blocks_defs", "blocks.json", cats.Blocks.DefsDigest)
	raw("items_defs", "items.json", cats.Items.DefsDigest)
	raw("actors", "actors.json", cats.Actors.Digest)
	raw("upgrades", "upgrades.json", cats.Upgrades.Digest)
	if b, err := json.Marshal(cats.Blocks.Palette); err == nil {
		rows = append(rows, row{name: "blocks_palette", digest: cats.Blocks.PaletteDigest, json: b})
	}
	if b, err := json.Marshal(cats.Items.Palette); err == nil {
		rows = append(rows, row{name: "items_palette", digest: cats.Items.PaletteDigest, json: b})
	}
	if b, err := json.Marshal(tune); err == nil {
		sum := sha256.Sum256(b)
		rows = append(rows, row{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.digest == "" {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()
	insertCommand, _ := s.db.Prepare(`INSERT INTO commands(tick,turtle_id,request_id,verb,success,message,code,fuel,x,y,z) VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	insertAudit, _ := s.db.Prepare(`INSERT OR REPLACE INTO audits(tick,seq,actor,action,x,y,z,from_block,to_block,reason,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	defer func() {
		if insertCommand != nil {
			_ = insertCommand.Close()
		}
		if insertAudit != nil {
			_ = insertAudit.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 1000
		commitMaxWait = time.Second

		lastAuditTick uint64
		auditSeq      int
	)
	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqCommand:
			c := r.command
			if insertCommand == nil {
				continue
			}
			if _, err := tx.Stmt(insertCommand).Exec(
				int64(c.Tick), c.TurtleID, c.RequestID, c.Verb, c.Success,
				c.Message, c.Code, c.Fuel, c.Pos[0], c.Pos[1], c.Pos[2],
			); err != nil {
				rollback()
				continue
			}
			opCount++

		case reqAudit:
			a := r.audit
			if a.Tick != lastAuditTick {
				lastAuditTick = a.Tick
				auditSeq = 0
			}
			seq := auditSeq
			auditSeq++
			if insertAudit == nil {
				continue
			}
			raw, _ := json.Marshal(a)
			if _, err := tx.Stmt(insertAudit).Exec(
				int64(a.Tick), seq, a.Actor, a.Action,
				a.Pos[0], a.Pos[1], a.Pos[2],
				int64(a.From), int64(a.To), a.Reason, string(raw),
			); err != nil {
				rollback()
				continue
			}
			opCount++
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}
	commit()
}

var (
	_ world.CommandLogger = (*SQLiteIndex)(nil)
	_ world.AuditLogger   = (*SQLiteIndex)(nil)
)
