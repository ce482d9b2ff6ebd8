// Package ws serves the turtle script bridge: a HELLO/WELCOME handshake that
// claims one turtle, then COMMAND messages answered by RESULT messages.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"turtlecraft.ai/internal/protocol"
	"turtlecraft.ai/internal/sim/catalogs"
	"turtlecraft.ai/internal/sim/world"
)

const (
	handshakeTimeout = 5 * time.Second
	readIdleTimeout  = 60 * time.Second
	writeTimeout     = 5 * time.Second
	outQueue         = 16
)

type Config struct {
	// Owners maps turtle id to owner for every turtle scripts may claim.
	Owners   map[string]string
	Catalogs *catalogs.Catalogs
	// CommandTimeout bounds the wait for one command result (0 = 10s).
	CommandTimeout time.Duration
}

type Server struct {
	cfg    Config
	bridge *world.Bridge
	log    *log.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	claimed map[string]string // turtle id -> session id
}

func NewServer(cfg Config, bridge *world.Bridge, logger *log.Logger) *Server {
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		cfg:    cfg,
		bridge: bridge,
		log:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		claimed: map[string]string{},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		welcome, ok := s.handshake(conn)
		if !ok {
			return
		}
		defer s.unclaim(welcome.TurtleID, welcome.SessionID)
		s.log.Printf("session %s claimed turtle %s", welcome.SessionID, welcome.TurtleID)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out := make(chan protocol.ResultMsg, outQueue)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case res := <-out:
					if err := writeJSON(conn, res); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		var pending sync.WaitGroup
		defer pending.Wait()
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			cmd, errRes := decodeCommand(msg)
			if errRes != nil {
				send(ctx, out, *errRes)
				continue
			}
			pending.Add(1)
			go func() {
				defer pending.Done()
				send(ctx, out, s.exec(ctx, welcome.TurtleID, cmd))
			}()
		}
	}
}

func (s *Server) exec(ctx context.Context, turtleID string, cmd protocol.CommandMsg) protocol.ResultMsg {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CommandTimeout)
	defer cancel()
	res, err := s.bridge.Exec(ctx, turtleID, cmd)
	if err != nil && res.Code == protocol.ErrInternal {
		s.log.Printf("turtle %s: %s: %v", turtleID, cmd.Verb, err)
	}
	return res
}

func send(ctx context.Context, out chan<- protocol.ResultMsg, res protocol.ResultMsg) {
	select {
	case out <- res:
	case <-ctx.Done():
	}
}

// decodeCommand returns the command or the RESULT rejecting it.
func decodeCommand(msg []byte) (protocol.CommandMsg, *protocol.ResultMsg) {
	bad := func(id, message string) *protocol.ResultMsg {
		return &protocol.ResultMsg{Type: protocol.TypeResult, ID: id, Code: protocol.ErrProtoBadRequest, Message: message}
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return protocol.CommandMsg{}, bad("", "invalid json")
	}
	if base.Type != protocol.TypeCommand {
		return protocol.CommandMsg{}, bad("", "expected COMMAND")
	}
	cmd, err := protocol.DecodeCommand(msg)
	if err != nil {
		return cmd, bad(cmd.ID, err.Error())
	}
	if cmd.ProtocolVersion != protocol.Version {
		return cmd, bad(cmd.ID, "bad protocol_version")
	}
	return cmd, nil
}

func (s *Server) handshake(conn *websocket.Conn) (protocol.WelcomeMsg, bool) {
	fail := func(code, message string) (protocol.WelcomeMsg, bool) {
		_ = writeJSON(conn, protocol.ResultMsg{Type: protocol.TypeResult, Code: code, Message: message})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message), time.Now().Add(time.Second))
		return protocol.WelcomeMsg{}, false
	}

	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return protocol.WelcomeMsg{}, false
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		return fail(protocol.ErrProtoBadRequest, "expected HELLO")
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return fail(protocol.ErrProtoBadRequest, "invalid HELLO")
	}
	if hello.ProtocolVersion != protocol.Version {
		return fail(protocol.ErrProtoBadRequest, "bad protocol_version")
	}

	sessionID := uuid.NewString()
	turtleID, code := s.claim(strings.TrimSpace(hello.TurtleID), sessionID)
	if code != "" {
		return fail(code, "cannot claim turtle")
	}
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		TurtleID:        turtleID,
		Owner:           s.cfg.Owners[turtleID],
		Catalogs:        digests(s.cfg.Catalogs),
	}
	if err := writeJSON(conn, welcome); err != nil {
		s.unclaim(turtleID, sessionID)
		return protocol.WelcomeMsg{}, false
	}
	return welcome, true
}

// claim binds a turtle to the session. An empty id picks the first free turtle.
func (s *Server) claim(turtleID, sessionID string) (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if turtleID == "" {
		ids := make([]string, 0, len(s.cfg.Owners))
		for id := range s.cfg.Owners {
			if _, taken := s.claimed[id]; !taken {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return "", protocol.ErrNoTurtle
		}
		sort.Strings(ids)
		turtleID = ids[0]
	}
	if _, ok := s.cfg.Owners[turtleID]; !ok {
		return "", protocol.ErrNoTurtle
	}
	if _, taken := s.claimed[turtleID]; taken {
		return "", protocol.ErrTurtleTaken
	}
	s.claimed[turtleID] = sessionID
	return turtleID, ""
}

func (s *Server) unclaim(turtleID, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimed[turtleID] == sessionID {
		delete(s.claimed, turtleID)
	}
}

func digests(c *catalogs.Catalogs) protocol.CatalogDigests {
	if c == nil {
		return protocol.CatalogDigests{}
	}
	return protocol.CatalogDigests{
		BlockPalette: protocol.DigestRef{Digest: c.Blocks.PaletteDigest, Count: len(c.Blocks.Palette)},
		ItemPalette:  protocol.DigestRef{Digest: c.Items.PaletteDigest, Count: len(c.Items.Palette)},
		Actors:       c.Actors.Digest,
		Upgrades:     c.Upgrades.Digest,
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}
