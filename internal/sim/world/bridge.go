package world

import (
	"context"
	"errors"
	"sync"

	"turtlecraft.ai/internal/protocol"
	"turtlecraft.ai/internal/sim/turtle/command"
)

var (
	ErrBusy    = errors.New("world: turtle already has a command in flight")
	ErrStopped = errors.New("world: stopped")
)

// CommandEnvelope carries one decoded command into the world loop.
type CommandEnvelope struct {
	TurtleID  string
	RequestID string
	Command   command.Command
	// Resp must be buffered (cap 1); the loop never blocks on it.
	Resp chan CommandResponse
}

type CommandResponse struct {
	Result command.Result
	// Code is a protocol error code when the command did not run to a result.
	Code string
	Err  error
}

// handleCommand runs on the loop goroutine.
func (w *World) handleCommand(env CommandEnvelope) CommandResponse {
	t := w.turtles[env.TurtleID]
	if t == nil {
		return CommandResponse{Code: protocol.ErrNoTurtle, Result: command.Failure("No such turtle")}
	}
	res, err := env.Command.Execute(w, t)
	for _, a := range t.DrainAnimations() {
		w.playEffect("turtle_"+string(a), t.Pos())
	}
	resp := CommandResponse{Result: res}
	if err != nil {
		var argErr command.ArgumentError
		if errors.As(err, &argErr) {
			resp = CommandResponse{Code: protocol.ErrBadRequest, Result: command.Failure(argErr.Error()), Err: err}
		} else {
			w.logf("turtle %s: %s failed: %v", t.ID(), env.Command.Verb(), err)
			resp = CommandResponse{Code: protocol.ErrInternal, Result: command.Failure("Internal error"), Err: err}
		}
	}
	w.logCommand(env, t.Fuel(), t.Pos(), resp)
	return resp
}

func (w *World) logCommand(env CommandEnvelope, fuel int, pos Vec3i, resp CommandResponse) {
	if w.commandLogger == nil {
		return
	}
	entry := CommandLogEntry{
		Tick:      w.CurrentTick(),
		TurtleID:  env.TurtleID,
		RequestID: env.RequestID,
		Verb:      env.Command.Verb(),
		Success:   resp.Result.Success,
		Message:   resp.Result.Message,
		Code:      resp.Code,
		Fuel:      fuel,
		Pos:       pos.ToArray(),
	}
	if err := w.commandLogger.WriteCommand(entry); err != nil {
		w.logf("command log write failed: %v", err)
	}
}

// Bridge turns script requests into envelopes and waits for their results.
// At most one command per turtle is in flight.
type Bridge struct {
	inbox chan<- CommandEnvelope
	done  <-chan struct{}

	mu       sync.Mutex
	inflight map[string]bool
}

func NewBridge(w *World) *Bridge {
	return &Bridge{inbox: w.Inbox(), done: w.Done(), inflight: map[string]bool{}}
}

func (b *Bridge) acquire(turtleID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inflight[turtleID] {
		return false
	}
	b.inflight[turtleID] = true
	return true
}

func (b *Bridge) release(turtleID string) {
	b.mu.Lock()
	delete(b.inflight, turtleID)
	b.mu.Unlock()
}

// Exec decodes msg, runs it on the world loop and returns the RESULT to send.
// The returned error is non-nil only when the command never produced a result.
func (b *Bridge) Exec(ctx context.Context, turtleID string, msg protocol.CommandMsg) (protocol.ResultMsg, error) {
	out := protocol.ResultMsg{Type: protocol.TypeResult, ID: msg.ID}

	cmd, err := command.Decode(msg)
	if err != nil {
		var unknown command.UnknownVerbError
		if errors.As(err, &unknown) {
			out.Code = protocol.ErrUnknownVerb
		} else {
			out.Code = protocol.ErrBadRequest
		}
		out.Message = err.Error()
		return out, nil
	}

	if !b.acquire(turtleID) {
		out.Code = protocol.ErrBusy
		out.Message = "Turtle is busy"
		return out, ErrBusy
	}

	env := CommandEnvelope{
		TurtleID:  turtleID,
		RequestID: msg.ID,
		Command:   cmd,
		Resp:      make(chan CommandResponse, 1),
	}
	select {
	case b.inbox <- env:
	case <-ctx.Done():
		b.release(turtleID)
		out.Code = protocol.ErrTimeout
		return out, ctx.Err()
	case <-b.done:
		b.release(turtleID)
		out.Code = protocol.ErrInternal
		return out, ErrStopped
	}

	select {
	case resp := <-env.Resp:
		b.release(turtleID)
		out.Success = resp.Result.Success
		out.Message = resp.Result.Message
		out.Values = resp.Result.Values
		out.Code = resp.Code
		return out, nil
	case <-ctx.Done():
		// The command is already queued; keep the turtle busy until it finishes.
		go b.releaseAfter(turtleID, env.Resp)
		out.Code = protocol.ErrTimeout
		return out, ctx.Err()
	case <-b.done:
		b.release(turtleID)
		out.Code = protocol.ErrInternal
		return out, ErrStopped
	}
}

func (b *Bridge) releaseAfter(turtleID string, resp <-chan CommandResponse) {
	select {
	case <-resp:
	case <-b.done:
	}
	b.release(turtleID)
}
