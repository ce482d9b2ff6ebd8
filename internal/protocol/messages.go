package protocol

import (
	"encoding/json"
	"fmt"
)

// HELLO (script -> server): claims one turtle for the connection.
type HelloMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	ScriptName      string     `json:"script_name"`
	TurtleID        string     `json:"turtle_id,omitempty"`
	Auth            *HelloAuth `json:"auth,omitempty"`
}

type HelloAuth struct {
	Token string `json:"token,omitempty"`
}

// WELCOME (server -> script)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	TurtleID        string         `json:"turtle_id"`
	Owner           string         `json:"owner"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type CatalogDigests struct {
	BlockPalette DigestRef `json:"block_palette"`
	ItemPalette  DigestRef `json:"item_palette"`
	Actors       string    `json:"actors_digest"`
	Upgrades     string    `json:"upgrades_digest"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// COMMAND (script -> server): one turtle action.
type CommandMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id,omitempty"`
	Verb            string `json:"verb"`
	// Direction is forward/back/up/down for world verbs, left/right for turn.
	Direction string `json:"direction,omitempty"`
	Quantity  *int   `json:"quantity,omitempty"`
	// Slot is 1-based, as scripts see it.
	Slot *int   `json:"slot,omitempty"`
	Side string `json:"side,omitempty"`
	Args []any  `json:"args,omitempty"`
}

// RESULT (server -> script)
type ResultMsg struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Values  []any  `json:"values,omitempty"`
	// Code is set when the command never ran (bad request, busy, internal error).
	Code string `json:"code,omitempty"`
}

func DecodeCommand(b []byte) (CommandMsg, error) {
	var m CommandMsg
	if err := json.Unmarshal(b, &m); err != nil {
		return m, err
	}
	if m.Type != TypeCommand {
		return m, fmt.Errorf("unexpected message type %q", m.Type)
	}
	if m.Verb == "" {
		return m, fmt.Errorf("missing verb")
	}
	return m, nil
}
