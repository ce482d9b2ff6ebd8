package command

import (
	"fmt"
	"strings"

	"turtlecraft.ai/internal/protocol"
	"turtlecraft.ai/internal/sim/turtle"
)

const maxQuantity = 64

// UnknownVerbError is returned by Decode for verbs no command implements.
type UnknownVerbError struct{ Verb string }

func (e UnknownVerbError) Error() string { return fmt.Sprintf("unknown verb %q", e.Verb) }

// Decode builds the command for one request.
func Decode(m protocol.CommandMsg) (Command, error) {
	switch m.Verb {
	case "move":
		d, err := relDir(m.Direction, Forward, Back, Up, Down)
		if err != nil {
			return nil, err
		}
		return Move{Dir: d}, nil
	case "turn":
		side, err := turtle.ParseSide(m.Direction)
		if err != nil {
			return nil, ArgumentError("Expected left or right")
		}
		return Turn{Side: side}, nil
	case "dig", "attack":
		d, err := relDir(m.Direction, Forward, Up, Down)
		if err != nil {
			return nil, err
		}
		side, err := optSide(m.Side)
		if err != nil {
			return nil, err
		}
		if m.Verb == "dig" {
			return Dig{Dir: d, Side: side}, nil
		}
		return Attack{Dir: d, Side: side}, nil
	case "place":
		d, err := relDir(m.Direction, Forward, Up, Down)
		if err != nil {
			return nil, err
		}
		return Place{Dir: d, Args: m.Args}, nil
	case "suck", "drop":
		d, err := relDir(m.Direction, Forward, Up, Down)
		if err != nil {
			return nil, err
		}
		q, err := quantity(m.Quantity, maxQuantity)
		if err != nil {
			return nil, err
		}
		if m.Verb == "suck" {
			return Suck{Dir: d, Quantity: q}, nil
		}
		return Drop{Dir: d, Quantity: q}, nil
	case "detect", "inspect", "compare":
		d, err := relDir(m.Direction, Forward, Up, Down)
		if err != nil {
			return nil, err
		}
		switch m.Verb {
		case "detect":
			return Detect{Dir: d}, nil
		case "inspect":
			return Inspect{Dir: d}, nil
		}
		return Compare{Dir: d}, nil
	case "equip":
		side, err := turtle.ParseSide(m.Side)
		if err != nil {
			return nil, ArgumentError("Expected left or right")
		}
		return Equip{Side: side}, nil
	case "select":
		if m.Slot == nil {
			return nil, ArgumentError("Slot out of range")
		}
		slot, err := slotIndex(m.Slot)
		if err != nil {
			return nil, err
		}
		return Select{Slot: slot}, nil
	case "transferTo":
		if m.Slot == nil {
			return nil, ArgumentError("Slot out of range")
		}
		slot, err := slotIndex(m.Slot)
		if err != nil {
			return nil, err
		}
		q, err := quantity(m.Quantity, maxQuantity)
		if err != nil {
			return nil, err
		}
		return TransferTo{Slot: slot, Quantity: q}, nil
	case "refuel":
		q, err := quantity(m.Quantity, maxQuantity)
		if err != nil {
			return nil, err
		}
		return Refuel{Quantity: q}, nil
	case "getItemCount", "getItemSpace", "getItemDetail":
		slot := -1
		if m.Slot != nil {
			s, err := slotIndex(m.Slot)
			if err != nil {
				return nil, err
			}
			slot = s
		}
		return ItemQuery{Kind: m.Verb, Slot: slot}, nil
	case "getFuelLevel":
		return FuelLevel{}, nil
	case "getSelectedSlot":
		return SelectedSlot{}, nil
	default:
		return nil, UnknownVerbError{Verb: m.Verb}
	}
}

func relDir(s string, allowed ...RelDir) (RelDir, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		s = "forward"
	}
	for _, d := range allowed {
		if d.String() == s {
			return d, nil
		}
	}
	return Forward, ArgumentError(fmt.Sprintf("Invalid direction %q", s))
}

func optSide(s string) (*turtle.Side, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	side, err := turtle.ParseSide(s)
	if err != nil {
		return nil, ArgumentError("Invalid side")
	}
	return &side, nil
}

func quantity(q *int, max int) (int, error) {
	if q == nil {
		return max, nil
	}
	if *q < 0 || *q > max {
		return 0, ArgumentError("Quantity out of range")
	}
	return *q, nil
}

// slotIndex converts a 1-based script slot into a 0-based index.
func slotIndex(s *int) (int, error) {
	if *s < 1 || *s > turtle.InventorySize {
		return 0, ArgumentError("Slot out of range")
	}
	return *s - 1, nil
}
