package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Command routing.
	ErrBusy        = "E_BUSY"
	ErrNoTurtle    = "E_NO_TURTLE"
	ErrTurtleTaken = "E_TURTLE_TAKEN"

	// Command layer.
	ErrBadRequest  = "E_BAD_REQUEST"
	ErrUnknownVerb = "E_UNKNOWN_VERB"
	ErrTimeout     = "E_TIMEOUT"
	ErrInternal    = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBusy:            {},
	ErrNoTurtle:        {},
	ErrTurtleTaken:     {},
	ErrBadRequest:      {},
	ErrUnknownVerb:     {},
	ErrTimeout:         {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
