package engine

// Effect is the composable result of one handled action. It can carry a
// room-wide broadcast, a directed message to the host and a directed
// message to the acting player at the same time; the transport delivers
// each audience independently.
//
// A nil *Effect means "no observable effect" and is never an error.
type Effect struct {
	Event   string
	Payload map[string]any

	HostEvent   string
	HostPayload map[string]any

	PlayerEvent   string
	PlayerPayload map[string]any
}

// Broadcast builds an effect with only the room-wide audience set.
func Broadcast(event string, payload map[string]any) *Effect {
	return &Effect{Event: event, Payload: payload}
}

// WithHost adds a host-directed message and returns the effect for chaining.
func (e *Effect) WithHost(event string, payload map[string]any) *Effect {
	e.HostEvent = event
	e.HostPayload = payload
	return e
}

// WithPlayer adds a message directed at the acting player.
func (e *Effect) WithPlayer(event string, payload map[string]any) *Effect {
	e.PlayerEvent = event
	e.PlayerPayload = payload
	return e
}

// ToPlayer builds an effect with only the acting-player audience set.
func ToPlayer(event string, payload map[string]any) *Effect {
	return &Effect{PlayerEvent: event, PlayerPayload: payload}
}
