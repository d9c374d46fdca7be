package core

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// Inbound event names.
const (
	EventJoinRoom    = "join-room"
	EventToggleAudio = "toggle-audio"
	EventToggleVideo = "toggle-video"
	EventLeave       = "leave"
	EventPing        = "ping"
)

// Outbound event names. toggle-audio and toggle-video are reused as-is.
const (
	EventUserConnected    = "user-connected"
	EventUserDisconnected = "user-disconnected"
	EventError            = "error"
	EventPong             = "pong"
)

// Event is an outbound named message with ordered arguments.
type Event struct {
	Name string `json:"event"`
	Args []any  `json:"args"`
}

// ErrorPayload is the single argument of an error event.
type ErrorPayload struct {
	Message string `json:"message"`
}

func NewEvent(name string, args ...any) Event {
	if args == nil {
		args = []any{}
	}
	return Event{Name: name, Args: args}
}

func NewErrorEvent(msg string) Event {
	return NewEvent(EventError, ErrorPayload{Message: msg})
}

func EncodeEvent(ev Event) (Frame, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Name, err)
	}
	return Frame(b), nil
}

// InboundEvent keeps its arguments raw until the handler knows what they mean.
type InboundEvent struct {
	Name string            `json:"event"`
	Args []json.RawMessage `json:"args"`
}

func DecodeEvent(data []byte) (InboundEvent, error) {
	var ev InboundEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return InboundEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.Name == "" {
		return InboundEvent{}, fmt.Errorf("decode event: missing name")
	}
	return ev, nil
}

// StringArg returns argument i as an identifier. Falsy values (absent, null,
// false, 0, "") and structured values yield "". Non-zero numbers and true are
// returned in their textual form.
func (e InboundEvent) StringArg(i int) string {
	if i < 0 || i >= len(e.Args) {
		return ""
	}
	raw := bytes.TrimSpace(e.Args[i])
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
	}
	return ""
}
