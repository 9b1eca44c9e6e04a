package core

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

const (
	ActionSend     = "send"
	ActionMessage  = "message"
	ActionPresence = "presence"
)

// Command is a decoded client frame.
type Command struct {
	Action  string
	Message string
}

type ChatMessage struct {
	Action  string `json:"action"`
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

type PresenceMessage struct {
	Action   string   `json:"action"`
	Presence []string `json:"presence"`
}

func NewChatMessage(sender, text string) ChatMessage {
	return ChatMessage{Action: ActionMessage, Sender: sender, Message: text}
}

func NewPresenceMessage(nicknames []string) PresenceMessage {
	if nicknames == nil {
		nicknames = []string{}
	}
	return PresenceMessage{Action: ActionPresence, Presence: nicknames}
}

// Encode marshals an outbound payload into a text frame.
func Encode(v any) (Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return Frame(b), nil
}

// DecodeCommand parses a client frame. A frame that is not a JSON object
// with a string action yields ErrMalformedFrame. For the send action the
// message field must be a string, otherwise ErrInvalidField.
func DecodeCommand(f Frame) (Command, error) {
	var env struct {
		Action  json.RawMessage `json:"action"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(f, &env); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	var cmd Command
	if !decodeString(env.Action, &cmd.Action) {
		return Command{}, fmt.Errorf("%w: action", ErrMalformedFrame)
	}
	if cmd.Action == ActionSend && !decodeString(env.Message, &cmd.Message) {
		return Command{}, fmt.Errorf("%w: message", ErrInvalidField)
	}
	return cmd, nil
}

func decodeString(raw json.RawMessage, dst *string) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}
