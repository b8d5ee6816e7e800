package chat

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

// Message is one transcript entry. Messages are never modified once appended.
type Message struct {
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Locale    string    `json:"locale"`
}

// State is the widget lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateActive   State = "active"
	StateTyping   State = "typing"
	StateTerminal State = "terminal"
	StateClosed   State = "closed"
)

// Choice is a selectable option rendered for the current node.
type Choice struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Snapshot is a consistent copy of the widget state. Seq is the sequence
// number of the last event it reflects.
type Snapshot struct {
	ID       string    `json:"id"`
	State    State     `json:"state"`
	NodeID   string    `json:"node_id,omitempty"`
	Locale   string    `json:"locale"`
	Messages []Message `json:"messages"`
	Choices  []Choice  `json:"choices"`
	Seq      uint64    `json:"seq"`
}

// EventType classifies widget events.
type EventType string

const (
	EventMessage EventType = "message"
	EventState   EventType = "state"
	EventReset   EventType = "reset"
)

// Event is delivered to observers after every change. Seq increases by one
// per event within a widget and is never reused, including across resets.
type Event struct {
	Message   *Message  `json:"message,omitempty"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	State     State     `json:"state"`
	Seq       uint64    `json:"seq"`
}
