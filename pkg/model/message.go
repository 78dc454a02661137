package model

import "sort"

type MessageType string

const (
	TypeChat       MessageType = "CHAT"
	TypeTyping     MessageType = "TYPING"
	TypeStopTyping MessageType = "STOP_TYPING"
	TypePresence   MessageType = "PRESENCE"
)

// Message is a single direct message between exactly two users.
// Typing and presence signals travel over the same frame shape with an
// ephemeral type; they are never persisted.
type Message struct {
	ID        int64       `json:"id"`
	Sender    string      `json:"sender"`
	Receiver  string      `json:"receiver"`
	Content   string      `json:"content"`
	Timestamp int64       `json:"timestamp"`
	Delivered bool        `json:"delivered"`
	Read      bool        `json:"read"`
	FileURL   string      `json:"fileUrl,omitempty"`
	Type      MessageType `json:"type,omitempty"`
}

// Kind returns the message type, defaulting to CHAT when the producer
// omitted the field (older gateways send plain messages untyped).
func (m Message) Kind() MessageType {
	if m.Type == "" {
		return TypeChat
	}
	return m.Type
}

// Less orders messages by timestamp, falling back to ID so that two
// messages sent in the same millisecond still sort deterministically.
func Less(a, b Message) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	return a.ID < b.ID
}

// SortMessages sorts a slice in place into conversation order.
func SortMessages(msgs []Message) {
	sort.Slice(msgs, func(i, j int) bool { return Less(msgs[i], msgs[j]) })
}

// HistoryPage is the paged response shape of the history endpoint.
type HistoryPage struct {
	Content []Message `json:"content"`
}
