package types

import "time"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message types. The mention marker and the context-clear marker are wire
// values the UI layer interprets; this core only stores them.
const (
	TypeText    = "text"
	TypeMention = "@"
	TypeClear   = "clear"
)

// Message statuses
const (
	StatusSending = "sending"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Message is one immutable entry in a topic's conversation history. Messages
// are append-only: no update or delete operation exists for them.
type Message struct {
	ID          string    `json:"id"`
	TopicID     string    `json:"topic_id"`
	AssistantID string    `json:"assistant_id"` // denormalized from the owning topic
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessageDraft carries caller-supplied values for message creation. Identity,
// assistant back-reference and timestamp are always generated server-side.
type MessageDraft struct {
	Content string `json:"content"`
	Role    string `json:"role"`
	Type    string `json:"type"`
	Status  string `json:"status"`
}

// ValidRole reports whether r is an accepted message role
func ValidRole(r string) bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}
