package state

import "github.com/lk2023060901/ai-chat-backend/internal/chat/types"

// Action is the closed set of state transitions. Every mutation the
// registries perform is one of these variants; the store switches over them
// exhaustively, so an unknown action is a programming error, not a runtime
// fallback.
type Action interface {
	isAction()
}

// ReplaceAssistants swaps the whole assistants collection (seeding, tests)
type ReplaceAssistants struct {
	Assistants []*types.Assistant
}

// AddAssistant appends a new assistant, its topics included, as one
// logical write
type AddAssistant struct {
	Assistant *types.Assistant
}

// PutAssistant replaces the assistant with the same id wholesale. The
// replacement keeps the stored topic list when the incoming record carries
// none, so metadata updates cannot drop conversations.
type PutAssistant struct {
	Assistant *types.Assistant
}

// RemoveAssistant removes an assistant and, by consequence, all its topics
type RemoveAssistant struct {
	ID string
}

// AddTopic appends a topic to its owning assistant's collection
type AddTopic struct {
	AssistantID string
	Topic       *types.Topic
}

// PutTopic replaces the topic with the same id wholesale (last write wins)
type PutTopic struct {
	Topic *types.Topic
}

// RemoveTopic removes a topic from its owning assistant's collection
type RemoveTopic struct {
	ID string
}

// AppendMessage appends one message to a topic inside the store's own
// critical section and touches the topic's UpdatedAt. Appends therefore
// serialize: two concurrent senders both land, in arrival order.
type AppendMessage struct {
	TopicID string
	Message *types.Message
}

func (ReplaceAssistants) isAction() {}
func (AddAssistant) isAction()      {}
func (PutAssistant) isAction()      {}
func (RemoveAssistant) isAction()   {}
func (AddTopic) isAction()          {}
func (PutTopic) isAction()          {}
func (RemoveTopic) isAction()       {}
func (AppendMessage) isAction()     {}
