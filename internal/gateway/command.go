package gateway

import (
	"encoding/json"

	"github.com/lk2023060901/ai-chat-backend/internal/chat/types"
	apperrors "github.com/lk2023060901/ai-chat-backend/internal/pkg/errors"
)

// Operation names shared by every surface. A REST route and an MCP tool that
// map to the same name are the same logical operation.
const (
	OpListAssistants        = "list_assistants"
	OpGetAssistant          = "get_assistant"
	OpCreateAssistant       = "create_assistant"
	OpUpdateAssistant       = "update_assistant"
	OpDeleteAssistant       = "delete_assistant"
	OpListTopics            = "list_topics"
	OpGetTopic              = "get_topic"
	OpCreateTopic           = "create_topic"
	OpUpdateTopic           = "update_topic"
	OpDeleteTopic           = "delete_topic"
	OpGetTopicMessages      = "get_topic_messages"
	OpSendMessage           = "send_message"
	OpCreateNewConversation = "create_new_conversation"
)

// Command is the closed set of gateway operations. One struct per operation
// name; the interpreter switches over the variants exhaustively, so adding an
// operation without handling it fails at compile time rather than falling
// through a default case.
type Command interface {
	Op() string
	Validate() error
}

// ListAssistantsCommand lists assistant metadata without topics
type ListAssistantsCommand struct{}

// GetAssistantCommand fetches one assistant by id
type GetAssistantCommand struct {
	ID string `json:"id"`
}

// CreateAssistantCommand creates an assistant; unset fields get defaults
type CreateAssistantCommand struct {
	types.AssistantFields
}

// UpdateAssistantCommand patches an assistant's mutable fields
type UpdateAssistantCommand struct {
	ID     string               `json:"id"`
	Fields types.AssistantPatch `json:"fields"`
}

// DeleteAssistantCommand deletes an assistant and cascades to its topics
type DeleteAssistantCommand struct {
	ID string `json:"id"`
}

// ListTopicsCommand lists topic metadata without messages, optionally scoped
// to one assistant
type ListTopicsCommand struct {
	AssistantID string `json:"assistant_id,omitempty"`
}

// GetTopicCommand fetches one topic by id
type GetTopicCommand struct {
	ID string `json:"id"`
}

// CreateTopicCommand creates a topic under an existing assistant
type CreateTopicCommand struct {
	AssistantID string            `json:"assistant_id"`
	Fields      types.TopicFields `json:"fields"`
}

// UpdateTopicCommand patches a topic's mutable fields
type UpdateTopicCommand struct {
	ID     string           `json:"id"`
	Fields types.TopicPatch `json:"fields"`
}

// DeleteTopicCommand deletes a topic and its messages
type DeleteTopicCommand struct {
	ID string `json:"id"`
}

// GetTopicMessagesCommand returns a topic's messages in append order
type GetTopicMessagesCommand struct {
	ID string `json:"id"`
}

// SendMessageCommand appends a message to a topic
type SendMessageCommand struct {
	TopicID string `json:"topic_id"`
	Content string `json:"content"`
	Role    string `json:"role,omitempty"`
	Type    string `json:"type,omitempty"`
}

// CreateNewConversationCommand creates a topic under the default assistant
type CreateNewConversationCommand struct {
	Name   string `json:"name,omitempty"`
	Prompt string `json:"prompt,omitempty"`
}

func (ListAssistantsCommand) Op() string        { return OpListAssistants }
func (GetAssistantCommand) Op() string          { return OpGetAssistant }
func (CreateAssistantCommand) Op() string       { return OpCreateAssistant }
func (UpdateAssistantCommand) Op() string       { return OpUpdateAssistant }
func (DeleteAssistantCommand) Op() string       { return OpDeleteAssistant }
func (ListTopicsCommand) Op() string            { return OpListTopics }
func (GetTopicCommand) Op() string              { return OpGetTopic }
func (CreateTopicCommand) Op() string           { return OpCreateTopic }
func (UpdateTopicCommand) Op() string           { return OpUpdateTopic }
func (DeleteTopicCommand) Op() string           { return OpDeleteTopic }
func (GetTopicMessagesCommand) Op() string      { return OpGetTopicMessages }
func (SendMessageCommand) Op() string           { return OpSendMessage }
func (CreateNewConversationCommand) Op() string { return OpCreateNewConversation }

func (ListAssistantsCommand) Validate() error  { return nil }
func (CreateAssistantCommand) Validate() error { return nil }
func (ListTopicsCommand) Validate() error      { return nil }

func (c GetAssistantCommand) Validate() error {
	return requireID(c.ID)
}

func (c UpdateAssistantCommand) Validate() error {
	return requireID(c.ID)
}

func (c DeleteAssistantCommand) Validate() error {
	return requireID(c.ID)
}

func (c GetTopicCommand) Validate() error {
	return requireID(c.ID)
}

func (c CreateTopicCommand) Validate() error {
	if c.AssistantID == "" {
		return apperrors.New(apperrors.ErrTopicAssistantRef)
	}
	return nil
}

func (c UpdateTopicCommand) Validate() error {
	return requireID(c.ID)
}

func (c DeleteTopicCommand) Validate() error {
	return requireID(c.ID)
}

func (c GetTopicMessagesCommand) Validate() error {
	return requireID(c.ID)
}

func (c SendMessageCommand) Validate() error {
	if c.TopicID == "" {
		return apperrors.New(apperrors.ErrInvalidParams, "topic_id is required")
	}
	if c.Content == "" {
		return apperrors.New(apperrors.ErrMessageMissingContent)
	}
	if c.Role != "" && !types.ValidRole(c.Role) {
		return apperrors.New(apperrors.ErrMessageInvalidRole, c.Role)
	}
	return nil
}

func (CreateNewConversationCommand) Validate() error { return nil }

func requireID(id string) error {
	if id == "" {
		return apperrors.New(apperrors.ErrInvalidParams, "id is required")
	}
	return nil
}

// Parse turns an operation name and a raw argument object into a typed
// command. Unknown names fail with the invalid_operation kind, malformed
// argument objects with invalid_argument. Validation of the decoded command
// happens in Execute, so both surfaces share it.
func Parse(name string, args json.RawMessage) (Command, error) {
	switch name {
	case OpListAssistants:
		return decode[ListAssistantsCommand](args)
	case OpGetAssistant:
		return decode[GetAssistantCommand](args)
	case OpCreateAssistant:
		return decode[CreateAssistantCommand](args)
	case OpUpdateAssistant:
		return decode[UpdateAssistantCommand](args)
	case OpDeleteAssistant:
		return decode[DeleteAssistantCommand](args)
	case OpListTopics:
		return decode[ListTopicsCommand](args)
	case OpGetTopic:
		return decode[GetTopicCommand](args)
	case OpCreateTopic:
		return decode[CreateTopicCommand](args)
	case OpUpdateTopic:
		return decode[UpdateTopicCommand](args)
	case OpDeleteTopic:
		return decode[DeleteTopicCommand](args)
	case OpGetTopicMessages:
		return decode[GetTopicMessagesCommand](args)
	case OpSendMessage:
		return decode[SendMessageCommand](args)
	case OpCreateNewConversation:
		return decode[CreateNewConversationCommand](args)
	default:
		return nil, apperrors.New(apperrors.ErrInvalidOperation, name)
	}
}

func decode[T Command](args json.RawMessage) (Command, error) {
	var c T
	if len(args) > 0 {
		if err := json.Unmarshal(args, &c); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrInvalidParams, "malformed arguments")
		}
	}
	return c, nil
}
