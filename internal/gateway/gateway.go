package gateway

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/lk2023060901/ai-chat-backend/internal/chat/biz"
	"github.com/lk2023060901/ai-chat-backend/internal/chat/types"
	apperrors "github.com/lk2023060901/ai-chat-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-chat-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-chat-backend/internal/sse"
)

// Gateway is the single entry point for every operation, regardless of which
// surface it arrived on. REST handlers build commands directly, the tool
// server parses them from raw arguments; both terminate in Execute, so
// validation, registry dispatch, error mapping and event emission happen
// exactly once.
type Gateway struct {
	assistants *biz.AssistantUseCase
	topics     *biz.TopicUseCase
	hub        *sse.Hub
	log        *logger.Logger
}

func NewGateway(assistants *biz.AssistantUseCase, topics *biz.TopicUseCase, hub *sse.Hub, log *logger.Logger) *Gateway {
	return &Gateway{
		assistants: assistants,
		topics:     topics,
		hub:        hub,
		log:        log,
	}
}

// OperationEvent is the payload broadcast to subscribers after every
// successful mutating operation.
type OperationEvent struct {
	Operation string      `json:"operation"`
	Result    interface{} `json:"result"`
}

// NewConversationResult pairs the created topic with the assistant it was
// resolved against.
type NewConversationResult struct {
	Topic         *types.Topic `json:"topic"`
	AssistantID   string       `json:"assistant_id"`
	AssistantName string       `json:"assistant_name"`
}

// Execute validates the command, dispatches it to the owning registry and
// returns whatever it produced. Failures always carry an error code, so both
// surfaces render the same message for the same failure. Read operations
// produce no event; successful mutations are broadcast.
func (g *Gateway) Execute(ctx context.Context, cmd Command) (interface{}, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var (
		result interface{}
		err    error
		mutate bool
	)

	switch c := cmd.(type) {
	case ListAssistantsCommand:
		result, err = g.assistants.ListAssistants(ctx)
	case GetAssistantCommand:
		result, err = g.assistants.GetAssistant(ctx, c.ID)
	case CreateAssistantCommand:
		fields := c.AssistantFields
		result, err = g.assistants.CreateAssistant(ctx, &fields)
		mutate = true
	case UpdateAssistantCommand:
		result, err = g.assistants.UpdateAssistant(ctx, c.ID, &c.Fields)
		mutate = true
	case DeleteAssistantCommand:
		err = g.assistants.DeleteAssistant(ctx, c.ID)
		result = deletedPayload(c.ID)
		mutate = true
	case ListTopicsCommand:
		result, err = g.topics.ListTopics(ctx, c.AssistantID)
	case GetTopicCommand:
		result, err = g.topics.GetTopic(ctx, c.ID)
	case CreateTopicCommand:
		result, err = g.topics.CreateTopic(ctx, c.AssistantID, &c.Fields)
		mutate = true
	case UpdateTopicCommand:
		result, err = g.topics.UpdateTopic(ctx, c.ID, &c.Fields)
		mutate = true
	case DeleteTopicCommand:
		err = g.topics.DeleteTopic(ctx, c.ID)
		result = deletedPayload(c.ID)
		mutate = true
	case GetTopicMessagesCommand:
		result, err = g.topics.GetTopicMessages(ctx, c.ID)
	case SendMessageCommand:
		draft := &types.MessageDraft{Content: c.Content, Role: c.Role, Type: c.Type}
		result, err = g.topics.AddMessage(ctx, c.TopicID, draft)
		mutate = true
	case CreateNewConversationCommand:
		result, err = g.createNewConversation(ctx, c)
		mutate = true
	default:
		err = apperrors.New(apperrors.ErrInvalidOperation, cmd.Op())
	}

	if err != nil {
		return nil, err
	}
	if mutate {
		g.emit(cmd.Op(), result)
	}
	return result, nil
}

// Invoke parses a named operation with raw arguments and executes it. This is
// the path the tool surface takes.
func (g *Gateway) Invoke(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	cmd, err := Parse(name, args)
	if err != nil {
		return nil, err
	}
	return g.Execute(ctx, cmd)
}

// createNewConversation resolves the default assistant and delegates to the
// regular topic creation path. The assistant with the well-known id wins;
// otherwise the first assistant in listing order is used. The optional prompt
// argument is accepted for wire compatibility but does not modify the
// resolved assistant.
func (g *Gateway) createNewConversation(ctx context.Context, c CreateNewConversationCommand) (*NewConversationResult, error) {
	assistants, err := g.assistants.ListAssistants(ctx)
	if err != nil {
		return nil, err
	}
	if len(assistants) == 0 {
		return nil, apperrors.New(apperrors.ErrAssistantNotFound, "no assistants available")
	}

	target := assistants[0]
	for _, a := range assistants {
		if a.ID == types.DefaultAssistantID {
			target = a
			break
		}
	}

	topic, err := g.topics.CreateTopic(ctx, target.ID, &types.TopicFields{Name: c.Name})
	if err != nil {
		return nil, err
	}
	return &NewConversationResult{
		Topic:         topic,
		AssistantID:   target.ID,
		AssistantName: target.Name,
	}, nil
}

func (g *Gateway) emit(op string, result interface{}) {
	if g.hub == nil {
		return
	}
	g.hub.Broadcast(sse.Event{
		Type: sse.EventOperation,
		Data: OperationEvent{Operation: op, Result: result},
	})
	if g.log != nil {
		g.log.Debug("operation broadcast", zap.String("operation", op))
	}
}

// deletedPayload echoes the removed id. Deletes have nothing else to return,
// but an empty payload would leave the operation event saying only which
// operation ran, not on what.
func deletedPayload(id string) map[string]string {
	return map[string]string{"id": id}
}
