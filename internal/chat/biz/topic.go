package biz

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lk2023060901/ai-chat-backend/internal/chat/data"
	"github.com/lk2023060901/ai-chat-backend/internal/chat/types"
	apperrors "github.com/lk2023060901/ai-chat-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-chat-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-chat-backend/internal/pkg/writeback"
	"github.com/lk2023060901/ai-chat-backend/internal/state"
)

// Writeback task names, visible in logs and observer callbacks
const (
	TaskTopicPut    = "topic.put"
	TaskTopicDelete = "topic.delete"
)

// TopicUseCase contains business logic for topic and message operations. It
// coordinates the dual write: the state store decides success, the durable
// store follows behind through the writeback queue.
type TopicUseCase struct {
	store   state.Accessor
	durable data.DurableStore
	queue   *writeback.Queue
	logger  *logger.Logger
}

// NewTopicUseCase creates a new topic use case
func NewTopicUseCase(store state.Accessor, durable data.DurableStore, queue *writeback.Queue, log *logger.Logger) *TopicUseCase {
	return &TopicUseCase{
		store:   store,
		durable: durable,
		queue:   queue,
		logger:  log,
	}
}

// ListTopics lists topics without their message arrays. With an assistant id
// it lists that assistant's topics and fails when the assistant is unknown;
// without one it aggregates across all assistants.
func (uc *TopicUseCase) ListTopics(ctx context.Context, assistantID string) ([]*types.Topic, error) {
	assistants, err := uc.readAssistants(ctx)
	if err != nil {
		return nil, err
	}

	if assistantID != "" {
		for _, a := range assistants {
			if a.ID == assistantID {
				return stripMessages(a.Topics), nil
			}
		}
		return nil, apperrors.New(apperrors.ErrAssistantNotFound, assistantID)
	}

	out := make([]*types.Topic, 0)
	for _, a := range assistants {
		out = append(out, stripMessages(a.Topics)...)
	}
	return out, nil
}

// GetTopic retrieves a topic by ID. Topic ids are globally unique, so the
// scan across assistants finds at most one match.
func (uc *TopicUseCase) GetTopic(ctx context.Context, id string) (*types.Topic, error) {
	assistants, err := uc.readAssistants(ctx)
	if err != nil {
		return nil, err
	}

	for _, a := range assistants {
		for _, t := range a.Topics {
			if t.ID == id {
				return t, nil
			}
		}
	}
	return nil, apperrors.New(apperrors.ErrTopicNotFound, id)
}

// GetTopicMessages returns the topic's message sequence in append order
func (uc *TopicUseCase) GetTopicMessages(ctx context.Context, id string) ([]*types.Message, error) {
	topic, err := uc.GetTopic(ctx, id)
	if err != nil {
		return nil, err
	}

	if topic.Messages == nil {
		return []*types.Message{}, nil
	}
	return topic.Messages, nil
}

// CreateTopic creates a topic under an existing assistant. The state-store
// write decides the outcome; the initial durable record is written behind and
// its failure only logged.
func (uc *TopicUseCase) CreateTopic(ctx context.Context, assistantID string, fields *types.TopicFields) (*types.Topic, error) {
	if assistantID == "" {
		return nil, apperrors.New(apperrors.ErrTopicAssistantRef)
	}

	assistants, err := uc.readAssistants(ctx)
	if err != nil {
		return nil, err
	}

	found := false
	for _, a := range assistants {
		if a.ID == assistantID {
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.New(apperrors.ErrAssistantNotFound, assistantID)
	}

	name := ""
	if fields != nil {
		name = fields.Name
	}
	topic := newTopic(assistantID, name)

	if err := uc.store.Dispatch(ctx, state.AddTopic{AssistantID: assistantID, Topic: topic}); err != nil {
		return nil, uc.wrapDispatchError(err)
	}

	uc.enqueuePut(data.NewTopicRecord(topic.ID, nil, topic.UpdatedAt))

	uc.logger.Info("topic created",
		zap.String("topic_id", topic.ID),
		zap.String("assistant_id", assistantID),
	)

	return topic, nil
}

// UpdateTopic merges the patch over the stored topic. Neither the id nor the
// assistant back-reference is patchable; UpdatedAt is always bumped.
func (uc *TopicUseCase) UpdateTopic(ctx context.Context, id string, patch *types.TopicPatch) (*types.Topic, error) {
	topic, err := uc.GetTopic(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch != nil {
		patch.Apply(topic)
	}
	topic.UpdatedAt = time.Now()

	if err := uc.store.Dispatch(ctx, state.PutTopic{Topic: topic}); err != nil {
		return nil, uc.wrapDispatchError(err)
	}

	return topic, nil
}

// DeleteTopic removes a topic from the state store, then deletes its durable
// record behind. The state-store removal is authoritative and stands even if
// the durable delete later fails.
func (uc *TopicUseCase) DeleteTopic(ctx context.Context, id string) error {
	if _, err := uc.GetTopic(ctx, id); err != nil {
		return err
	}

	if err := uc.store.Dispatch(ctx, state.RemoveTopic{ID: id}); err != nil {
		return uc.wrapDispatchError(err)
	}

	topicID := id
	if err := uc.queue.EnqueueKeyed(TaskTopicDelete, topicID, func(ctx context.Context) error {
		return uc.durable.Delete(ctx, topicID)
	}); err != nil {
		uc.logger.Warn("failed to enqueue durable delete", zap.String("topic_id", id), zap.Error(err))
	}

	uc.logger.Info("topic deleted", zap.String("topic_id", id))
	return nil
}

// AddMessage appends a message to a topic. The append happens inside the
// state store's critical section, so concurrent sends to the same topic both
// land. The durable store then receives the topic's full message array.
func (uc *TopicUseCase) AddMessage(ctx context.Context, topicID string, draft *types.MessageDraft) (*types.Message, error) {
	if draft == nil || draft.Content == "" {
		return nil, apperrors.New(apperrors.ErrMessageMissingContent)
	}
	if draft.Role != "" && !types.ValidRole(draft.Role) {
		return nil, apperrors.New(apperrors.ErrMessageInvalidRole, draft.Role)
	}

	topic, err := uc.GetTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}

	msg := &types.Message{
		ID:          uuid.New().String(),
		TopicID:     topicID,
		AssistantID: topic.AssistantID,
		Role:        draft.Role,
		Content:     draft.Content,
		Type:        draft.Type,
		Status:      draft.Status,
		CreatedAt:   time.Now(),
	}
	if msg.Role == "" {
		msg.Role = types.RoleUser
	}
	if msg.Type == "" {
		msg.Type = types.TypeText
	}
	if msg.Status == "" {
		msg.Status = types.StatusSuccess
	}

	if err := uc.store.Dispatch(ctx, state.AppendMessage{TopicID: topicID, Message: msg}); err != nil {
		return nil, uc.wrapDispatchError(err)
	}

	// Re-read so the durable record carries every message that has landed,
	// including concurrent appends that serialized before this read.
	updated, err := uc.GetTopic(ctx, topicID)
	if err == nil {
		uc.enqueuePut(data.NewTopicRecord(topicID, updated.Messages, updated.UpdatedAt))
	}

	return msg, nil
}

// enqueuePut schedules the record behind, keyed by topic id so writes for
// one topic commit in submission order. The per-record Seq guard in the
// store covers the remaining gap where a fresher record is submitted first.
func (uc *TopicUseCase) enqueuePut(rec *data.TopicRecord) {
	if err := uc.queue.EnqueueKeyed(TaskTopicPut, rec.ID, func(ctx context.Context) error {
		return uc.durable.Put(ctx, rec)
	}); err != nil {
		uc.logger.Warn("failed to enqueue durable put", zap.String("topic_id", rec.ID), zap.Error(err))
	}
}

func (uc *TopicUseCase) readAssistants(ctx context.Context) ([]*types.Assistant, error) {
	raw, err := uc.store.Read(ctx, state.PathAssistants)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStateUnavailable)
	}

	assistants, ok := raw.([]*types.Assistant)
	if !ok || assistants == nil {
		return []*types.Assistant{}, nil
	}
	return assistants, nil
}

func (uc *TopicUseCase) wrapDispatchError(err error) error {
	switch {
	case errors.Is(err, state.ErrAssistantMissing):
		return apperrors.Wrap(err, apperrors.ErrAssistantNotFound)
	case errors.Is(err, state.ErrTopicMissing):
		return apperrors.Wrap(err, apperrors.ErrTopicNotFound)
	default:
		return apperrors.Wrap(err, apperrors.ErrStateUnavailable)
	}
}

// newTopic builds a fresh topic owned by assistantID. Shared by topic
// creation and the default topic attached to every new assistant.
func newTopic(assistantID, name string) *types.Topic {
	if name == "" {
		name = types.DefaultTopicName
	}
	now := time.Now()
	return &types.Topic{
		ID:                   uuid.New().String(),
		AssistantID:          assistantID,
		Name:                 name,
		CreatedAt:            now,
		UpdatedAt:            now,
		Messages:             []*types.Message{},
		IsNameManuallyEdited: false,
	}
}

func stripMessages(topics []*types.Topic) []*types.Topic {
	out := make([]*types.Topic, 0, len(topics))
	for _, t := range topics {
		out = append(out, t.WithoutMessages())
	}
	return out
}
