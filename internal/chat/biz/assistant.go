package biz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lk2023060901/ai-chat-backend/internal/chat/types"
	apperrors "github.com/lk2023060901/ai-chat-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-chat-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-chat-backend/internal/state"
)

// AssistantUseCase contains business logic for assistant operations. All
// reads and writes go through the injected state accessor; assistants have no
// durable-store footprint of their own.
type AssistantUseCase struct {
	store  state.Accessor
	logger *logger.Logger
}

// NewAssistantUseCase creates a new assistant use case
func NewAssistantUseCase(store state.Accessor, log *logger.Logger) *AssistantUseCase {
	return &AssistantUseCase{
		store:  store,
		logger: log,
	}
}

// ListAssistants lists all assistants without their topic collections.
// Listing is side-effect-free and never fails on an empty store.
func (uc *AssistantUseCase) ListAssistants(ctx context.Context) ([]*types.Assistant, error) {
	assistants, err := uc.readAssistants(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*types.Assistant, 0, len(assistants))
	for _, a := range assistants {
		out = append(out, a.WithoutTopics())
	}
	return out, nil
}

// GetAssistant retrieves an assistant by ID
func (uc *AssistantUseCase) GetAssistant(ctx context.Context, id string) (*types.Assistant, error) {
	assistants, err := uc.readAssistants(ctx)
	if err != nil {
		return nil, err
	}

	for _, a := range assistants {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, apperrors.New(apperrors.ErrAssistantNotFound, id)
}

// CreateAssistant creates a new assistant with one default topic attached.
// Unset fields receive defaults; the topic's back-reference is forced to the
// generated id regardless of caller input. The assistant and its topic land
// in the state store as a single dispatch.
func (uc *AssistantUseCase) CreateAssistant(ctx context.Context, fields *types.AssistantFields) (*types.Assistant, error) {
	if fields == nil {
		fields = &types.AssistantFields{}
	}

	assistant := &types.Assistant{
		ID:          uuid.New().String(),
		Name:        fields.Name,
		Prompt:      fields.Prompt,
		Type:        fields.Type,
		Emoji:       fields.Emoji,
		Description: fields.Description,
		Tags:        fields.Tags,
	}
	if assistant.Name == "" {
		assistant.Name = types.DefaultAssistantName
	}
	if assistant.Type == "" {
		assistant.Type = types.DefaultAssistantType
	}
	if assistant.Emoji == "" {
		assistant.Emoji = types.DefaultAssistantEmoji
	}
	if assistant.Tags == nil {
		assistant.Tags = []string{}
	}

	assistant.Topics = []*types.Topic{newTopic(assistant.ID, "")}

	if err := uc.store.Dispatch(ctx, state.AddAssistant{Assistant: assistant}); err != nil {
		return nil, uc.wrapDispatchError(err)
	}

	uc.logger.Info("assistant created",
		zap.String("assistant_id", assistant.ID),
		zap.String("name", assistant.Name),
	)

	return assistant, nil
}

// EnsureDefault seeds the well-known default assistant when the store holds
// no assistants at all. Called once at startup so create_new_conversation has
// something to resolve against on a fresh deployment.
func (uc *AssistantUseCase) EnsureDefault(ctx context.Context) error {
	assistants, err := uc.readAssistants(ctx)
	if err != nil {
		return err
	}
	if len(assistants) > 0 {
		return nil
	}

	assistant := &types.Assistant{
		ID:    types.DefaultAssistantID,
		Name:  types.DefaultAssistantName,
		Type:  types.DefaultAssistantType,
		Emoji: types.DefaultAssistantEmoji,
		Tags:  []string{},
	}
	assistant.Topics = []*types.Topic{newTopic(assistant.ID, "")}

	if err := uc.store.Dispatch(ctx, state.AddAssistant{Assistant: assistant}); err != nil {
		return uc.wrapDispatchError(err)
	}

	uc.logger.Info("default assistant seeded", zap.String("assistant_id", assistant.ID))
	return nil
}

// UpdateAssistant merges the patch over the stored assistant and writes the
// result back. Identity is not a patch field, so it cannot change.
func (uc *AssistantUseCase) UpdateAssistant(ctx context.Context, id string, patch *types.AssistantPatch) (*types.Assistant, error) {
	assistant, err := uc.GetAssistant(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch != nil {
		patch.Apply(assistant)
	}

	if err := uc.store.Dispatch(ctx, state.PutAssistant{Assistant: assistant}); err != nil {
		return nil, uc.wrapDispatchError(err)
	}

	return assistant, nil
}

// DeleteAssistant removes an assistant; its topics and their messages go with
// it. Durable-store records for those topics are not purged here.
func (uc *AssistantUseCase) DeleteAssistant(ctx context.Context, id string) error {
	if _, err := uc.GetAssistant(ctx, id); err != nil {
		return err
	}

	if err := uc.store.Dispatch(ctx, state.RemoveAssistant{ID: id}); err != nil {
		return uc.wrapDispatchError(err)
	}

	uc.logger.Info("assistant deleted", zap.String("assistant_id", id))
	return nil
}

func (uc *AssistantUseCase) readAssistants(ctx context.Context) ([]*types.Assistant, error) {
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

func (uc *AssistantUseCase) wrapDispatchError(err error) error {
	switch {
	case errors.Is(err, state.ErrAssistantMissing):
		return apperrors.Wrap(err, apperrors.ErrAssistantNotFound)
	case errors.Is(err, state.ErrTopicMissing):
		return apperrors.Wrap(err, apperrors.ErrTopicNotFound)
	default:
		return apperrors.Wrap(err, apperrors.ErrStateUnavailable)
	}
}
