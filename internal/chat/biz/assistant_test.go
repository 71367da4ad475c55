package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/ai-chat-backend/internal/chat/types"
	apperrors "github.com/lk2023060901/ai-chat-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-chat-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-chat-backend/internal/state"
)

func newAssistantUseCase(t *testing.T) (*AssistantUseCase, *state.MemoryStore) {
	t.Helper()
	store := state.NewMemoryStore()
	return NewAssistantUseCase(store, logger.NewNop()), store
}

func TestListAssistantsEmptyStore(t *testing.T) {
	uc, _ := newAssistantUseCase(t)

	got, err := uc.ListAssistants(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestCreateAssistantAppliesDefaults(t *testing.T) {
	uc, _ := newAssistantUseCase(t)

	a, err := uc.CreateAssistant(context.Background(), &types.AssistantFields{})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, types.DefaultAssistantName, a.Name)
	assert.Equal(t, types.DefaultAssistantType, a.Type)
	assert.Equal(t, types.DefaultAssistantEmoji, a.Emoji)
	assert.NotNil(t, a.Tags)

	// creation attaches one default topic owned by the new assistant
	require.Len(t, a.Topics, 1)
	assert.Equal(t, a.ID, a.Topics[0].AssistantID)
	assert.Equal(t, types.DefaultTopicName, a.Topics[0].Name)
}

func TestCreateAssistantKeepsProvidedFields(t *testing.T) {
	uc, _ := newAssistantUseCase(t)

	a, err := uc.CreateAssistant(context.Background(), &types.AssistantFields{
		Name:   "Translator",
		Prompt: "You translate text.",
		Emoji:  "🌍",
		Tags:   []string{"lang"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Translator", a.Name)
	assert.Equal(t, "You translate text.", a.Prompt)
	assert.Equal(t, "🌍", a.Emoji)
	assert.Equal(t, []string{"lang"}, a.Tags)
}

func TestListAssistantsStripsTopics(t *testing.T) {
	uc, _ := newAssistantUseCase(t)

	_, err := uc.CreateAssistant(context.Background(), &types.AssistantFields{Name: "A"})
	require.NoError(t, err)

	list, err := uc.ListAssistants(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Topics)
}

func TestGetAssistantNotFound(t *testing.T) {
	uc, _ := newAssistantUseCase(t)

	_, err := uc.GetAssistant(context.Background(), "ghost")
	assert.True(t, apperrors.Is(err, apperrors.ErrAssistantNotFound))
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUpdateAssistantPatchesOnlySetFields(t *testing.T) {
	uc, _ := newAssistantUseCase(t)

	a, err := uc.CreateAssistant(context.Background(), &types.AssistantFields{
		Name:   "Writer",
		Prompt: "You write prose.",
	})
	require.NoError(t, err)

	newName := "Editor"
	got, err := uc.UpdateAssistant(context.Background(), a.ID, &types.AssistantPatch{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, "Editor", got.Name)
	assert.Equal(t, "You write prose.", got.Prompt)
	assert.Equal(t, a.ID, got.ID)

	// the update survives a fresh read and the topic list is intact
	stored, err := uc.GetAssistant(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Editor", stored.Name)
	assert.Len(t, stored.Topics, 1)
}

func TestUpdateAssistantNotFound(t *testing.T) {
	uc, _ := newAssistantUseCase(t)

	name := "X"
	_, err := uc.UpdateAssistant(context.Background(), "ghost", &types.AssistantPatch{Name: &name})
	assert.True(t, apperrors.Is(err, apperrors.ErrAssistantNotFound))
}

func TestDeleteAssistantCascades(t *testing.T) {
	uc, _ := newAssistantUseCase(t)

	a, err := uc.CreateAssistant(context.Background(), &types.AssistantFields{Name: "Doomed"})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteAssistant(context.Background(), a.ID))

	_, err = uc.GetAssistant(context.Background(), a.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrAssistantNotFound))

	list, err := uc.ListAssistants(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteAssistantNotFound(t *testing.T) {
	uc, _ := newAssistantUseCase(t)
	err := uc.DeleteAssistant(context.Background(), "ghost")
	assert.True(t, apperrors.Is(err, apperrors.ErrAssistantNotFound))
}

func TestEnsureDefaultSeedsEmptyStore(t *testing.T) {
	uc, _ := newAssistantUseCase(t)

	require.NoError(t, uc.EnsureDefault(context.Background()))

	a, err := uc.GetAssistant(context.Background(), types.DefaultAssistantID)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultAssistantName, a.Name)
	assert.Len(t, a.Topics, 1)
}

func TestEnsureDefaultLeavesExistingAssistantsAlone(t *testing.T) {
	uc, _ := newAssistantUseCase(t)

	_, err := uc.CreateAssistant(context.Background(), &types.AssistantFields{Name: "Existing"})
	require.NoError(t, err)

	require.NoError(t, uc.EnsureDefault(context.Background()))

	list, err := uc.ListAssistants(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Existing", list[0].Name)
}
