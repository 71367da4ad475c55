package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lk2023060901/ai-chat-backend/internal/chat/biz"
	"github.com/lk2023060901/ai-chat-backend/internal/chat/data"
	"github.com/lk2023060901/ai-chat-backend/internal/chat/types"
	apperrors "github.com/lk2023060901/ai-chat-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-chat-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-chat-backend/internal/pkg/writeback"
	"github.com/lk2023060901/ai-chat-backend/internal/sse"
	"github.com/lk2023060901/ai-chat-backend/internal/state"
)

func newTestGateway(t *testing.T) (*Gateway, *sse.Hub) {
	gw, hub, _ := newTestGatewayWithStore(t)
	return gw, hub
}

func newTestGatewayWithStore(t *testing.T) (*Gateway, *sse.Hub, *state.MemoryStore) {
	t.Helper()

	store := state.NewMemoryStore()
	queue, err := writeback.New(&writeback.Config{Workers: 2, TaskTimeout: time.Second}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(queue.Shutdown)

	hub := sse.NewHub(time.Hour, sse.Identity{Name: "test", Version: "0.0.0"}, logger.NewNop())
	t.Cleanup(hub.Shutdown)

	assistants := biz.NewAssistantUseCase(store, logger.NewNop())
	topics := biz.NewTopicUseCase(store, data.NewMemoryStore(), queue, logger.NewNop())
	return NewGateway(assistants, topics, hub, logger.NewNop()), hub, store
}

func mustExecute(t *testing.T, gw *Gateway, cmd Command) interface{} {
	t.Helper()
	result, err := gw.Execute(context.Background(), cmd)
	require.NoError(t, err)
	return result
}

func TestParseUnknownOperation(t *testing.T) {
	_, err := Parse("summon_dragon", nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidOperation))
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidOperation))
}

func TestParseMalformedArguments(t *testing.T) {
	_, err := Parse(OpGetAssistant, json.RawMessage(`{"id": 42}`))
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidParams))
}

func TestParseDecodesArguments(t *testing.T) {
	cmd, err := Parse(OpSendMessage, json.RawMessage(`{"topic_id":"t1","content":"hi","role":"user"}`))
	require.NoError(t, err)

	sm, ok := cmd.(SendMessageCommand)
	require.True(t, ok)
	assert.Equal(t, "t1", sm.TopicID)
	assert.Equal(t, "hi", sm.Content)
	assert.Equal(t, "user", sm.Role)
}

func TestParseCoversWholeCatalog(t *testing.T) {
	for _, spec := range Catalog() {
		cmd, err := Parse(spec.Name, nil)
		require.NoError(t, err, spec.Name)
		assert.Equal(t, spec.Name, cmd.Op())
	}
}

func TestExecuteValidatesBeforeDispatch(t *testing.T) {
	gw, _ := newTestGateway(t)

	_, err := gw.Execute(context.Background(), GetAssistantCommand{})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidParams))

	_, err = gw.Execute(context.Background(), SendMessageCommand{TopicID: "t1"})
	assert.True(t, apperrors.Is(err, apperrors.ErrMessageMissingContent))

	_, err = gw.Execute(context.Background(), CreateTopicCommand{})
	assert.True(t, apperrors.Is(err, apperrors.ErrTopicAssistantRef))

	// nothing was created along the way
	result := mustExecute(t, gw, ListAssistantsCommand{})
	assert.Empty(t, result.([]*types.Assistant))
}

func TestExecuteRoundTrip(t *testing.T) {
	gw, _ := newTestGateway(t)

	created := mustExecute(t, gw, CreateAssistantCommand{
		AssistantFields: types.AssistantFields{Name: "Writer"},
	}).(*types.Assistant)

	fetched := mustExecute(t, gw, GetAssistantCommand{ID: created.ID}).(*types.Assistant)
	assert.Equal(t, "Writer", fetched.Name)

	topic := mustExecute(t, gw, CreateTopicCommand{
		AssistantID: created.ID,
		Fields:      types.TopicFields{Name: "Ideas"},
	}).(*types.Topic)

	msg := mustExecute(t, gw, SendMessageCommand{
		TopicID: topic.ID,
		Content: "hello",
	}).(*types.Message)
	assert.Equal(t, types.RoleUser, msg.Role)

	msgs := mustExecute(t, gw, GetTopicMessagesCommand{ID: topic.ID}).([]*types.Message)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Content)
}

func TestInvokeMatchesExecute(t *testing.T) {
	gw, _ := newTestGateway(t)

	viaInvoke, err := gw.Invoke(context.Background(), OpCreateAssistant, json.RawMessage(`{"name":"Invoked"}`))
	require.NoError(t, err)
	a := viaInvoke.(*types.Assistant)
	assert.Equal(t, "Invoked", a.Name)

	listed, err := gw.Invoke(context.Background(), OpListAssistants, nil)
	require.NoError(t, err)
	assert.Len(t, listed.([]*types.Assistant), 1)
}

func TestMutationsBroadcastOperationEvents(t *testing.T) {
	gw, hub := newTestGateway(t)

	sub := hub.Subscribe("watcher")
	defer hub.Unsubscribe(sub)

	// the announcement comes first
	first := <-sub.Events
	assert.Equal(t, sse.EventConnected, first.Type)

	created := mustExecute(t, gw, CreateAssistantCommand{
		AssistantFields: types.AssistantFields{Name: "Watched"},
	}).(*types.Assistant)

	select {
	case event := <-sub.Events:
		require.Equal(t, sse.EventOperation, event.Type)
		op := event.Data.(OperationEvent)
		assert.Equal(t, OpCreateAssistant, op.Operation)
		assert.Equal(t, created.ID, op.Result.(*types.Assistant).ID)
	case <-time.After(time.Second):
		t.Fatal("no operation event received")
	}
}

func TestReadsDoNotBroadcast(t *testing.T) {
	gw, hub := newTestGateway(t)

	sub := hub.Subscribe("watcher")
	defer hub.Unsubscribe(sub)
	<-sub.Events // drain the announcement

	mustExecute(t, gw, ListAssistantsCommand{})

	select {
	case event := <-sub.Events:
		t.Fatalf("unexpected event %q for a read operation", event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFailedMutationsDoNotBroadcast(t *testing.T) {
	gw, hub := newTestGateway(t)

	sub := hub.Subscribe("watcher")
	defer hub.Unsubscribe(sub)
	<-sub.Events

	_, err := gw.Execute(context.Background(), DeleteAssistantCommand{ID: "ghost"})
	require.Error(t, err)

	select {
	case event := <-sub.Events:
		t.Fatalf("unexpected event %q for a failed operation", event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCreateNewConversationFallsBackToFirstAssistant(t *testing.T) {
	gw, _ := newTestGateway(t)

	mustExecute(t, gw, CreateAssistantCommand{AssistantFields: types.AssistantFields{Name: "First"}})
	mustExecute(t, gw, CreateAssistantCommand{AssistantFields: types.AssistantFields{Name: "Second"}})

	result := mustExecute(t, gw, CreateNewConversationCommand{Name: "Fresh"}).(*NewConversationResult)
	assert.Equal(t, "Fresh", result.Topic.Name)
	assert.Equal(t, "First", result.AssistantName)
}

func TestCreateNewConversationPrefersSentinelAssistant(t *testing.T) {
	gw, _, store := newTestGatewayWithStore(t)

	mustExecute(t, gw, CreateAssistantCommand{AssistantFields: types.AssistantFields{Name: "First"}})

	// the sentinel wins regardless of listing position
	err := store.Dispatch(context.Background(), state.AddAssistant{Assistant: &types.Assistant{
		ID:   types.DefaultAssistantID,
		Name: "Default",
	}})
	require.NoError(t, err)

	result := mustExecute(t, gw, CreateNewConversationCommand{}).(*NewConversationResult)
	assert.Equal(t, types.DefaultAssistantID, result.AssistantID)
	assert.Equal(t, "Default", result.AssistantName)
	assert.Equal(t, types.DefaultTopicName, result.Topic.Name)
}

func TestCreateNewConversationEmptyStore(t *testing.T) {
	gw, _ := newTestGateway(t)

	_, err := gw.Execute(context.Background(), CreateNewConversationCommand{})
	assert.True(t, apperrors.Is(err, apperrors.ErrAssistantNotFound))
}
