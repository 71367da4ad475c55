package data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/ai-chat-backend/internal/chat/types"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := &TopicRecord{
		ID:        "t1",
		Messages:  []*types.Message{{ID: "m1", Content: "hello"}},
		UpdatedAt: time.Now(),
	}
	require.NoError(t, s.Put(ctx, rec))
	assert.Equal(t, 1, s.Len())

	got, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hello", got.Messages[0].Content)

	// the stored record is insulated from later caller mutation
	rec.Messages = append(rec.Messages, &types.Message{ID: "m2"})
	got, err = s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)
}

func TestNewTopicRecordDerivesSeq(t *testing.T) {
	empty := NewTopicRecord("t1", nil, time.Now())
	assert.NotNil(t, empty.Messages)
	assert.Equal(t, int64(0), empty.Seq)

	two := NewTopicRecord("t1", []*types.Message{{ID: "m1"}, {ID: "m2"}}, time.Now())
	assert.Equal(t, int64(2), two.Seq)
}

func TestMemoryStorePutDropsStaleRecords(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	fresh := NewTopicRecord("t1", []*types.Message{{ID: "m1"}, {ID: "m2"}}, time.Now())
	stale := NewTopicRecord("t1", []*types.Message{{ID: "m1"}}, time.Now().Add(-time.Second))

	require.NoError(t, s.Put(ctx, fresh))
	require.NoError(t, s.Put(ctx, stale)) // superseded, dropped without error

	got, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, int64(2), got.Seq)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &TopicRecord{ID: "t1"}))
	require.NoError(t, s.Delete(ctx, "t1"))
	assert.Equal(t, 0, s.Len())

	// deleting a missing record is not an error
	assert.NoError(t, s.Delete(ctx, "t1"))
}

func TestMemoryStoreFailureInjection(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	s.FailPuts = boom
	assert.ErrorIs(t, s.Put(ctx, &TopicRecord{ID: "t1"}), boom)
	assert.Equal(t, 0, s.Len())

	s.FailPuts = nil
	require.NoError(t, s.Put(ctx, &TopicRecord{ID: "t1"}))

	s.FailDeletes = boom
	assert.ErrorIs(t, s.Delete(ctx, "t1"), boom)
	assert.Equal(t, 1, s.Len())
}
