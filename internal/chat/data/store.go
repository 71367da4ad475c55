// Package data holds the durable message store: the write-behind persistence
// layer for topic message bodies. The shared state store remains the read
// source; records here only survive restarts.
package data

import (
	"context"
	"errors"
	"time"

	"github.com/lk2023060901/ai-chat-backend/internal/chat/types"
)

// ErrRecordNotFound is returned by Get when no record exists for the id
var ErrRecordNotFound = errors.New("topic record not found")

// TopicRecord is the unit of durable persistence: one topic's full message
// list. Writers always overwrite the whole record, never patch it, which
// rules out partial-record corruption at the cost of payload size growing
// with conversation length.
//
// Seq is the record's freshness marker. Messages are append-only within a
// topic's lifetime, so the message count orders any two records for the same
// id; stores use it to drop writes that would replace a record with an older
// one.
type TopicRecord struct {
	ID        string           `json:"id"`
	Seq       int64            `json:"seq"`
	Messages  []*types.Message `json:"messages"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewTopicRecord builds a record for the topic's current message list, with
// Seq derived from it
func NewTopicRecord(id string, messages []*types.Message, updatedAt time.Time) *TopicRecord {
	if messages == nil {
		messages = []*types.Message{}
	}
	return &TopicRecord{
		ID:        id,
		Seq:       int64(len(messages)),
		Messages:  messages,
		UpdatedAt: updatedAt,
	}
}

// DurableStore is the key-based contract the topic registry needs. All three
// operations are best-effort from the caller's point of view: failures are
// logged by the writeback queue and never fail the triggering operation.
// Put drops records whose Seq does not advance past the stored one, so a
// stale record can never overwrite a fresher one regardless of commit order.
type DurableStore interface {
	Put(ctx context.Context, rec *TopicRecord) error
	Get(ctx context.Context, id string) (*TopicRecord, error)
	Delete(ctx context.Context, id string) error
}
