package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lk2023060901/ai-chat-backend/internal/chat/types"
)

// Dispatch failure sentinels
var (
	ErrAssistantMissing = errors.New("state: assistant not found")
	ErrTopicMissing     = errors.New("state: topic not found")
	ErrDuplicateID      = errors.New("state: id already present")
)

// MemoryStore is the reference Accessor implementation: a single in-memory
// assistants collection guarded by one lock. Every Dispatch runs start to
// finish under the write lock, every Read hands out deep copies.
type MemoryStore struct {
	mu         sync.RWMutex
	assistants []*types.Assistant
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Read implements Accessor
func (s *MemoryStore) Read(ctx context.Context, path string) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch path {
	case PathAssistants:
		s.mu.RLock()
		defer s.mu.RUnlock()
		out := make([]*types.Assistant, 0, len(s.assistants))
		for _, a := range s.assistants {
			out = append(out, a.Clone())
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}
}

// Dispatch implements Accessor
func (s *MemoryStore) Dispatch(ctx context.Context, action Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch act := action.(type) {
	case ReplaceAssistants:
		s.assistants = make([]*types.Assistant, 0, len(act.Assistants))
		for _, a := range act.Assistants {
			s.assistants = append(s.assistants, a.Clone())
		}
		return nil

	case AddAssistant:
		if s.indexOfAssistant(act.Assistant.ID) >= 0 {
			return fmt.Errorf("%w: assistant %s", ErrDuplicateID, act.Assistant.ID)
		}
		s.assistants = append(s.assistants, act.Assistant.Clone())
		return nil

	case PutAssistant:
		i := s.indexOfAssistant(act.Assistant.ID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrAssistantMissing, act.Assistant.ID)
		}
		incoming := act.Assistant.Clone()
		if incoming.Topics == nil {
			incoming.Topics = s.assistants[i].Topics
		}
		s.assistants[i] = incoming
		return nil

	case RemoveAssistant:
		i := s.indexOfAssistant(act.ID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrAssistantMissing, act.ID)
		}
		s.assistants = append(s.assistants[:i], s.assistants[i+1:]...)
		return nil

	case AddTopic:
		i := s.indexOfAssistant(act.AssistantID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrAssistantMissing, act.AssistantID)
		}
		if _, _, ok := s.findTopic(act.Topic.ID); ok {
			return fmt.Errorf("%w: topic %s", ErrDuplicateID, act.Topic.ID)
		}
		s.assistants[i].Topics = append(s.assistants[i].Topics, act.Topic.Clone())
		return nil

	case PutTopic:
		ai, ti, ok := s.findTopic(act.Topic.ID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrTopicMissing, act.Topic.ID)
		}
		incoming := act.Topic.Clone()
		// the back-reference is immutable; the stored value wins
		incoming.AssistantID = s.assistants[ai].Topics[ti].AssistantID
		s.assistants[ai].Topics[ti] = incoming
		return nil

	case RemoveTopic:
		ai, ti, ok := s.findTopic(act.ID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrTopicMissing, act.ID)
		}
		topics := s.assistants[ai].Topics
		s.assistants[ai].Topics = append(topics[:ti], topics[ti+1:]...)
		return nil

	case AppendMessage:
		ai, ti, ok := s.findTopic(act.TopicID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrTopicMissing, act.TopicID)
		}
		msg := *act.Message
		topic := s.assistants[ai].Topics[ti]
		topic.Messages = append(topic.Messages, &msg)
		topic.UpdatedAt = time.Now()
		return nil

	default:
		return fmt.Errorf("state: unhandled action %T", action)
	}
}

func (s *MemoryStore) indexOfAssistant(id string) int {
	for i, a := range s.assistants {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) findTopic(id string) (assistantIdx, topicIdx int, ok bool) {
	for ai, a := range s.assistants {
		for ti, t := range a.Topics {
			if t.ID == id {
				return ai, ti, true
			}
		}
	}
	return 0, 0, false
}
