package types

import "time"

// DefaultTopicName is applied when a topic is created without a name
const DefaultTopicName = "New Conversation"

// Topic is a single conversation thread belonging to exactly one assistant.
// AssistantID is a back-reference fixed at creation time.
type Topic struct {
	ID                   string     `json:"id"`
	AssistantID          string     `json:"assistant_id"`
	Name                 string     `json:"name"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	Messages             []*Message `json:"messages,omitempty"`
	IsNameManuallyEdited bool       `json:"is_name_manually_edited"`
}

// Clone returns a deep copy
func (t *Topic) Clone() *Topic {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Messages = make([]*Message, 0, len(t.Messages))
	for _, m := range t.Messages {
		mc := *m
		cp.Messages = append(cp.Messages, &mc)
	}
	return &cp
}

// WithoutMessages returns a shallow copy with the message list stripped, the
// projection served by list operations to bound payload size.
func (t *Topic) WithoutMessages() *Topic {
	cp := *t
	cp.Messages = nil
	return &cp
}

// TopicFields carries caller-supplied values for topic creation
type TopicFields struct {
	Name string `json:"name"`
}

// TopicPatch is the field-level update descriptor for topics. Neither id nor
// assistant_id is a field: both are immutable after creation.
type TopicPatch struct {
	Name                 *string `json:"name,omitempty"`
	IsNameManuallyEdited *bool   `json:"is_name_manually_edited,omitempty"`
}

// Apply merges the patch over the topic in place
func (p *TopicPatch) Apply(t *Topic) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.IsNameManuallyEdited != nil {
		t.IsNameManuallyEdited = *p.IsNameManuallyEdited
	}
}
