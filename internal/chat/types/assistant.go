package types

// DefaultAssistantID is the well-known sentinel id resolved by the
// create_new_conversation operation before falling back to the first
// assistant in listing order.
const DefaultAssistantID = "default"

// Default values applied when a create request leaves fields unset
const (
	DefaultAssistantName  = "New Assistant"
	DefaultAssistantType  = "assistant"
	DefaultAssistantEmoji = "🤖"
)

// Assistant represents a configured conversational persona. It owns its
// topics: deleting an assistant removes every topic that references it.
type Assistant struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Prompt      string   `json:"prompt"`
	Type        string   `json:"type"` // "assistant" or "translate"
	Emoji       string   `json:"emoji"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags"`
	Topics      []*Topic `json:"topics,omitempty"`
}

// Clone returns a deep copy
func (a *Assistant) Clone() *Assistant {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Tags = append([]string(nil), a.Tags...)
	cp.Topics = make([]*Topic, 0, len(a.Topics))
	for _, t := range a.Topics {
		cp.Topics = append(cp.Topics, t.Clone())
	}
	return &cp
}

// WithoutTopics returns a shallow copy with the topic list stripped, the
// projection served by list operations.
func (a *Assistant) WithoutTopics() *Assistant {
	cp := *a
	cp.Tags = append([]string(nil), a.Tags...)
	cp.Topics = nil
	return &cp
}

// AssistantFields carries caller-supplied values for assistant creation.
// Unset fields receive defaults.
type AssistantFields struct {
	Name        string   `json:"name"`
	Prompt      string   `json:"prompt"`
	Type        string   `json:"type"`
	Emoji       string   `json:"emoji"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// AssistantPatch is the field-level update descriptor for assistants. The id
// is deliberately not a field: immutable identity cannot be patched.
type AssistantPatch struct {
	Name        *string  `json:"name,omitempty"`
	Prompt      *string  `json:"prompt,omitempty"`
	Type        *string  `json:"type,omitempty"`
	Emoji       *string  `json:"emoji,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Apply merges the patch over the assistant in place
func (p *AssistantPatch) Apply(a *Assistant) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Prompt != nil {
		a.Prompt = *p.Prompt
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Emoji != nil {
		a.Emoji = *p.Emoji
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Tags != nil {
		a.Tags = append([]string(nil), p.Tags...)
	}
}
