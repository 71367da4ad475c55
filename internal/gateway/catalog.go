package gateway

// ToolSpec describes one operation on the tool surface. The tool server
// registers a tool per entry; the names are the operation names, so a tool
// call and the matching REST route are indistinguishable past Parse.
type ToolSpec struct {
	Name        string
	Description string
}

// Catalog returns the full operation catalogue in a stable order.
func Catalog() []ToolSpec {
	return []ToolSpec{
		{OpListAssistants, "List all assistants. Topic bodies are omitted; use list_topics for a given assistant."},
		{OpGetAssistant, "Get a single assistant by id, including its topic summaries."},
		{OpCreateAssistant, "Create an assistant. Omitted fields receive defaults and a first topic is created with it."},
		{OpUpdateAssistant, "Update an assistant's fields. Only the fields present in the patch are changed."},
		{OpDeleteAssistant, "Delete an assistant and all of its topics."},
		{OpListTopics, "List topics, optionally filtered by assistant_id. Message bodies are omitted."},
		{OpGetTopic, "Get a single topic by id, including its messages."},
		{OpCreateTopic, "Create a topic under an existing assistant."},
		{OpUpdateTopic, "Update a topic's fields. Only the fields present in the patch are changed."},
		{OpDeleteTopic, "Delete a topic and its messages."},
		{OpGetTopicMessages, "Get a topic's messages in the order they were appended."},
		{OpSendMessage, "Append a message to a topic. Role defaults to user, type to text."},
		{OpCreateNewConversation, "Create a topic under the default assistant in one step."},
	}
}
