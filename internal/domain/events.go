package domain

type EventKind string

const (
	EventMessageAppended     EventKind = "message_appended"
	EventConversationCreated EventKind = "conversation_created"
	EventConversationActive  EventKind = "conversation_selected"
	EventSuggestionsUpdated  EventKind = "suggestions_updated"
	EventTaskCreated         EventKind = "task_created"
)

// Event is pushed to the UI shell whenever session state changes.
type Event struct {
	Kind           EventKind      `json:"kind"`
	ConversationID ConversationID `json:"conversation_id,omitempty"`
	Message        *Message       `json:"message,omitempty"`
	Suggestions    []string       `json:"suggestions,omitempty"`
	Task           *Task          `json:"task,omitempty"`
	At             Timestamp      `json:"at"`
}
