package domain

// ReplyGenerator maps an agent and the user's text to a reply.
type ReplyGenerator interface {
	GenerateReply(input string, agent Participant) string
}

// SuggestionGenerator proposes follow-up prompts after a reply.
type SuggestionGenerator interface {
	Generate(input, reply string, agent Participant) []string
}

// ConversationStore owns the conversation threads and the single active
// selection. Lookups that miss are no-ops, never errors.
type ConversationStore interface {
	Create(participant Participant, titleHint string) Conversation
	Select(id ConversationID) bool
	Append(id ConversationID, msg Message) bool
	AttachTask(id ConversationID, taskID TaskID) bool
	Get(id ConversationID) (Conversation, bool)
	Active() (Conversation, bool)
	FindByTask(taskID TaskID) (Conversation, bool)
	List() []Conversation
	Len() int
}

// TaskStore keeps the task entities in creation order.
type TaskStore interface {
	Add(task Task)
	Get(id TaskID) (Task, bool)
	List() []Task
	Len() int
}

// EventSink receives session events for the UI shell.
type EventSink interface {
	Publish(ev Event)
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Publish(Event) {}
