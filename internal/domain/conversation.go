package domain

// Message represents one utterance in a thread (user or agent).
// Messages are only ever appended, never edited or removed.
type Message struct {
	ID        MessageID   `json:"id"`
	Text      string      `json:"text"`
	Sender    Participant `json:"sender"`
	Timestamp Timestamp   `json:"timestamp"`
}

// FromUser reports whether the message was authored by the human operator.
func (m Message) FromUser() bool {
	return m.Sender.IsUser()
}

// Conversation is an ordered thread bound to exactly one participant.
type Conversation struct {
	ID            ConversationID `json:"id"`
	Title         string         `json:"title"`
	PreviewText   string         `json:"preview_text"`
	Selected      bool           `json:"is_selected"`
	Messages      []Message      `json:"messages"`
	ParticipantID ParticipantID  `json:"participant_id"`

	// TaskID is empty unless the thread was opened for a task.
	TaskID TaskID `json:"task_id,omitempty"`
}

// LastMessage returns the most recent message. Conversations are never empty.
func (c Conversation) LastMessage() Message {
	return c.Messages[len(c.Messages)-1]
}

// ThreadState is the per-conversation send state.
type ThreadState string

const (
	ThreadIdle          ThreadState = "idle"
	ThreadAwaitingReply ThreadState = "awaiting_reply"
)
