package memory

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/PabloGalante/eva-assistant/internal/domain"
)

// previewLimit is the number of runes kept from the latest user input.
const previewLimit = 50

// WelcomeFunc builds the seed message a participant opens every thread with.
type WelcomeFunc func(p domain.Participant) string

// ConversationStore is an in-memory implementation of domain.ConversationStore.
// activeID is the single source of truth for selection; Conversation.Selected
// is filled in on every snapshot.
type ConversationStore struct {
	mu       sync.RWMutex
	convs    map[domain.ConversationID]*domain.Conversation
	order    []domain.ConversationID
	activeID domain.ConversationID

	welcome WelcomeFunc
	now     func() time.Time
	newID   func() string
}

// NewConversationStore creates an empty store. A nil welcome uses a generic greeting.
func NewConversationStore(welcome WelcomeFunc) *ConversationStore {
	if welcome == nil {
		welcome = defaultWelcome
	}
	return &ConversationStore{
		convs:   make(map[domain.ConversationID]*domain.Conversation),
		welcome: welcome,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func defaultWelcome(p domain.Participant) string {
	return fmt.Sprintf("Hi, I'm %s. How can I help you today?", p.DisplayName)
}

// Create seeds a new thread with one welcome message from participant and
// makes it the active conversation.
func (s *ConversationStore) Create(participant domain.Participant, titleHint string) domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	title := titleHint
	if title == "" {
		title = participant.DisplayName
	}

	conv := &domain.Conversation{
		ID:            domain.ConversationID(s.newID()),
		Title:         title,
		ParticipantID: participant.ID,
		Messages: []domain.Message{{
			ID:        domain.MessageID(s.newID()),
			Text:      s.welcome(participant),
			Sender:    participant,
			Timestamp: now,
		}},
	}

	s.convs[conv.ID] = conv
	s.order = append(s.order, conv.ID)
	s.activeID = conv.ID

	return s.snapshot(conv)
}

// Select makes id the active conversation. Unknown ids are ignored.
func (s *ConversationStore) Select(id domain.ConversationID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.convs[id]; !ok {
		return false
	}
	s.activeID = id
	return true
}

// Append adds msg to the thread. Only user-authored messages move the preview.
func (s *ConversationStore) Append(id domain.ConversationID, msg domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[id]
	if !ok {
		return false
	}

	if msg.ID == "" {
		msg.ID = domain.MessageID(s.newID())
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}

	conv.Messages = append(conv.Messages, msg)
	if msg.FromUser() {
		conv.PreviewText = Preview(msg.Text)
	}
	return true
}

// AttachTask records the task a thread was opened for.
func (s *ConversationStore) AttachTask(id domain.ConversationID, taskID domain.TaskID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[id]
	if !ok {
		return false
	}
	conv.TaskID = taskID
	return true
}

func (s *ConversationStore) Get(id domain.ConversationID) (domain.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.convs[id]
	if !ok {
		return domain.Conversation{}, false
	}
	return s.snapshot(conv), true
}

// Active returns the selected conversation; false only while the store is empty.
func (s *ConversationStore) Active() (domain.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.convs[s.activeID]
	if !ok {
		return domain.Conversation{}, false
	}
	return s.snapshot(conv), true
}

// FindByTask returns the first thread carrying taskID, in creation order.
func (s *ConversationStore) FindByTask(taskID domain.TaskID) (domain.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if taskID == "" {
		return domain.Conversation{}, false
	}
	for _, id := range s.order {
		if conv := s.convs[id]; conv.TaskID == taskID {
			return s.snapshot(conv), true
		}
	}
	return domain.Conversation{}, false
}

// List returns every thread in creation order.
func (s *ConversationStore) List() []domain.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Conversation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.snapshot(s.convs[id]))
	}
	return out
}

func (s *ConversationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// snapshot copies conv so callers can't reach the stored message slice.
// Callers must hold s.mu.
func (s *ConversationStore) snapshot(conv *domain.Conversation) domain.Conversation {
	out := *conv
	out.Messages = append([]domain.Message(nil), conv.Messages...)
	out.Selected = conv.ID == s.activeID
	return out
}

// Preview truncates text to the thread-list preview length.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewLimit]) + "..."
}
