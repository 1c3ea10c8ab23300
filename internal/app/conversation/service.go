package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PabloGalante/eva-assistant/internal/adapters/llm"
	"github.com/PabloGalante/eva-assistant/internal/app/agentflow"
	"github.com/PabloGalante/eva-assistant/internal/app/participants"
	"github.com/PabloGalante/eva-assistant/internal/app/tasks"
	"github.com/PabloGalante/eva-assistant/internal/domain"
	"github.com/PabloGalante/eva-assistant/internal/observability"
)

// DefaultReplyDelay is the simulated thinking time before a reply lands.
const DefaultReplyDelay = time.Second

// ReplyRouting decides which thread a delayed reply is appended to.
type ReplyRouting string

const (
	// RouteToActive appends to whatever thread is selected when the timer
	// fires, even if the user switched away after sending.
	RouteToActive ReplyRouting = "active"
	// RouteToOrigin appends to the thread the message was sent from.
	RouteToOrigin ReplyRouting = "origin"
)

type Options struct {
	ReplyDelay time.Duration
	Routing    ReplyRouting

	// DefaultAgent is the participant new threads are bound to.
	DefaultAgent domain.ParticipantID
	// Seeds lists the agents that get a thread at session start. The first
	// seed is selected. Defaults to DefaultAgent.
	Seeds        []domain.ParticipantID
	CustomAgents []domain.CustomAgentConfig

	Scheduler   Scheduler
	Events      domain.EventSink
	Replies     domain.ReplyGenerator
	Suggestions domain.SuggestionGenerator
}

// Service is the assistant session: it wires user input to the conversation
// store, the delayed reply pipeline and the task registry.
//
// Every exported method holds mu for its whole body, so each call is one
// indivisible step with respect to the others, reply callbacks included.
type Service struct {
	mu sync.Mutex

	convs  domain.ConversationStore
	tasks  *tasks.Service
	flow   *agentflow.Orchestrator
	sched  Scheduler
	events domain.EventSink

	delay   time.Duration
	routing ReplyRouting
	custom  []domain.CustomAgentConfig
	agent   domain.Participant

	pending     map[domain.ConversationID]Timer
	suggestions []string
	closed      bool

	now   func() time.Time
	newID func() string
}

// NewService builds a session over the given stores and seeds its first threads.
func NewService(convs domain.ConversationStore, taskStore domain.TaskStore, opts Options) *Service {
	if opts.ReplyDelay <= 0 {
		opts.ReplyDelay = DefaultReplyDelay
	}
	if opts.Routing == "" {
		opts.Routing = RouteToActive
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.Events == nil {
		opts.Events = domain.NopSink{}
	}
	if opts.Replies == nil {
		opts.Replies = llm.NewRuleEngine(nil)
	}
	if opts.Suggestions == nil {
		opts.Suggestions = llm.NewSuggester()
	}

	s := &Service{
		convs:   convs,
		flow:    agentflow.NewDefaultOrchestrator(opts.Replies, opts.Suggestions),
		sched:   opts.Scheduler,
		events:  opts.Events,
		delay:   opts.ReplyDelay,
		routing: opts.Routing,
		custom:  append([]domain.CustomAgentConfig(nil), opts.CustomAgents...),
		pending: make(map[domain.ConversationID]Timer),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	s.tasks = tasks.NewService(taskStore, convs, s.resolve)

	s.agent = participants.Builtins()[0]
	if p, ok := s.resolve(opts.DefaultAgent); ok {
		s.agent = p
	}

	s.seed(opts.Seeds)
	return s
}

func (s *Service) seed(ids []domain.ParticipantID) {
	if s.convs.Len() > 0 {
		return
	}
	if len(ids) == 0 {
		ids = []domain.ParticipantID{s.agent.ID}
	}

	var first domain.ConversationID
	for _, id := range ids {
		p, ok := s.resolve(id)
		if !ok {
			continue
		}
		conv := s.convs.Create(p, "")
		if first == "" {
			first = conv.ID
		}
	}
	if first == "" {
		first = s.convs.Create(s.agent, "").ID
	}
	s.convs.Select(first)
}

// resolve looks id up among built-in and custom agents. Callers hold s.mu
// (or are the constructor).
func (s *Service) resolve(id domain.ParticipantID) (domain.Participant, bool) {
	return participants.Resolve(id, s.custom)
}

// participantOf returns the agent a thread is bound to.
func (s *Service) participantOf(conv domain.Conversation) domain.Participant {
	if p, ok := s.resolve(conv.ParticipantID); ok {
		return p
	}
	return conv.Messages[0].Sender
}

func (s *Service) publish(ev domain.Event) {
	ev.At = s.now()
	s.events.Publish(ev)
}

// SendMessage appends text to the active thread as the user and schedules
// the agent's reply. Blank text, or a thread still awaiting its previous
// reply, is declined.
func (s *Service) SendMessage(ctx context.Context, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := observability.LoggerFromContext(ctx)

	if strings.TrimSpace(text) == "" || s.closed {
		return false
	}

	active, ok := s.convs.Active()
	if !ok {
		return false
	}
	if _, busy := s.pending[active.ID]; busy {
		log.Debug("send declined: awaiting reply", zap.String("conversation_id", string(active.ID)))
		return false
	}

	msg := domain.Message{
		ID:        domain.MessageID(s.newID()),
		Text:      text,
		Sender:    domain.UserParticipant,
		Timestamp: s.now(),
	}
	s.convs.Append(active.ID, msg)
	s.publish(domain.Event{Kind: domain.EventMessageAppended, ConversationID: active.ID, Message: &msg})

	s.suggestions = nil
	s.publish(domain.Event{Kind: domain.EventSuggestionsUpdated, ConversationID: active.ID})

	origin := active.ID
	replyCtx := context.WithoutCancel(ctx)
	s.pending[origin] = s.sched.AfterFunc(s.delay, func() {
		s.deliverReply(replyCtx, origin, text)
	})

	log.Info("message sent",
		zap.String("conversation_id", string(origin)),
		zap.Duration("reply_delay", s.delay))
	return true
}

// deliverReply runs when the reply timer fires. The target thread is
// resolved now, not at send time, according to s.routing.
func (s *Service) deliverReply(ctx context.Context, origin domain.ConversationID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, origin)
	if s.closed {
		return
	}

	log := observability.LoggerFromContext(ctx).With(zap.String("origin_id", string(origin)))

	target, ok := s.replyTarget(origin)
	if !ok {
		log.Warn("reply dropped: no conversation to deliver to")
		return
	}
	if target.ID != origin {
		log.Info("reply delivered to a different conversation than the sender's",
			zap.String("conversation_id", string(target.ID)))
	}

	agent := s.participantOf(target)
	turn := s.flow.Run(ctx, text, agent)

	reply := domain.Message{
		ID:        domain.MessageID(s.newID()),
		Text:      turn.Reply,
		Sender:    agent,
		Timestamp: s.now(),
	}
	s.convs.Append(target.ID, reply)
	s.publish(domain.Event{Kind: domain.EventMessageAppended, ConversationID: target.ID, Message: &reply})

	s.suggestions = turn.Suggestions
	s.publish(domain.Event{
		Kind:           domain.EventSuggestionsUpdated,
		ConversationID: target.ID,
		Suggestions:    append([]string(nil), turn.Suggestions...),
	})

	log.Info("reply delivered",
		zap.String("conversation_id", string(target.ID)),
		zap.String("agent", string(agent.ID)))
}

func (s *Service) replyTarget(origin domain.ConversationID) (domain.Conversation, bool) {
	if s.routing == RouteToOrigin {
		if conv, ok := s.convs.Get(origin); ok {
			return conv, true
		}
	}
	return s.convs.Active()
}

// SelectConversation makes id the active thread. Unknown ids are ignored.
func (s *Service) SelectConversation(ctx context.Context, id domain.ConversationID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.convs.Select(id) {
		observability.LoggerFromContext(ctx).Debug("select ignored: unknown conversation",
			zap.String("conversation_id", string(id)))
		return false
	}
	s.publish(domain.Event{Kind: domain.EventConversationActive, ConversationID: id})
	return true
}

// NewConversation opens a thread with the current default agent and selects it.
func (s *Service) NewConversation(ctx context.Context, title string) domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.convs.Create(s.agent, title)
	s.publish(domain.Event{Kind: domain.EventConversationCreated, ConversationID: conv.ID})

	observability.LoggerFromContext(ctx).Info("conversation created",
		zap.String("conversation_id", string(conv.ID)),
		zap.String("agent", string(s.agent.ID)))
	return conv
}

// SelectAgent rebinds the default participant used for new threads.
func (s *Service) SelectAgent(ctx context.Context, id domain.ParticipantID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.resolve(id)
	if !ok {
		return false
	}
	s.agent = p
	observability.LoggerFromContext(ctx).Info("default agent changed", zap.String("agent", string(id)))
	return true
}

// ActiveAgent returns the default participant for new threads.
func (s *Service) ActiveAgent() domain.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent
}

// CreateTask registers a task and, when agents are assigned, opens its thread.
func (s *Service) CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks.CreateTask(ctx, in)
	if !ok {
		return domain.Task{}, false
	}
	s.publish(domain.Event{Kind: domain.EventTaskCreated, Task: &task})

	if conv, ok := s.tasks.BindTaskToConversation(ctx, task); ok {
		s.publish(domain.Event{Kind: domain.EventConversationCreated, ConversationID: conv.ID, Task: &task})
	}
	return task, true
}

// FindOrOpenTaskConversation selects the task's thread, opening one if needed.
func (s *Service) FindOrOpenTaskConversation(ctx context.Context, id domain.TaskID) (domain.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks.GetTask(id)
	if !ok {
		return domain.Conversation{}, false
	}

	before := s.convs.Len()
	conv, ok := s.tasks.FindOrOpenTaskConversation(ctx, task)
	if !ok {
		return domain.Conversation{}, false
	}

	kind := domain.EventConversationActive
	if s.convs.Len() > before {
		kind = domain.EventConversationCreated
	}
	s.publish(domain.Event{Kind: kind, ConversationID: conv.ID, Task: &task})
	return conv, true
}

// SetCustomAgents replaces the custom agents merged after the built-ins.
func (s *Service) SetCustomAgents(cfgs []domain.CustomAgentConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.custom = append([]domain.CustomAgentConfig(nil), cfgs...)
}

func (s *Service) ListParticipants() []domain.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return participants.List(s.custom)
}

// Conversations returns the thread list in creation order.
func (s *Service) Conversations() []domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convs.List()
}

func (s *Service) ActiveConversation() (domain.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convs.Active()
}

// ActiveMessages returns the message sequence of the selected thread.
func (s *Service) ActiveMessages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs.Active()
	if !ok {
		return nil
	}
	return conv.Messages
}

// Suggestions returns the follow-ups proposed after the latest reply.
func (s *Service) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.suggestions...)
}

func (s *Service) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.ListTasks()
}

// State reports whether a thread is waiting on a reply.
func (s *Service) State(id domain.ConversationID) domain.ThreadState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.pending[id]; busy {
		return domain.ThreadAwaitingReply
	}
	return domain.ThreadIdle
}

// Close stops every pending reply. Later sends are declined.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
}
