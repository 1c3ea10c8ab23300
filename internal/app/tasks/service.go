package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PabloGalante/eva-assistant/internal/adapters/llm"
	"github.com/PabloGalante/eva-assistant/internal/app/participants"
	"github.com/PabloGalante/eva-assistant/internal/domain"
	"github.com/PabloGalante/eva-assistant/internal/observability"
)

// AgentLookup resolves an agent id against the current participant set.
type AgentLookup func(id domain.ParticipantID) (domain.Participant, bool)

// Service holds task creation and the task-to-conversation binding.
type Service struct {
	tasks  domain.TaskStore
	convs  domain.ConversationStore
	lookup AgentLookup
	now    func() time.Time
	newID  func() string
}

// NewService creates a task service. A nil lookup resolves built-in agents only.
func NewService(tasks domain.TaskStore, convs domain.ConversationStore, lookup AgentLookup) *Service {
	if lookup == nil {
		lookup = func(id domain.ParticipantID) (domain.Participant, bool) {
			return participants.Resolve(id, nil)
		}
	}
	return &Service{
		tasks:  tasks,
		convs:  convs,
		lookup: lookup,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// CreateTask stores a new task. A blank title rejects the call and nothing
// is created. Status, priority and due date get defaults when unset.
func (s *Service) CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, bool) {
	log := observability.LoggerFromContext(ctx)

	title := strings.TrimSpace(in.Title)
	if title == "" {
		log.Info("task rejected: empty title")
		return domain.Task{}, false
	}

	now := s.now()
	task := domain.Task{
		ID:             domain.TaskID(s.newID()),
		Title:          title,
		Description:    in.Description,
		AssignedTo:     append([]domain.ParticipantID(nil), in.AssignedTo...),
		HumanAssignees: append([]domain.HumanAssignee(nil), in.HumanAssignees...),
		Status:         in.Status,
		Priority:       in.Priority,
		DueDate:        now.Add(domain.DefaultTaskDuration),
		CreatedAt:      now,
	}
	if task.Status == "" {
		task.Status = domain.TaskPending
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if in.DueDate != nil {
		task.DueDate = *in.DueDate
	}

	s.tasks.Add(task)
	log.Info("task created",
		zap.String("task_id", string(task.ID)),
		zap.Int("agents", len(task.AssignedTo)),
		zap.Int("humans", len(task.HumanAssignees)))

	return task, true
}

// BindTaskToConversation opens a thread with the task's first assigned agent,
// seeded with a task-creation exchange, and selects it. Tasks without agent
// assignees get no thread.
func (s *Service) BindTaskToConversation(ctx context.Context, task domain.Task) (domain.Conversation, bool) {
	return s.open(ctx, task, llm.BriefCreated)
}

// FindOrOpenTaskConversation selects the thread already bound to task, or
// opens one seeded with a discussion exchange.
func (s *Service) FindOrOpenTaskConversation(ctx context.Context, task domain.Task) (domain.Conversation, bool) {
	if conv, ok := s.convs.FindByTask(task.ID); ok {
		s.convs.Select(conv.ID)
		observability.LoggerFromContext(ctx).Debug("reusing task conversation",
			zap.String("task_id", string(task.ID)),
			zap.String("conversation_id", string(conv.ID)))
		return s.convs.Get(conv.ID)
	}
	return s.open(ctx, task, llm.BriefDiscussion)
}

func (s *Service) open(ctx context.Context, task domain.Task, kind llm.BriefKind) (domain.Conversation, bool) {
	if len(task.AssignedTo) == 0 {
		return domain.Conversation{}, false
	}

	agent := s.agentFor(ctx, task.AssignedTo[0])
	conv := s.convs.Create(agent, task.Title)
	s.convs.AttachTask(conv.ID, task.ID)

	brief := llm.BuildTaskBrief(kind, task, agent)
	s.convs.Append(conv.ID, domain.Message{
		ID:        domain.MessageID(s.newID()),
		Text:      brief.User,
		Sender:    domain.UserParticipant,
		Timestamp: s.now(),
	})
	s.convs.Append(conv.ID, domain.Message{
		ID:        domain.MessageID(s.newID()),
		Text:      brief.Agent,
		Sender:    agent,
		Timestamp: s.now(),
	})

	observability.LoggerFromContext(ctx).Info("task conversation opened",
		zap.String("task_id", string(task.ID)),
		zap.String("conversation_id", string(conv.ID)),
		zap.String("agent", string(agent.ID)),
		zap.String("kind", string(kind)))

	return s.convs.Get(conv.ID)
}

// agentFor resolves id, falling back to the active thread's participant.
func (s *Service) agentFor(ctx context.Context, id domain.ParticipantID) domain.Participant {
	if p, ok := s.lookup(id); ok {
		return p
	}

	observability.LoggerFromContext(ctx).Debug("assigned agent not found, using active participant",
		zap.String("agent", string(id)))

	if active, ok := s.convs.Active(); ok {
		if p, ok := s.lookup(active.ParticipantID); ok {
			return p
		}
		// The welcome message is authored by the bound participant.
		return active.Messages[0].Sender
	}
	return participants.Builtins()[0]
}

// ListTasks returns every task in creation order.
func (s *Service) ListTasks() []domain.Task {
	return s.tasks.List()
}

func (s *Service) GetTask(id domain.TaskID) (domain.Task, bool) {
	return s.tasks.Get(id)
}
