package memory

import (
	"sync"

	"github.com/PabloGalante/eva-assistant/internal/domain"
)

// TaskStore is a simple in-memory implementation of domain.TaskStore.
// It is NOT persistent; tasks live as long as the process.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[domain.TaskID]domain.Task
	order []domain.TaskID
}

func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[domain.TaskID]domain.Task),
	}
}

// Add stores task. Re-adding an existing id replaces it in place.
func (s *TaskStore) Add(task domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; !exists {
		s.order = append(s.order, task.ID)
	}
	s.tasks[task.ID] = cloneTask(task)
}

func (s *TaskStore) Get(id domain.TaskID) (domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return domain.Task{}, false
	}
	return cloneTask(t), true
}

// List returns tasks in creation order.
func (s *TaskStore) List() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneTask(s.tasks[id]))
	}
	return out
}

func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func cloneTask(t domain.Task) domain.Task {
	t.AssignedTo = append([]domain.ParticipantID(nil), t.AssignedTo...)
	t.HumanAssignees = append([]domain.HumanAssignee(nil), t.HumanAssignees...)
	return t
}
