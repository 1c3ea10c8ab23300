package domain

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// DefaultTaskDuration is added to the creation time when no due date is given.
const DefaultTaskDuration = 7 * 24 * time.Hour

type AssigneeKind string

const (
	AssigneeInternal AssigneeKind = "internal"
	AssigneeExternal AssigneeKind = "external"
)

// HumanAssignee is a person a task is assigned to, inside or outside the bank.
type HumanAssignee struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Email string       `json:"email"`
	Kind  AssigneeKind `json:"kind"`
}

// Task is a unit of work assignable to agents and/or humans.
// Status starts at pending; advancing it is someone else's job.
type Task struct {
	ID             TaskID          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	AssignedTo     []ParticipantID `json:"assigned_to"`
	HumanAssignees []HumanAssignee `json:"human_assignees"`
	Status         TaskStatus      `json:"status"`
	Priority       TaskPriority    `json:"priority"`
	DueDate        Timestamp       `json:"due_date"`
	CreatedAt      Timestamp       `json:"created_at"`
}

// TaskInput carries the fields a caller may set when creating a task.
// Zero values get defaults.
type TaskInput struct {
	Title          string
	Description    string
	AssignedTo     []ParticipantID
	HumanAssignees []HumanAssignee
	Status         TaskStatus
	Priority       TaskPriority
	DueDate        *time.Time
}
