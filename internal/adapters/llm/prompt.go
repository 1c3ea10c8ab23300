package llm

import (
	"fmt"
	"strings"

	"github.com/PabloGalante/eva-assistant/internal/app/participants"
	"github.com/PabloGalante/eva-assistant/internal/domain"
)

var welcomes = map[domain.ParticipantID]string{
	participants.EVA:          "Hi, I'm EVA, your lending assistant. Ask me about deals, borrowers, documents or tasks.",
	participants.Risk:         "Hi, I'm EVA Risk Analyst. Share a deal and I'll walk you through its credit, collateral and concentration risk.",
	participants.Underwriting: "Hi, I'm EVA Underwriting Assistant. I can build cash flow analyses and draft credit memos.",
	participants.Documents:    "Hi, I'm EVA Document Specialist. I track checklists, review uploads and spread financials.",
	participants.Market:       "Hi, I'm EVA Market Researcher. I can pull comps, pricing and submarket trends.",
}

// WelcomeMessage is the text every new thread is seeded with.
func WelcomeMessage(p domain.Participant) string {
	if w, ok := welcomes[p.ID]; ok {
		return w
	}
	return fmt.Sprintf("Hi, I'm %s. How can I help you today?", p.DisplayName)
}

// BriefKind selects the wording of the messages that open a task thread.
type BriefKind string

const (
	BriefCreated    BriefKind = "created"
	BriefDiscussion BriefKind = "discussion"
)

// TaskBrief is the synthesized exchange seeded into a task thread:
// one user-authored line and one agent acknowledgement.
type TaskBrief struct {
	User  string
	Agent string
}

// BuildTaskBrief builds the opening exchange for a task thread.
func BuildTaskBrief(kind BriefKind, task domain.Task, agent domain.Participant) TaskBrief {
	details := taskDetails(task)

	switch kind {
	case BriefDiscussion:
		return TaskBrief{
			User: fmt.Sprintf("Let's discuss the task %q.%s", task.Title, details),
			Agent: fmt.Sprintf("Sure. %q is %s with %s priority, due %s. Where would you like to start?",
				task.Title, task.Status, task.Priority, task.DueDate.Format("Jan 2, 2006")),
		}
	case BriefCreated:
		fallthrough
	default:
		return TaskBrief{
			User: fmt.Sprintf("I've created a new task for you: %q.%s", task.Title, details),
			Agent: fmt.Sprintf("Got it. I'm on %q and will report back by %s. %s",
				task.Title, task.DueDate.Format("Jan 2, 2006"), assigneeLine(task, agent)),
		}
	}
}

func taskDetails(task domain.Task) string {
	desc := strings.TrimSpace(task.Description)
	if desc == "" {
		return ""
	}
	return "\n\nDetails: " + desc
}

func assigneeLine(task domain.Task, agent domain.Participant) string {
	if len(task.HumanAssignees) == 0 {
		return fmt.Sprintf("%s will keep this thread updated.", agent.DisplayName)
	}
	names := make([]string, 0, len(task.HumanAssignees))
	for _, h := range task.HumanAssignees {
		names = append(names, h.Name)
	}
	return fmt.Sprintf("I'll coordinate with %s.", strings.Join(names, ", "))
}
