package llm_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/eva-assistant/internal/adapters/llm"
	"github.com/PabloGalante/eva-assistant/internal/app/participants"
	"github.com/PabloGalante/eva-assistant/internal/domain"
)

func TestWelcomeMessage(t *testing.T) {
	assert.Contains(t, llm.WelcomeMessage(agent(t, participants.Risk)), "EVA Risk Analyst")
	assert.Equal(t, "Hi, I'm Pricing Bot. How can I help you today?",
		llm.WelcomeMessage(domain.Participant{ID: "p", DisplayName: "Pricing Bot"}))
}

func TestBuildTaskBrief(t *testing.T) {
	task := domain.Task{
		Title:       "Review financials",
		Description: "FY23 statements for Acme",
		Status:      domain.TaskPending,
		Priority:    domain.PriorityHigh,
		DueDate:     time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
	}
	risk := agent(t, participants.Risk)

	created := llm.BuildTaskBrief(llm.BriefCreated, task, risk)
	assert.Contains(t, created.User, `"Review financials"`)
	assert.Contains(t, created.User, "FY23 statements for Acme")
	assert.Contains(t, created.Agent, "Mar 9, 2026")
	assert.Contains(t, created.Agent, "EVA Risk Analyst will keep")

	discuss := llm.BuildTaskBrief(llm.BriefDiscussion, task, risk)
	assert.Contains(t, discuss.User, "Let's discuss")
	assert.Contains(t, discuss.Agent, "high priority")
	assert.NotEqual(t, created.Agent, discuss.Agent)

	task.Description = ""
	task.HumanAssignees = []domain.HumanAssignee{{Name: "Dana"}, {Name: "Lee"}}
	created = llm.BuildTaskBrief(llm.BriefCreated, task, risk)
	assert.NotContains(t, created.User, "Details")
	assert.Contains(t, created.Agent, "Dana, Lee")
}
