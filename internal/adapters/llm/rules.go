package llm

import (
	"strings"

	"github.com/PabloGalante/eva-assistant/internal/app/participants"
	"github.com/PabloGalante/eva-assistant/internal/domain"
)

// agentPlaceholder is replaced by the agent's display name in reply templates.
const agentPlaceholder = "{{agent}}"

// RiskAssessmentReply is the fixed answer the risk analyst gives to risk questions.
const RiskAssessmentReply = "Here is my preliminary risk assessment for this deal:\n" +
	"1. Credit risk: moderate. Debt service coverage is 1.32x against a 1.25x policy minimum.\n" +
	"2. Collateral risk: low. Loan-to-value sits at 68% on a recent appraisal.\n" +
	"3. Concentration risk: elevated. The top customer accounts for 41% of revenue.\n" +
	"I'd recommend a customer-concentration covenant and quarterly financial reporting. " +
	"Want me to draft the covenant package?"

const fallbackReply = "Thanks, I've noted that. As " + agentPlaceholder + ", I can dig into deals, " +
	"borrowers, documents and tasks for you. Could you tell me which loan or borrower this is about?"

// Rule is one entry of the reply table. An empty Agent matches every agent.
type Rule struct {
	Agent    domain.ParticipantID
	Keywords []string
	Template string
}

func (r Rule) matches(lowered string, agent domain.Participant) bool {
	if r.Agent != "" && r.Agent != agent.ID {
		return false
	}
	for _, kw := range r.Keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// DefaultRules lists agent-specific rules before generic ones so a
// specialist answer is never masked by a generic keyword.
var DefaultRules = []Rule{
	// Risk analyst
	{Agent: participants.Risk, Keywords: []string{"risk", "assess", "exposure"}, Template: RiskAssessmentReply},
	{Agent: participants.Risk, Keywords: []string{"covenant", "dscr", "ltv", "stress"},
		Template: "I ran a stress test on the current structure. With a 200bp rate shock DSCR drops to 1.14x, " +
			"which would breach the 1.20x covenant. Consider a step-down amortization or an interest reserve."},

	// Underwriting
	{Agent: participants.Underwriting, Keywords: []string{"underwrit", "credit memo", "approve", "approval"},
		Template: "I've started the underwriting workup. The credit memo draft covers borrower background, " +
			"sources and uses, repayment analysis and guarantor strength. Two items are open: the interim " +
			"financials and the personal financial statement for the guarantor."},
	{Agent: participants.Underwriting, Keywords: []string{"cash flow", "ebitda", "global"},
		Template: "Global cash flow after distributions is $1.84M against $1.21M of combined debt service, " +
			"a 1.52x coverage. Add-backs are limited to depreciation and one-time legal costs."},

	// Documents
	{Agent: participants.Documents, Keywords: []string{"document", "upload", "missing", "checklist"},
		Template: "The document checklist is 7 of 10 complete. Still missing: 2023 business tax return, " +
			"current rent roll, and evidence of insurance. Shall I send the borrower a request?"},
	{Agent: participants.Documents, Keywords: []string{"tax return", "financial statement", "spread"},
		Template: "I've spread the last three years of financial statements. Revenue grew 12% year over year " +
			"and net margin held at 9%. Variances over 10% are flagged for review."},

	// Market research
	{Agent: participants.Market, Keywords: []string{"market", "industry", "comparable", "comps"},
		Template: "Market snapshot: regional vacancy for this property type is 6.4%, down 80bp year over year. " +
			"Recent comparable sales closed at cap rates between 6.25% and 6.75%."},
	{Agent: participants.Market, Keywords: []string{"rate", "pricing", "spread"},
		Template: "Comparable deals in this segment are pricing at SOFR + 275 to 325bp with 25-year amortization. " +
			"Our proposed SOFR + 300bp is in line with the market."},

	// Generic
	{Keywords: []string{"risk"},
		Template: "I can give you a high-level risk view, but EVA Risk Analyst can run a full assessment. " +
			"Want me to bring it into this conversation?"},
	{Keywords: []string{"loan", "deal", "application", "pipeline"},
		Template: "There are 14 active deals in your pipeline: 5 in underwriting, 4 awaiting documents, " +
			"3 in approval and 2 ready to close. Which one would you like to review?"},
	{Keywords: []string{"document", "upload"},
		Template: "I can check document status for any deal. EVA Document Specialist can also review uploads " +
			"and flag what's missing."},
	{Keywords: []string{"task", "todo", "follow up", "follow-up"},
		Template: "I can create a task and assign it to an agent or a teammate. What needs to be done, and by when?"},
	{Keywords: []string{"help", "what can you do"},
		Template: "I'm " + agentPlaceholder + ". I can summarize deals, assess risk, track documents, " +
			"research markets and manage tasks. Just ask."},
	{Keywords: []string{"hello", "hi", "hey", "good morning"},
		Template: "Hello! I'm " + agentPlaceholder + ". What can I help you with on your lending portfolio today?"},
}

// RuleEngine produces replies from an ordered rule table. First match wins.
type RuleEngine struct {
	rules []Rule
}

// NewRuleEngine creates a RuleEngine. A nil table uses DefaultRules.
func NewRuleEngine(rules []Rule) *RuleEngine {
	if rules == nil {
		rules = DefaultRules
	}
	return &RuleEngine{rules: rules}
}

// GenerateReply implements domain.ReplyGenerator. It never returns an empty string.
func (e *RuleEngine) GenerateReply(input string, agent domain.Participant) string {
	lowered := strings.ToLower(input)
	for _, r := range e.rules {
		if !r.matches(lowered, agent) {
			continue
		}
		if out := render(r.Template, agent); out != "" {
			return out
		}
	}
	return render(fallbackReply, agent)
}

func render(tmpl string, agent domain.Participant) string {
	name := agent.DisplayName
	if name == "" {
		name = "your assistant"
	}
	return strings.ReplaceAll(tmpl, agentPlaceholder, name)
}
