package llm

import (
	"math/rand/v2"
	"strings"

	"github.com/PabloGalante/eva-assistant/internal/app/participants"
	"github.com/PabloGalante/eva-assistant/internal/domain"
)

// SuggestionCount is how many follow-up prompts are offered after a reply.
const SuggestionCount = 3

// SuggestionPool is a candidate list that applies when any trigger appears
// in the user's text or the reply. An empty Agent applies to every agent.
type SuggestionPool struct {
	Agent      domain.ParticipantID
	Triggers   []string
	Candidates []string
}

func (p SuggestionPool) triggered(text string, agent domain.Participant) bool {
	if p.Agent != "" && p.Agent != agent.ID {
		return false
	}
	for _, t := range p.Triggers {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// BaseSuggestions is used when no pool is triggered.
var BaseSuggestions = []string{
	"Show me my active deal pipeline",
	"Which tasks are due this week?",
	"Summarize the latest borrower activity",
	"What documents are still outstanding?",
	"Give me a portfolio risk overview",
}

var DefaultSuggestionPools = []SuggestionPool{
	{Agent: participants.Risk, Triggers: []string{"risk", "covenant", "stress"}, Candidates: []string{
		"Draft the covenant package",
		"Run a rate shock scenario",
		"Compare this deal to portfolio averages",
		"What mitigants would you recommend?",
	}},
	{Agent: participants.Underwriting, Triggers: []string{"underwrit", "credit memo", "cash flow"}, Candidates: []string{
		"Generate the credit memo draft",
		"Show the global cash flow worksheet",
		"List the open underwriting conditions",
	}},
	{Agent: participants.Documents, Triggers: []string{"document", "checklist", "missing"}, Candidates: []string{
		"Send the borrower a document request",
		"Which documents expire soon?",
		"Spread the latest financial statements",
	}},
	{Agent: participants.Market, Triggers: []string{"market", "comparable", "pricing"}, Candidates: []string{
		"Pull recent comparable sales",
		"How does our pricing compare?",
		"Show the vacancy trend for this submarket",
	}},
	{Triggers: []string{"loan", "deal", "pipeline"}, Candidates: []string{
		"Which deals are closest to closing?",
		"Show deals stuck in underwriting",
		"What changed in the pipeline this week?",
	}},
	{Triggers: []string{"task"}, Candidates: []string{
		"Create a follow-up task",
		"Show my overdue tasks",
		"Assign this to the risk analyst",
	}},
}

// Suggester samples follow-up prompts. Results are not reproducible across calls.
type Suggester struct {
	pools   []SuggestionPool
	base    []string
	shuffle func(n int, swap func(i, j int))
}

// NewSuggester creates a Suggester over DefaultSuggestionPools and BaseSuggestions.
func NewSuggester() *Suggester {
	return &Suggester{
		pools:   DefaultSuggestionPools,
		base:    BaseSuggestions,
		shuffle: rand.Shuffle,
	}
}

// WithRand returns a copy that draws from r.
func (s *Suggester) WithRand(r *rand.Rand) *Suggester {
	out := *s
	out.shuffle = r.Shuffle
	return &out
}

// Generate implements domain.SuggestionGenerator.
func (s *Suggester) Generate(input, reply string, agent domain.Participant) []string {
	pool := s.candidates(strings.ToLower(input+"\n"+reply), agent)

	out := append([]string(nil), pool...)
	s.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })

	if len(out) > SuggestionCount {
		out = out[:SuggestionCount]
	}
	return out
}

func (s *Suggester) candidates(text string, agent domain.Participant) []string {
	seen := make(map[string]bool)
	var pool []string
	for _, p := range s.pools {
		if !p.triggered(text, agent) {
			continue
		}
		for _, c := range p.Candidates {
			if !seen[c] {
				seen[c] = true
				pool = append(pool, c)
			}
		}
	}
	if len(pool) == 0 {
		return s.base
	}
	return pool
}
