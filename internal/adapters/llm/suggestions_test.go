package llm_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/eva-assistant/internal/adapters/llm"
	"github.com/PabloGalante/eva-assistant/internal/app/participants"
)

func assertUnique(t *testing.T, items []string) {
	t.Helper()
	seen := make(map[string]bool)
	for _, s := range items {
		assert.False(t, seen[s], "duplicate suggestion %q", s)
		seen[s] = true
	}
}

func TestSuggestionsFromBasePool(t *testing.T) {
	s := llm.NewSuggester()
	eva := agent(t, participants.EVA)

	for i := 0; i < 20; i++ {
		got := s.Generate("zzz", "qqq", eva)
		require.Len(t, got, llm.SuggestionCount)
		assertUnique(t, got)
		for _, g := range got {
			assert.Contains(t, llm.BaseSuggestions, g)
		}
	}
}

func TestSuggestionsFromTriggeredPools(t *testing.T) {
	s := llm.NewSuggester()
	risk := agent(t, participants.Risk)

	riskPool := llm.DefaultSuggestionPools[0].Candidates
	for i := 0; i < 20; i++ {
		got := s.Generate("what's the risk", "", risk)
		require.Len(t, got, llm.SuggestionCount)
		assertUnique(t, got)
		for _, g := range got {
			assert.Contains(t, riskPool, g)
		}
	}
}

func TestSuggestionsTriggeredByReply(t *testing.T) {
	s := llm.NewSuggester()
	eva := agent(t, participants.EVA)

	got := s.Generate("zzz", "Here are your tasks", eva)
	taskPool := llm.DefaultSuggestionPools[5].Candidates
	assert.ElementsMatch(t, taskPool, got)
}

func TestAgentPoolIgnoredForOtherAgents(t *testing.T) {
	s := llm.NewSuggester()
	docs := agent(t, participants.Documents)

	got := s.Generate("stress", "", docs)
	for _, g := range got {
		assert.Contains(t, llm.BaseSuggestions, g)
	}
}

func TestSeededSuggestionsRepeat(t *testing.T) {
	eva := agent(t, participants.EVA)
	a := llm.NewSuggester().WithRand(rand.New(rand.NewPCG(7, 11)))
	b := llm.NewSuggester().WithRand(rand.New(rand.NewPCG(7, 11)))

	assert.Equal(t, a.Generate("deal", "", eva), b.Generate("deal", "", eva))
}
