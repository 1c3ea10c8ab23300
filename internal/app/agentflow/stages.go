package agentflow

import (
	"context"

	"github.com/PabloGalante/eva-assistant/internal/domain"
)

// Turn carries one user input through the pipeline.
type Turn struct {
	Input       string
	Agent       domain.Participant
	Reply       string
	Suggestions []string
}

// Stage is one step of the reply pipeline. Stages can't fail.
type Stage interface {
	Name() string
	Run(ctx context.Context, in Turn) Turn
}

// ReplyStage asks the reply generator for the agent's answer.
type ReplyStage struct {
	gen domain.ReplyGenerator
}

func NewReplyStage(gen domain.ReplyGenerator) *ReplyStage {
	return &ReplyStage{gen: gen}
}

func (s *ReplyStage) Name() string {
	return "reply"
}

func (s *ReplyStage) Run(_ context.Context, in Turn) Turn {
	in.Reply = s.gen.GenerateReply(in.Input, in.Agent)
	return in
}

// SuggestionStage proposes follow-ups based on the input and the reply.
type SuggestionStage struct {
	gen domain.SuggestionGenerator
}

func NewSuggestionStage(gen domain.SuggestionGenerator) *SuggestionStage {
	return &SuggestionStage{gen: gen}
}

func (s *SuggestionStage) Name() string {
	return "suggestions"
}

func (s *SuggestionStage) Run(_ context.Context, in Turn) Turn {
	in.Suggestions = s.gen.Generate(in.Input, in.Reply, in.Agent)
	return in
}
