package agentflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/PabloGalante/eva-assistant/internal/domain"
	"github.com/PabloGalante/eva-assistant/internal/observability"
)

// Orchestrator is responsible for running the pipeline stages in sequence.
type Orchestrator struct {
	stages []Stage
}

// NewDefaultOrchestrator constructs a flow with Reply -> Suggestions.
func NewDefaultOrchestrator(replies domain.ReplyGenerator, suggestions domain.SuggestionGenerator) *Orchestrator {
	return NewOrchestrator(
		NewReplyStage(replies),
		NewSuggestionStage(suggestions),
	)
}

func NewOrchestrator(stages ...Stage) *Orchestrator {
	return &Orchestrator{stages: stages}
}

// Run executes the stages sequentially; each stage sees the previous one's output.
func (o *Orchestrator) Run(ctx context.Context, input string, agent domain.Participant) Turn {
	log := observability.LoggerFromContext(ctx).With(
		zap.String("agent", string(agent.ID)),
	)
	log.Debug("pipeline started", zap.Int("stages", len(o.stages)))

	turn := Turn{Input: input, Agent: agent}
	for _, st := range o.stages {
		start := time.Now()
		turn = st.Run(ctx, turn)
		log.Debug("stage done",
			zap.String("stage", st.Name()),
			zap.Duration("elapsed", time.Since(start)))
	}

	log.Debug("pipeline end")
	return turn
}
