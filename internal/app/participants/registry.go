// Package participants assembles the agents a user can talk to.
package participants

import "github.com/PabloGalante/eva-assistant/internal/domain"

// Built-in agent ids.
const (
	EVA          domain.ParticipantID = "eva"
	Risk         domain.ParticipantID = "eva-risk"
	Underwriting domain.ParticipantID = "eva-underwriting"
	Documents    domain.ParticipantID = "eva-documents"
	Market       domain.ParticipantID = "eva-market"
)

var builtins = []domain.Participant{
	{ID: EVA, DisplayName: "EVA Assistant", ShortLabel: "EVA", AvatarRef: "/assets/agents/eva.svg"},
	{ID: Risk, DisplayName: "EVA Risk Analyst", ShortLabel: "Risk", AvatarRef: "/assets/agents/eva-risk.svg"},
	{ID: Underwriting, DisplayName: "EVA Underwriting Assistant", ShortLabel: "UW", AvatarRef: "/assets/agents/eva-underwriting.svg"},
	{ID: Documents, DisplayName: "EVA Document Specialist", ShortLabel: "Docs", AvatarRef: "/assets/agents/eva-documents.svg"},
	{ID: Market, DisplayName: "EVA Market Researcher", ShortLabel: "Market", AvatarRef: "/assets/agents/eva-market.svg"},
}

// Builtins returns the fixed agents in declaration order.
func Builtins() []domain.Participant {
	return append([]domain.Participant(nil), builtins...)
}

// List returns the built-in agents followed by custom agents in the order
// supplied. It has no side effects.
func List(custom []domain.CustomAgentConfig) []domain.Participant {
	out := make([]domain.Participant, 0, len(builtins)+len(custom))
	out = append(out, builtins...)
	for _, c := range custom {
		out = append(out, FromConfig(c))
	}
	return out
}

// FromConfig maps a custom agent definition onto a participant verbatim.
func FromConfig(c domain.CustomAgentConfig) domain.Participant {
	return domain.Participant{
		ID:          domain.ParticipantID(c.ID),
		DisplayName: c.FullName,
		ShortLabel:  c.Name,
		AvatarRef:   c.Icon,
		IsCustom:    true,
	}
}

// Resolve finds id among built-ins and custom agents.
func Resolve(id domain.ParticipantID, custom []domain.CustomAgentConfig) (domain.Participant, bool) {
	for _, p := range List(custom) {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Participant{}, false
}
