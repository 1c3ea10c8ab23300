package domain

// Participant is an addressable conversational identity (agent or human).
// Participants are value records and never change once built.
type Participant struct {
	ID          ParticipantID `json:"id"`
	DisplayName string        `json:"display_name"`
	ShortLabel  string        `json:"short_label"`
	AvatarRef   string        `json:"avatar_ref"`
	IsCustom    bool          `json:"is_custom"`
}

// IsUser reports whether p is the human operator.
func (p Participant) IsUser() bool {
	return p.ID == UserParticipantID
}

// UserParticipant is the sender identity for human-authored messages.
var UserParticipant = Participant{
	ID:          UserParticipantID,
	DisplayName: "You",
	ShortLabel:  "You",
}

// CustomAgentConfig is supplied by the agent builder outside this module.
type CustomAgentConfig struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	FullName    string `json:"full_name" yaml:"full_name"`
	Icon        string `json:"icon" yaml:"icon"`
	Description string `json:"description,omitempty" yaml:"description"`
}
