package domain

import "time"

type ParticipantID string
type ConversationID string
type MessageID string
type TaskID string

// UserParticipantID is reserved for the human operator.
const UserParticipantID ParticipantID = "user"

type Timestamp = time.Time
