package models

import "time"

// Conversation is the message thread between two connected users. The
// participant pair is stored in a canonical order so the unique index holds
// regardless of who wrote first.
type Conversation struct {
	BaseModel

	ParticipantAID string `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair" json:"participant_a_id"`
	ParticipantA   *User  `gorm:"foreignKey:ParticipantAID" json:"participant_a,omitempty"`
	ParticipantBID string `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair" json:"participant_b_id"`
	ParticipantB   *User  `gorm:"foreignKey:ParticipantBID" json:"participant_b,omitempty"`

	LastMessageAt *time.Time `gorm:"index" json:"last_message_at"`
}

// Involves reports whether the user participates in this conversation.
func (c *Conversation) Involves(userID string) bool {
	return c.ParticipantAID == userID || c.ParticipantBID == userID
}

// OtherParticipant returns the counterparty of the supplied participant.
func (c *Conversation) OtherParticipant(userID string) string {
	if c.ParticipantAID == userID {
		return c.ParticipantBID
	}
	return c.ParticipantAID
}

// CanonicalPair orders two user IDs deterministically for conversation lookup.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
