package models

import "time"

// Message is a single chat message within a conversation. Messages are sent
// over the REST path; the realtime channel only pushes them to the receiver.
type Message struct {
	BaseModel

	ConversationID string        `gorm:"type:uuid;not null;index" json:"conversation_id"`
	Conversation   *Conversation `gorm:"foreignKey:ConversationID" json:"-"`

	SenderID    string `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender      *User  `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	RecipientID string `gorm:"type:uuid;not null;index" json:"recipient_id"`

	Body   string     `gorm:"type:text;not null" json:"body"`
	ReadAt *time.Time `json:"read_at"`
}
