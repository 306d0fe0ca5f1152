package models

import "time"

// Connection request states.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestDeclined = "declined"
)

// ConnectionRequest models an invitation from one user to connect with
// another. An accepted request is the connection; there is no separate
// connection table.
type ConnectionRequest struct {
	BaseModel

	SenderID    string `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender      *User  `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	RecipientID string `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Recipient   *User  `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`

	Note   string `gorm:"type:text" json:"note"`
	Status string `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`

	RespondedAt *time.Time `json:"responded_at"`
}
