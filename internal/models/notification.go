package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types form a closed enumeration; Notify rejects anything else.
const (
	NotifyConnectionRequest  = "CONNECTION_REQUEST"
	NotifyRequestAccepted    = "REQUEST_ACCEPTED"
	NotifyNewMessage         = "NEW_MESSAGE"
	NotifyDocumentShared     = "DOCUMENT_SHARED"
	NotifyMeetingScheduled   = "MEETING_SCHEDULED"
	NotifyInvestmentReceived = "INVESTMENT_RECEIVED"
	NotifyDealCreated        = "DEAL_CREATED"
	NotifyDealUpdated        = "DEAL_UPDATED"
	NotifyPaymentReceived    = "PAYMENT_RECEIVED"
)

// Link entity kinds referenced by notifications.
const (
	LinkEntityRequest  = "request"
	LinkEntityMessage  = "message"
	LinkEntityDocument = "document"
	LinkEntityMeeting  = "meeting"
	LinkEntityDeal     = "deal"
)

// notificationLinkEntities maps each notification type to the entity kind its
// link must reference.
var notificationLinkEntities = map[string]string{
	NotifyConnectionRequest:  LinkEntityRequest,
	NotifyRequestAccepted:    LinkEntityRequest,
	NotifyNewMessage:         LinkEntityMessage,
	NotifyDocumentShared:     LinkEntityDocument,
	NotifyMeetingScheduled:   LinkEntityMeeting,
	NotifyInvestmentReceived: LinkEntityDeal,
	NotifyDealCreated:        LinkEntityDeal,
	NotifyDealUpdated:        LinkEntityDeal,
	NotifyPaymentReceived:    LinkEntityDeal,
}

// Notification is an event recorded for a recipient. It is immutable after
// creation except for the read flag, and is never deleted by normal flow.
type Notification struct {
	BaseModel

	RecipientID string  `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Recipient   *User   `gorm:"foreignKey:RecipientID" json:"-"`
	SenderID    *string `gorm:"type:uuid;index" json:"sender_id,omitempty"`
	Sender      *User   `gorm:"foreignKey:SenderID" json:"sender,omitempty"`

	Type    string         `gorm:"type:varchar(64);not null" json:"type"`
	Message string         `gorm:"type:text;not null" json:"message"`
	Link    datatypes.JSON `json:"link,omitempty"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}

// ValidNotificationType reports whether the type is part of the enumeration.
func ValidNotificationType(t string) bool {
	_, ok := notificationLinkEntities[t]
	return ok
}

// LinkEntityFor returns the entity kind a notification of the supplied type
// must link to.
func LinkEntityFor(t string) (string, bool) {
	entity, ok := notificationLinkEntities[t]
	return entity, ok
}
