package models

import "time"

// Meeting states.
const (
	MeetingScheduled = "scheduled"
	MeetingConfirmed = "confirmed"
	MeetingCancelled = "cancelled"
)

// Meeting is a scheduled call or in-person meeting between two users.
type Meeting struct {
	BaseModel

	OrganizerID string `gorm:"type:uuid;not null;index" json:"organizer_id"`
	Organizer   *User  `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
	AttendeeID  string `gorm:"type:uuid;not null;index" json:"attendee_id"`
	Attendee    *User  `gorm:"foreignKey:AttendeeID" json:"attendee,omitempty"`

	Title           string    `gorm:"not null" json:"title"`
	Agenda          string    `gorm:"type:text" json:"agenda"`
	ScheduledAt     time.Time `gorm:"not null;index" json:"scheduled_at"`
	DurationMinutes int       `gorm:"default:30" json:"duration_minutes"`
	Location        string    `json:"location"`
	Status          string    `gorm:"type:varchar(32);not null;default:'scheduled'" json:"status"`
}

// ValidMeetingStatus reports whether the supplied status is a known meeting state.
func ValidMeetingStatus(status string) bool {
	switch status {
	case MeetingScheduled, MeetingConfirmed, MeetingCancelled:
		return true
	}
	return false
}
