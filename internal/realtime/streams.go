package realtime

// Named realtime streams used across the platform.
const (
	StreamNotifications = "notifications"
	StreamMessages      = "messages"
)

// Event names pushed to clients.
const (
	EventNotification = "notification"
	EventNewMessage   = "new_message"
)
