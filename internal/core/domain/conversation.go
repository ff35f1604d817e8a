package domain

import "time"

// Thread is a persisted conversation thread.
type Thread struct {
	// ID is the unique thread identifier.
	ID string

	// Topic is a short auto-generated title, set from the first message.
	Topic string

	// CreatedAt is when the thread was started.
	CreatedAt time.Time

	// UpdatedAt is when the thread last received a message.
	UpdatedAt time.Time
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one persisted conversation turn.
type Message struct {
	// ID is the unique message identifier.
	ID string

	// ThreadID links to the owning thread.
	ThreadID string

	// Role is RoleUser or RoleAssistant.
	Role string

	// Content is the message text.
	Content string

	// Handlers names the handlers that contributed to an assistant
	// message, comma-separated. Empty for user messages.
	Handlers string

	// CreatedAt is when the message was stored.
	CreatedAt time.Time
}
