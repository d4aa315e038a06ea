package entity

import "time"

const (
	EntryUser         = "user"
	EntrySystem       = "system"
	EntryAnnouncement = "announcement"
)

// Entry is one immutable item in a room's message log. Entries are never
// edited or deleted individually, the whole log dies with the room.
type Entry struct {
	Type      string    `json:"type"`
	Username  string    `json:"username,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	UserCount int       `json:"userCount,omitempty"`
}

func NewChatEntry(username, message string) Entry {
	return Entry{
		Type:      EntryUser,
		Username:  username,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func NewSystemEntry(message string, userCount int) Entry {
	return Entry{
		Type:      EntrySystem,
		Message:   message,
		Timestamp: time.Now(),
		UserCount: userCount,
	}
}

func NewAnnouncementEntry(message string) Entry {
	return Entry{
		Type:      EntryAnnouncement,
		Username:  "Admin",
		Message:   message,
		Timestamp: time.Now(),
	}
}
