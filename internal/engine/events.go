package engine

import "github.com/Narvasiddhartha/AnonChat/internal/entity"

// Outbound event names, shared with the websocket adapter.
const (
	EventJoinError      = "join_error"
	EventChatHistory    = "chat_history"
	EventRoomInfo       = "room_info"
	EventReceiveMessage = "receive_message"
	EventAnnouncement   = "announcement"
	EventUserTyping     = "user_typing"
	EventUserStopTyping = "user_stop_typing"
	EventPollCreated    = "poll_created"
	EventPollUpdated    = "poll_updated"
	EventRemoved        = "removed"
	EventUserList       = "user_list"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
)

type UserListPayload struct {
	Users   []entity.Participant `json:"users"`
	AdminID string               `json:"adminId"`
}

// PresencePayload backs both user_joined and user_left.
type PresencePayload struct {
	Username  string `json:"username"`
	UserCount int    `json:"userCount"`
}

type TypingPayload struct {
	Username string `json:"username"`
}

type RemovedPayload struct {
	Message string `json:"message"`
}

type RoomInfoPayload struct {
	CreatedAt int64        `json:"createdAt"`
	Poll      *entity.Poll `json:"poll"`
}
