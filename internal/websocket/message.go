package websocket

import jsoniter "github.com/json-iterator/go"

// Inbound event names, mirrored by the engine's outbound set.
const (
	evJoin             = "join"
	evSendMessage      = "send_message"
	evSendAnnouncement = "send_announcement"
	evTyping           = "typing"
	evStopTyping       = "stop_typing"
	evCreatePoll       = "create_poll"
	evVotePoll         = "vote_poll"
	evClosePoll        = "close_poll"
	evLeaveRoom        = "leave_room"
	evRemoveUser       = "remove_user"
)

// Frames are {"event": ..., "data": {...}} both directions.
type IncomingFrame struct {
	Event string              `json:"event"`
	Data  jsoniter.RawMessage `json:"data"`
}

type OutgoingFrame struct {
	Event     string `json:"event"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

type JoinPayload struct {
	RoomKey  string `json:"roomKey" validate:"required"`
	Username string `json:"username" validate:"required,min=1,max=32"`
}

type RoomKeyPayload struct {
	RoomKey string `json:"roomKey" validate:"required"`
}

type ChatPayload struct {
	RoomKey string `json:"roomKey" validate:"required"`
	Message string `json:"message" validate:"required,max=2000"`
}

type CreatePollPayload struct {
	RoomKey  string   `json:"roomKey" validate:"required"`
	Question string   `json:"question" validate:"required,max=300"`
	Options  []string `json:"options" validate:"required,min=1,dive,required"`
}

type VotePayload struct {
	RoomKey   string `json:"roomKey" validate:"required"`
	OptionIdx int    `json:"optionIdx"`
}

type RemoveUserPayload struct {
	RoomKey  string `json:"roomKey" validate:"required"`
	TargetID string `json:"targetId" validate:"required"`
}
