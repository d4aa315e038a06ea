package dtos

type Response[T any] struct {
	Message   string `json:"message"`
	Data      T      `json:"data"`
	RequestID string `json:"request_id,omitempty"`
}

// Room endpoints answer with bare payloads, the chat client reads these
// fields directly.

type CreateRoomResponse struct {
	RoomKey string `json:"roomKey"`
}

type ValidateRoomResponse struct {
	Exists bool `json:"exists"`
}
