package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/Narvasiddhartha/AnonChat/internal/engine"
	"github.com/Narvasiddhartha/AnonChat/internal/handlers"
	room_handler "github.com/Narvasiddhartha/AnonChat/internal/handlers/room-handler"
	"github.com/Narvasiddhartha/AnonChat/internal/websocket"
)

func RoomRouter(r chi.Router, eng *engine.Engine, wsHandler *websocket.Handler) {
	roomHandler := room_handler.NewRoomHandler(eng)

	r.Post("/create-room", handlers.WrapHandler(roomHandler.HandleCreateRoom))
	r.Get("/validate-room/{roomKey}", handlers.WrapHandler(roomHandler.HandleValidateRoom))

	r.Get("/health", roomHandler.HandleHealth)
	r.Get("/stats", handlers.WrapHandler(roomHandler.HandleGetStats))

	r.Get("/ws", wsHandler.HandleWS)
}
