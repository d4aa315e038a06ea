package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/Narvasiddhartha/AnonChat/internal/engine"
	"github.com/Narvasiddhartha/AnonChat/internal/middleware"
	"github.com/Narvasiddhartha/AnonChat/internal/websocket"
)

func NewRouter(eng *engine.Engine, wsHandler *websocket.Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestId)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	RoomRouter(r, eng, wsHandler)
	return r
}
