package room_handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Narvasiddhartha/AnonChat/internal/dtos"
	"github.com/Narvasiddhartha/AnonChat/internal/engine"
	app_error "github.com/Narvasiddhartha/AnonChat/internal/errors"
	"github.com/Narvasiddhartha/AnonChat/internal/handlers"
	"github.com/Narvasiddhartha/AnonChat/internal/middleware"
)

type RoomHandler struct {
	Engine *engine.Engine
}

func NewRoomHandler(eng *engine.Engine) *RoomHandler {
	return &RoomHandler{Engine: eng}
}

// HandleCreateRoom mints a fresh room key. The room stays registered
// until its last member leaves; the first joiner becomes admin.
func (h *RoomHandler) HandleCreateRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	key := h.Engine.CreateRoom()
	handlers.WriteJSON(w, http.StatusOK, dtos.CreateRoomResponse{RoomKey: key})
	return nil
}

// HandleValidateRoom is the pre-join existence check, side-effect free.
func (h *RoomHandler) HandleValidateRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	key := chi.URLParam(r, "roomKey")
	handlers.WriteJSON(w, http.StatusOK, dtos.ValidateRoomResponse{Exists: h.Engine.RoomExists(key)})
	return nil
}

func (h *RoomHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "anonchat",
	})
}

func (h *RoomHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	stats := h.Engine.Stats()
	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	log.Debug().Str("request_id", reqID).Msg("stats requested")
	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("engine stats", stats, reqID))
	return nil
}
