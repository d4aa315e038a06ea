package routers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Narvasiddhartha/AnonChat/internal/engine"
	"github.com/Narvasiddhartha/AnonChat/internal/websocket"
)

func newTestServer(t *testing.T) (*httptest.Server, *engine.Engine) {
	t.Helper()
	eng := engine.NewEngine()
	srv := httptest.NewServer(NewRouter(eng, websocket.NewHandler(eng), []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, eng
}

func TestCreateAndValidateRoom(t *testing.T) {
	srv, eng := newTestServer(t)

	resp, err := http.Post(srv.URL+"/create-room", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created struct {
		RoomKey string `json:"roomKey"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Len(t, created.RoomKey, 6)
	assert.True(t, eng.RoomExists(created.RoomKey))

	for key, want := range map[string]bool{created.RoomKey: true, "zzzzzz": false} {
		resp, err := http.Get(srv.URL + "/validate-room/" + key)
		require.NoError(t, err)
		var validated struct {
			Exists bool `json:"exists"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&validated))
		resp.Body.Close()
		assert.Equal(t, want, validated.Exists)
	}
}

func TestHealthAndStats(t *testing.T) {
	srv, eng := newTestServer(t)
	eng.CreateRoom()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Message string       `json:"message"`
		Data    engine.Stats `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(1), body.Data.RoomsCreated)
	assert.Equal(t, 1, body.Data.TotalRooms)
}
