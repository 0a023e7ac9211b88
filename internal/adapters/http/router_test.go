package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zmagdon/watchparty/internal/config"
	"github.com/zmagdon/watchparty/internal/room"
	"github.com/zmagdon/watchparty/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Mode:         "release",
		ReadLimit:    32768,
		WriteTimeout: 5 * time.Second,
	}
	rooms := room.NewManager(ctx, storage.NewMemoryStore(), room.DefaultConfig(), room.WallClock)
	srv := httptest.NewServer(SetupRouter(ctx, cfg, rooms))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouterPaths(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown path", "/nope", nethttp.StatusNotFound},
		{"room id with invalid characters", "/room/bad%20id", nethttp.StatusNotFound},
		{"room id too long", "/room/" + strings.Repeat("a", 65), nethttp.StatusNotFound},
		{"valid room without upgrade", "/room/movie-night_1", nethttp.StatusUpgradeRequired},
		{"health", "/healthz", nethttp.StatusOK},
		{"room listing", "/api/rooms", nethttp.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := nethttp.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func readMsg(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestRoomWebSocketFlow(t *testing.T) {
	srv := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/room/e2e-room"

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	// unprompted greeting: welcome, state, presence
	welcome := readMsg(t, conn)
	assert.Equal(t, "welcome", welcome["type"])
	assert.Greater(t, welcome["serverTimeMs"], float64(0))

	state := readMsg(t, conn)
	assert.Equal(t, "state", state["type"])
	assert.Equal(t, float64(1), state["state"].(map[string]any)["version"])

	presence := readMsg(t, conn)
	assert.Equal(t, "presence", presence["type"])

	// join seeds the media key
	join := `{"type":"join","userId":"u1","name":"Ann","mediaKey":"movie-1"}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(join)))

	state = readMsg(t, conn)
	require.Equal(t, "state", state["type"])
	st := state["state"].(map[string]any)
	assert.Equal(t, "movie-1", st["mediaKey"])
	assert.Equal(t, float64(2), st["version"])

	presence = readMsg(t, conn)
	require.Equal(t, "presence", presence["type"])
	users := presence["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "Ann", users[0].(map[string]any)["name"])

	// control round trip
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"control","action":"PLAY"}`)))
	state = readMsg(t, conn)
	require.Equal(t, "state", state["type"])
	st = state["state"].(map[string]any)
	assert.Equal(t, true, st["isPlaying"])
	assert.Equal(t, float64(3), st["version"])

	// ping echo
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping","t":777}`)))
	pong := readMsg(t, conn)
	assert.Equal(t, "pong", pong["type"])
	assert.Equal(t, float64(777), pong["t"])
}
