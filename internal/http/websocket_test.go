package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetku/internal/core"
)

func dialEvents(t *testing.T, ts *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestWebsocketStreamsChanges(t *testing.T) {
	srv, st := newTestServer(t, Options{})
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	conn := dialEvents(t, ts, nil)
	hello := readEvent(t, conn)
	assert.Equal(t, EventHello, hello.Type)
	assert.Equal(t, st.Version(), hello.Version)

	_, err := st.AddTag("Pets")
	require.NoError(t, err)

	ev := readEvent(t, conn)
	assert.Equal(t, EventStateChanged, ev.Type)
	assert.Equal(t, "add_tag", ev.Op)
	assert.Equal(t, st.Version(), ev.Version)
	assert.Equal(t, 1, srv.Hub().Clients())
}

func TestWebsocketOverspendEvent(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	conn := dialEvents(t, ts, nil)
	readEvent(t, conn)

	srv.Hub().HandleOverspend(core.Overspend{Month: "2024-09", Spent: 95, Budget: 100})

	ev := readEvent(t, conn)
	assert.Equal(t, EventOverspending, ev.Type)
	assert.Equal(t, "2024-09", ev.Month)
	assert.Equal(t, 95.0, ev.Spent)
	assert.Equal(t, 100.0, ev.Budget)
}

func TestWebsocketRejectsForeignOrigin(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.NotEqual(t, http.StatusSwitchingProtocols, resp.StatusCode)
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	conn := dialEvents(t, ts, nil)
	readEvent(t, conn)

	srv.Hub().Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, srv.Hub().Clients())
}
