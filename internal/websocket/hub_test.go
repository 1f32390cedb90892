package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonmurdy-collab/MarketPulse/internal/config"
	"github.com/jasonmurdy-collab/MarketPulse/internal/store"
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClient is registered with the hub but has no pumps; tests read its
// send channel directly.
func testClient(hub *Hub) *Client {
	return &Client{
		hub:         hub,
		send:        make(chan []byte, sendBuffer),
		id:          "test-client",
		connectedAt: time.Now(),
		logger:      testLogger(),
	}
}

func receive(t *testing.T, ch <-chan []byte) events.WebSocketMessage {
	t.Helper()
	select {
	case data, ok := <-ch:
		require.True(t, ok, "send channel closed")
		var msg events.WebSocketMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return events.WebSocketMessage{}
	}
}

func TestHub_RegisterGreetsClient(t *testing.T) {
	hub := NewHub(testLogger(), WithGreeting(func(string) []events.WebSocketMessage {
		return []events.WebSocketMessage{events.NewMarketStatus("s1", domain.Status{Loading: true})}
	}))
	hub.Start()
	defer hub.Stop()

	client := testClient(hub)
	require.True(t, hub.Register(client))

	assert.Equal(t, events.MessageTypeConnect, receive(t, client.send).Type)
	status := receive(t, client.send)
	assert.Equal(t, events.MessageTypeMarketStatus, status.Type)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHub_BroadcastAndUnregister(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	a, b := testClient(hub), testClient(hub)
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))
	receive(t, a.send)
	receive(t, b.send)

	hub.BroadcastReport(domain.RunReport{TraceID: "run-1", Weekly: 10})
	for _, c := range []*Client{a, b} {
		msg := receive(t, c.send)
		assert.Equal(t, events.MessageTypeIngestionReport, msg.Type)
		assert.Equal(t, "run-1", msg.TraceID)
	}

	hub.Unregister(a)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	_, open := <-a.send
	assert.False(t, open)
	assert.Equal(t, int64(2), hub.Stats()["total_connections"])
}

func TestHub_DropsSlowClients(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	slow := testClient(hub)
	slow.send = make(chan []byte, 1)
	require.True(t, hub.Register(slow))

	// the greeting fills the buffer
	hub.BroadcastStatus(domain.Status{})
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()

	client := testClient(hub)
	require.True(t, hub.Register(client))
	receive(t, client.send)

	hub.Stop()
	hub.Stop()

	_, open := <-client.send
	assert.False(t, open)
	assert.False(t, hub.Register(testClient(hub)), "stopped hub refuses clients")
	assert.NoError(t, hub.Broadcast(events.NewMarketStatus("x", domain.Status{})))
}

func TestRelay_ForwardsSnapshots(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	client := testClient(hub)
	require.True(t, hub.Register(client))
	receive(t, client.send)

	st := store.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Relay(ctx, hub, st)
		close(done)
	}()

	require.Eventually(t, func() bool {
		st.Fail("Unable to load market data. Please try refreshing the page.")
		select {
		case data := <-client.send:
			var msg events.WebSocketMessage
			return json.Unmarshal(data, &msg) == nil && msg.Type == events.MessageTypeMarketStatus
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestHandler_EndToEnd(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	cfg := config.Default().WebSocket
	srv := httptest.NewServer(NewHandler(hub, cfg, nil, testLogger()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	var connect events.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&connect))
	assert.Equal(t, events.MessageTypeConnect, connect.Type)

	hub.BroadcastStatus(domain.Status{Phase: domain.PhaseComplete, WeeklyCount: 3})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var raw map[string]interface{}
	require.NoError(t, conn.ReadJSON(&raw))
	assert.Equal(t, string(events.MessageTypeMarketStatus), raw["type"])
	data := raw["data"].(map[string]interface{})
	assert.Equal(t, "complete", data["phase"])
	assert.Equal(t, float64(3), data["weekly_count"])

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_RejectsForeignOrigin(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	srv := httptest.NewServer(NewHandler(hub, config.Default().WebSocket, []string{"http://localhost:8080"}, testLogger()))
	defer srv.Close()

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
