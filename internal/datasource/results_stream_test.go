package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/edge-engine/internal/models"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestRunDispatchesSettlements(t *testing.T) {
	received := make(chan SettlementUpdate, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var auth map[string]string
		require.NoError(t, conn.ReadJSON(&auth))
		assert.Equal(t, "auth", auth["op"])
		assert.Equal(t, "test-key", auth["api_key"])

		require.NoError(t, conn.WriteJSON(map[string]string{"op": "auth_ok"}))
		require.NoError(t, conn.WriteJSON(map[string]interface{}{
			"op":         "settlement",
			"fixture_id": 1001,
			"market":     "home_win",
			"status":     "won",
			"at":         "2026-03-14T17:00:00Z",
		}))

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	stream := NewResultsStream(wsURL(server), "test-key", quietLogger())
	stream.AddHandler(func(update SettlementUpdate) {
		select {
		case received <- update:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = stream.Run(ctx)
		close(done)
	}()

	select {
	case update := <-received:
		assert.Equal(t, int64(1001), update.FixtureID)
		assert.Equal(t, models.MarketHomeWin, update.Market)
		assert.Equal(t, models.LegWon, update.Status)
		assert.Equal(t, time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC), update.At.UTC())
	case <-time.After(5 * time.Second):
		t.Fatal("no settlement received")
	}

	assert.True(t, stream.IsConnected())
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop on cancel")
	}
	assert.False(t, stream.IsConnected())
}

func TestReconnectDoesNotAccumulateWatchers(t *testing.T) {
	var connections atomic.Int64

	// Every connection is dropped straight after the auth read, forcing the
	// client through its reconnect path over and over.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connections.Add(1)
		var auth map[string]string
		_ = conn.ReadJSON(&auth)
		conn.Close()
	}))
	defer server.Close()

	stream := NewResultsStream(wsURL(server), "test-key", quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = stream.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return connections.Load() >= 2 },
		5*time.Second, 5*time.Millisecond)
	early := runtime.NumGoroutine()

	require.Eventually(t, func() bool { return connections.Load() >= 10 },
		10*time.Second, 5*time.Millisecond)
	late := runtime.NumGoroutine()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop on cancel")
	}

	// One watcher per live connection, not one per drop.
	assert.Less(t, late-early, 6, "goroutines grew from %d to %d across reconnects", early, late)
}

func TestParseSettlementValidation(t *testing.T) {
	_, err := parseSettlement(streamEnvelope{Op: "settlement", Market: "home_win", Status: "won"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing fixture id")

	_, err = parseSettlement(streamEnvelope{Op: "settlement", FixtureID: 1, Market: "home_win", Status: "cancelled"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown settlement status")

	// A malformed timestamp degrades to now rather than dropping the update.
	update, err := parseSettlement(streamEnvelope{Op: "settlement", FixtureID: 1, Market: "home_win", Status: "void", At: "yesterday"})
	require.NoError(t, err)
	assert.Equal(t, models.LegVoid, update.Status)
	assert.WithinDuration(t, time.Now().UTC(), update.At, time.Minute)
}
