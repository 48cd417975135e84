package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/memvault/memvault/internal/events"
)

func TestFeedHandler_StreamsEvents(t *testing.T) {
	bus := events.NewBus()
	h := NewFeedHandler(bus, zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(h.Serve))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	// Give the server a beat to register the subscription.
	time.Sleep(20 * time.Millisecond)
	bus.Publish(events.Event{Kind: events.MemoryAdded, ID: "m1"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var evt events.Event
	require.NoError(t, conn.ReadJSON(&evt))
	require.Equal(t, events.MemoryAdded, evt.Kind)
	require.Equal(t, "m1", evt.ID)
}
