package hub_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirp/internal/auth"
	"chirp/internal/chat/hub"
	"chirp/internal/chat/presence"
	"chirp/internal/platform/middleware"
)

// withIdentity plants a signed-in identity the way the auth guard does.
func withIdentity(userID string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident := &auth.Identity{ID: userID, Email: userID + "@example.com"}
		next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), ident)))
	})
}

func newTestHub(t *testing.T, userID string) (*hub.Hub, *presence.InMemoryTracker, *websocket.Conn) {
	t.Helper()

	tracker := presence.NewInMemoryTracker()
	h := hub.New(tracker, slog.New(slog.DiscardHandler))

	srv := httptest.NewServer(withIdentity(userID, h))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return h, tracker, conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestConnectMarksOnline(t *testing.T) {
	h, tracker, _ := newTestHub(t, "alice")

	waitFor(t, func() bool { return h.Connected("alice") })

	online, err := tracker.Online(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, online)
}

func TestDisconnectMarksOffline(t *testing.T) {
	h, tracker, conn := newTestHub(t, "alice")

	waitFor(t, func() bool { return h.Connected("alice") })
	require.NoError(t, conn.Close())
	waitFor(t, func() bool { return !h.Connected("alice") })

	waitFor(t, func() bool {
		online, err := tracker.Online(context.Background())
		return err == nil && len(online) == 0
	})
}

func TestSendDeliversPayload(t *testing.T) {
	h, _, conn := newTestHub(t, "bob")

	waitFor(t, func() bool { return h.Connected("bob") })

	h.Send("bob", map[string]string{"text": "hello"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "hello", got["text"])
}

func TestSendToDisconnectedUserIsNoop(t *testing.T) {
	tracker := presence.NewInMemoryTracker()
	h := hub.New(tracker, slog.New(slog.DiscardHandler))

	// Must not panic or block.
	h.Send("nobody", map[string]string{"text": "hello"})
	assert.False(t, h.Connected("nobody"))
}

func TestUnauthenticatedUpgradeRejected(t *testing.T) {
	tracker := presence.NewInMemoryTracker()
	h := hub.New(tracker, slog.New(slog.DiscardHandler))

	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if conn != nil {
		conn.Close()
	}
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
