package websocket

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	hub := NewHub(logger)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	e := echo.New()
	e.GET("/ws/:user", func(c echo.Context) error {
		id, err := primitive.ObjectIDFromHex(c.Param("user"))
		if err != nil {
			return err
		}
		return HandleWebSocket(c, hub, id)
	})
	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, userID primitive.ObjectID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + userID.Hex()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var welcome Notification
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "connected", welcome.Type)
	assert.Equal(t, userID.Hex(), welcome.UserID)
	return conn
}

func TestHubFansOutToEveryConnectionOfUser(t *testing.T) {
	hub, srv := newTestHub(t)
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	a1 := dial(t, srv, alice)
	a2 := dial(t, srv, alice)
	b1 := dial(t, srv, bob)
	require.Eventually(t, func() bool {
		return hub.Connections(alice) == 2 && hub.Connections(bob) == 1
	}, time.Second, 10*time.Millisecond)

	hub.NotifyNote(alice, "note_created", map[string]string{"title": "Groceries"})

	for _, conn := range []*websocket.Conn{a1, a2} {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		var n Notification
		require.NoError(t, conn.ReadJSON(&n))
		assert.Equal(t, "note_created", n.Type)
		assert.Equal(t, map[string]interface{}{"title": "Groceries"}, n.Data)
	}

	// bob must not see alice's notes
	_ = b1.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var n Notification
	assert.Error(t, b1.ReadJSON(&n))
}

func TestHubUnregistersClosedConnections(t *testing.T) {
	hub, srv := newTestHub(t)
	alice := primitive.NewObjectID()

	conn := dial(t, srv, alice)
	require.Eventually(t, func() bool { return hub.Connections(alice) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Connections(alice) == 0 }, time.Second, 10*time.Millisecond)
	assert.Zero(t, hub.SendToUser(alice, Notification{Type: "note_deleted"}))
}

func TestHubStops(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	hub := NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.False(t, hub.Register(&Client{UserID: primitive.NewObjectID(), send: make(chan []byte, 1)}))
}
