package e2e

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"messenger-lab/protocol"
)

// client is a thin WebSocket test harness around the JSON protocol.
type client struct {
	t     *testing.T
	conn  *websocket.Conn
	debug bool
}

func dial(t *testing.T, cfg Config) *client {
	url := fmt.Sprintf("ws://%s/ws", cfg.CoordinatorAddr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &client{t: t, conn: conn, debug: cfg.DebugJSON}
}

func (c *client) send(event any) {
	require.NoError(c.t, c.conn.WriteJSON(event))
}

// await reads frames until one matches the wanted type, failing on
// timeout. Broadcast frames (userList) arriving in between are allowed.
func (c *client) await(eventType string) map[string]any {
	deadline := time.Now().Add(5 * time.Second)
	for {
		require.NoError(c.t, c.conn.SetReadDeadline(deadline))
		_, data, err := c.conn.ReadMessage()
		require.NoError(c.t, err)
		if c.debug {
			c.t.Logf("<- %s", data)
		}
		var frame map[string]any
		require.NoError(c.t, json.Unmarshal(data, &frame))
		if frame["type"] == eventType {
			return frame
		}
	}
}

func TestScenario_Register_Login_Message_RoundTrip(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	if cfg.CoordinatorAddr == "" {
		t.Skip("E2E_COORDINATOR_ADDR not set")
	}
	req := require.New(t)

	// Unique usernames per run: the store is durable.
	alice := "alice-" + uuid.NewString()[:8]
	bob := "bob-" + uuid.NewString()[:8]
	password := "secret1"

	// Given two registered users
	aliceConn := dial(t, cfg)
	aliceConn.send(map[string]string{"type": protocol.TypeRegister, "username": alice, "password": password})
	aliceConn.await(protocol.TypeRegisterSuccess)

	bobConn := dial(t, cfg)
	bobConn.send(map[string]string{"type": protocol.TypeRegister, "username": bob, "password": password})
	bobConn.await(protocol.TypeRegisterSuccess)

	// When both log in
	aliceConn.send(map[string]string{"type": protocol.TypeLogin, "username": alice, "password": password})
	aliceLogin := aliceConn.await(protocol.TypeLoginSuccess)
	aliceID := aliceLogin["user"].(map[string]any)["id"].(string)

	bobConn.send(map[string]string{"type": protocol.TypeLogin, "username": bob, "password": password})
	bobLogin := bobConn.await(protocol.TypeLoginSuccess)
	bobID := bobLogin["user"].(map[string]any)["id"].(string)

	// And alice messages bob
	aliceConn.send(map[string]string{"type": protocol.TypeSendMessage, "recipientId": bobID, "content": "hi"})

	// Then both ends receive the persisted record
	echo := aliceConn.await(protocol.TypeNewMessage)
	req.Equal("hi", echo["message"].(map[string]any)["content"])

	delivered := bobConn.await(protocol.TypeNewMessage)
	req.Equal(aliceID, delivered["message"].(map[string]any)["senderId"])

	// And history is symmetric
	bobConn.send(map[string]string{"type": protocol.TypeGetHistory, "recipientId": aliceID})
	history := bobConn.await(protocol.TypeMessageHistory)
	req.Len(history["messages"], 1)
}
